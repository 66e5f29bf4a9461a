package main

import "pogocal/internal/cli"

func main() {
	cli.Execute()
}
