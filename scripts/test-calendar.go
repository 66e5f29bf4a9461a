package main

import (
	"fmt"
	"os"
	"time"

	"pogocal/internal/calendar"
	"pogocal/internal/config"
	"pogocal/internal/event"
)

func main() {
	// Create a sample record
	rec := event.NewRecord("Community Day: Eevee", "https://leekduck.com/events/community-day-eevee/", 0)
	start := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)
	rec.SetTimes(start, start.Add(3*time.Hour))
	rec.Description = "Eevee will be appearing more frequently in the wild."

	// Generate .ics file
	icsContent := calendar.ExportICS([]*event.Record{rec}, config.Default())

	// Write to file (owner read/write only for security)
	filename := "test-pogocal-event.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
