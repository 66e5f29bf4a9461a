package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"pogocal/internal/calendar"
	"pogocal/internal/calstore"
	"pogocal/internal/config"
	"pogocal/internal/event"
	"pogocal/internal/logger"
	"pogocal/internal/notifier"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scrape and classify events without touching the calendar",
		RunE:  runScan,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&flagTypes, "types", nil, "Only show these event types (e.g. Raid,Spotlight)")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := scrapeAndEnrich(cfg)
	if err != nil {
		return err
	}

	decisions, err := decide(cmd.Context(), cfg, store, records)
	if err != nil {
		return err
	}
	decisions, err = filterByTypes(decisions, flagTypes)
	if err != nil {
		return err
	}

	return writeDecisions(os.Stdout, decisions, cfg, format)
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Scrape events and reconcile them into the calendar",
		RunE:  runSync,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&flagTypes, "types", nil, "Only sync these event types")
	cmd.Flags().BoolVar(&flagApplyUpdates, "apply-updates", false, "Replace existing entries flagged as update candidates")
	cmd.Flags().StringVar(&flagNotify, "notify", "", "Announce created entries: 'dryrun' or 'twitter'")
	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	created, outcomes, err := syncOnce(cmd.Context(), cfg, store)
	if err != nil {
		return err
	}

	if err := writeOutcomes(os.Stdout, outcomes, format); err != nil {
		return err
	}
	return announce(created)
}

func syncOnce(ctx context.Context, cfg *config.Config, store calstore.Store) ([]*event.Record, []Outcome, error) {
	records, err := scrapeAndEnrich(cfg)
	if err != nil {
		return nil, nil, err
	}

	decisions, err := decide(ctx, cfg, store, records)
	if err != nil {
		return nil, nil, err
	}
	decisions, err = filterByTypes(decisions, flagTypes)
	if err != nil {
		return nil, nil, err
	}

	created, outcomes := applyDecisions(ctx, cfg, store, decisions, flagApplyUpdates)
	return created, outcomes, nil
}

func announce(created []*event.Record) error {
	if flagNotify == "" || len(created) == 0 {
		return nil
	}

	var n notifier.Notifier
	switch flagNotify {
	case "dryrun":
		n = notifier.NewDryRunNotifier()
	case "twitter":
		tw, err := notifier.NewTwitterNotifier()
		if err != nil {
			return err
		}
		n = tw
	default:
		return fmt.Errorf("unknown notifier: %s", flagNotify)
	}

	if err := n.Notify(created); err != nil {
		return fmt.Errorf("announcing created events: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Scrape events and write them to an iCalendar file",
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&flagOut, "out", "events.ics", "Output .ics path")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := scrapeAndEnrich(cfg)
	if err != nil {
		return err
	}

	skipped := 0
	for _, rec := range records {
		if !rec.HasTimes() {
			skipped++
		}
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipping %d unschedulable events\n", skipped)
	}

	if err := os.WriteFile(flagOut, []byte(calendar.ExportICS(records, cfg)), 0o644); err != nil {
		return fmt.Errorf("writing ICS file: %w", err)
	}
	fmt.Printf("Wrote %d events to %s\n", len(records)-skipped, flagOut)
	return nil
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run sync on a cron schedule",
		RunE:  runWatch,
	}
	cmd.Flags().StringVar(&flagSchedule, "schedule", "0 */6 * * *", "Cron schedule for sync runs")
	cmd.Flags().BoolVar(&flagApplyUpdates, "apply-updates", false, "Replace existing entries flagged as update candidates")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	c := cron.New()
	_, err = c.AddFunc(flagSchedule, func() {
		logger.Info("scheduled sync starting", logger.Fields{"schedule": flagSchedule})
		created, outcomes, err := syncOnce(context.Background(), cfg, store)
		if err != nil {
			logger.Error("scheduled sync failed", nil, err)
			return
		}
		logger.Info("scheduled sync finished", logger.Fields{
			"created":  len(created),
			"outcomes": len(outcomes),
		})
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", flagSchedule, err)
	}

	logger.Info("watch started", logger.Fields{"schedule": flagSchedule})
	c.Run()
	return nil
}
