package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/ics"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/spf13/cobra"
)

var (
	icsFrom    string
	icsTo      string
	icsOutput  string
	icsName    string
	icsBaseURL string
)

var exportICSCmd = &cobra.Command{
	Use:   "export-ics",
	Short: "Export scheduled items as an iCalendar file",
	Long: `Write the items of a date range as iCalendar events. Each event links back
to the item's page on the dashboard. The range defaults to the current month.`,
	Example: `  contentcal export-ics > june.ics
  contentcal export-ics --from 2024-06-01 --to 2024-06-30 -o june.ics
  contentcal export-ics --base-url https://dash.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := location()
		today := now().In(loc)
		from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		to := from.AddDate(0, 1, -1)

		var err error
		if icsFrom != "" {
			if from, _, err = parseDay(icsFrom); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
		}
		if icsTo != "" {
			if to, _, err = parseDay(icsTo); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
		}
		if to.Before(from) {
			return fmt.Errorf("--to %s is before --from %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
		}

		b, err := loadBoard(commandContext(cmd), from, to)
		if err != nil {
			return err
		}
		defer b.Close()

		// Keep only the days asked for; the source may return more.
		lo, hi := calendar.KeyOf(from, loc), calendar.KeyOf(to, loc)
		var items []item.Item
		for _, key := range b.Index().Keys() {
			if key >= lo && key <= hi {
				items = append(items, b.Index().Day(key)...)
			}
		}
		ix, _ := calendar.Bucket(items, loc)

		var w io.Writer = cmd.OutOrStdout()
		if icsOutput != "" && icsOutput != "-" {
			f, err := os.Create(icsOutput)
			if err != nil {
				return fmt.Errorf("creating %s: %w", icsOutput, err)
			}
			defer f.Close()
			w = f
		}

		if err := ics.Write(w, ix, ics.Options{Name: icsName, BaseURL: icsBaseURL, Now: now()}); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
		slog.Info("exported calendar", "events", ix.Len(), "from", lo, "to", hi)
		if icsOutput != "" && icsOutput != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d events to %s\n", ix.Len(), icsOutput)
		}
		return nil
	},
}

func init() {
	exportICSCmd.Flags().StringVar(&icsFrom, "from", "", "first day to export (YYYY-MM-DD, default: first of this month)")
	exportICSCmd.Flags().StringVar(&icsTo, "to", "", "last day to export (YYYY-MM-DD, default: end of this month)")
	exportICSCmd.Flags().StringVarP(&icsOutput, "output", "o", "", "output file (default: stdout)")
	exportICSCmd.Flags().StringVar(&icsName, "name", "Content calendar", "calendar display name")
	exportICSCmd.Flags().StringVar(&icsBaseURL, "base-url", "", "dashboard URL prefixed to item links")
	rootCmd.AddCommand(exportICSCmd)
}
