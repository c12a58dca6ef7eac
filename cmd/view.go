package cmd

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/ui"
	"github.com/spf13/cobra"
)

var viewAs string

var viewCmd = &cobra.Command{
	Use:   "view [YYYY-MM-DD]",
	Short: "Print the calendar",
	Long:  "Print the month, week or day containing a date (today by default).",
	Example: `  contentcal view
  contentcal view 2024-06-15 --as week
  contentcal view --as day --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := calendar.ParseGranularity(viewAs)
		if err != nil {
			return err
		}
		ref := now()
		if len(args) == 1 {
			if ref, _, err = parseDay(args[0]); err != nil {
				return err
			}
		}
		return renderView(commandContext(cmd), cmd.OutOrStdout(), ref, g)
	},
}

func init() {
	viewCmd.Flags().StringVar(&viewAs, "as", "month", "calendar layout (month|week|day)")
	rootCmd.AddCommand(viewCmd)
}

// renderView loads and prints the period containing ref.
func renderView(ctx context.Context, w io.Writer, ref time.Time, g calendar.Granularity) error {
	loc := location()
	start, end := calendar.Range(ref, g, loc, appConfig.WeekStartDay())
	b, err := loadBoard(ctx, start, end)
	if err != nil {
		return err
	}
	defer b.Close()

	v := b.Render(ref.In(loc), g, calendar.RenderOptions{
		Today:     calendar.KeyOf(now(), loc),
		WeekStart: appConfig.WeekStartDay(),
		MonthCap:  appConfig.MonthCap,
	})

	if jsonOutput {
		return ui.FormatJSON(w, v)
	}
	width := ui.DefaultTextWidth
	if appConfig.MaxWidth > 0 && appConfig.MaxWidth < width {
		width = appConfig.MaxWidth
	}
	var buf bytes.Buffer
	ui.FormatView(&buf, v, width)
	return ui.OutputOrPage(w, buf.String(), false, ui.ResolveTheme(appConfig.Theme), appConfig.MaxWidth)
}
