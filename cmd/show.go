package cmd

import (
	"bytes"

	"github.com/chris-regnier/contentcal/internal/ui"
	"github.com/spf13/cobra"
)

var showFull bool

var showCmd = &cobra.Command{
	Use:   "show <YYYY-MM-DD>",
	Short: "List everything scheduled on a day",
	Long:  "Display every item of one day, without the month view's overflow limit.",
	Example: `  contentcal show 2024-06-15
  contentcal show 2024-06-15 --full
  contentcal show 2024-06-15 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, key, err := parseDay(args[0])
		if err != nil {
			return err
		}
		b, err := loadBoard(commandContext(cmd), day, day)
		if err != nil {
			return err
		}
		defer b.Close()

		items, _ := b.SelectDay(key)
		out := cmd.OutOrStdout()

		if jsonOutput {
			return ui.FormatJSON(out, ui.BuildDayJSON(key, items, location()))
		}

		theme := ui.ResolveTheme(appConfig.Theme)
		var buf bytes.Buffer
		if !showFull || len(items) == 0 {
			ui.FormatDay(&buf, key, items, location())
		} else {
			ui.FormatItemsFull(&buf, items, location(), ui.MarkdownStyleFor(out, theme.MarkdownStyle))
		}
		return ui.OutputOrPage(out, buf.String(), false, theme, appConfig.MaxWidth)
	},
}

func init() {
	showCmd.Flags().BoolVar(&showFull, "full", false, "include each item's details and body")
	rootCmd.AddCommand(showCmd)
}
