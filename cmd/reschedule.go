package cmd

import (
	"fmt"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/mcptools"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/chris-regnier/contentcal/internal/ui"
	"github.com/spf13/cobra"
)

var rescheduleYes bool

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule <kind> <id> <YYYY-MM-DD>",
	Short: "Move an item to another day",
	Long: `Move a pending post, draft article or outline to another day. The item
keeps its time of day. Items that are queued, posting or already published
cannot be moved.`,
	Example: `  contentcal reschedule post a3kf9x2m 2024-06-17
  contentcal reschedule outline q8m2kd0z 2024-07-01 --yes`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := item.ParseKind(args[0])
		if err != nil {
			return err
		}
		if err := item.ValidateID(args[1]); err != nil {
			return err
		}
		_, target, err := parseDay(args[2])
		if err != nil {
			return err
		}
		ref := item.Ref{Kind: kind, ID: args[1]}

		if !rescheduleYes && !jsonOutput && ui.IsTerminal() {
			ok, err := confirmMove(cmd, ref, target)
			if err != nil || !ok {
				return err
			}
		}

		intent, err := mcptools.Reschedule(commandContext(cmd), src, location(), ref, target)
		if err != nil {
			return err
		}
		if jsonOutput {
			return ui.FormatJSON(cmd.OutOrStdout(), intent)
		}
		ui.FormatRescheduled(cmd.OutOrStdout(), intent, location())
		return nil
	},
}

func init() {
	rescheduleCmd.Flags().BoolVarP(&rescheduleYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(rescheduleCmd)
}

// confirmMove asks before committing a move. It reports false when the user
// declines.
func confirmMove(cmd *cobra.Command, ref item.Ref, target calendar.DayKey) (bool, error) {
	it, err := source.Lookup(commandContext(cmd), src, ref)
	if err != nil {
		return false, err
	}
	if err := source.CheckMutable(it); err != nil {
		return false, err
	}
	from := calendar.DayKey("unscheduled")
	if at, err := it.Anchor(location()); err == nil {
		from = calendar.KeyOf(at, location())
	}
	d := calendar.Present(it)

	ok, err := ui.Confirm(
		fmt.Sprintf("Move %s to %s?", d.Label, target),
		fmt.Sprintf("%s · %s · currently %s", ref, d.Pill.Label, from),
		ui.ResolveTheme(appConfig.Theme),
	)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
	}
	return ok, nil
}
