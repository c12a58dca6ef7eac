package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris-regnier/contentcal/internal/calendar"
	"github.com/chris-regnier/contentcal/internal/config"
	"github.com/chris-regnier/contentcal/internal/logging"
	"github.com/chris-regnier/contentcal/internal/refresh"
	"github.com/chris-regnier/contentcal/internal/source"
	"github.com/chris-regnier/contentcal/internal/source/markdown"
	"github.com/chris-regnier/contentcal/internal/source/rest"
	"github.com/chris-regnier/contentcal/internal/source/sqlite"
	"github.com/chris-regnier/contentcal/internal/ui"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	jsonOutput   bool
	sourceFlag   string
	appConfig    *config.Config
	src          source.Source
	observerLoc  *time.Location
	closeLogFile func() error

	// now is replaced in tests.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "contentcal",
	Short: "A scheduling calendar for social posts, outlines and articles",
	Long: `contentcal shows scheduled content on a month, week or day calendar and
lets you move pending posts, draft articles and outlines to another day.

Items come from a local sqlite or markdown store, or from the dashboard API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg

		// Override source backend from flag
		if sourceFlag != "" {
			appConfig.Source = sourceFlag
			appConfig.Normalize()
		}
		if err := appConfig.Validate(); err != nil {
			return err
		}
		observerLoc, _ = appConfig.Location()

		closeLogFile, err = logging.Setup(appConfig.LogLevel, appConfig.LogFile, ownsTerminal(cmd, ui.IsTerminal()))
		if err != nil {
			return err
		}

		src, err = openSource(appConfig)
		if err != nil {
			return err
		}
		slog.Debug("source opened", "source", appConfig.Source, "data_dir", appConfig.DataDir)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if src != nil {
			err = src.Close()
		}
		if closeLogFile != nil {
			_ = closeLogFile()
		}
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			// Non-TTY: print this month's grid
			return renderView(commandContext(cmd), cmd.OutOrStdout(), now(), calendar.Month)
		}
		var sched *refresh.Schedule
		if s, err := refresh.Parse(appConfig.Refresh); err == nil {
			sched = s
		} else {
			slog.Warn("background refresh disabled", "error", err)
		}
		return ui.RunTUI(src, ui.TUIConfig{
			Location:  observerLoc,
			WeekStart: appConfig.WeekStartDay(),
			MonthCap:  appConfig.MonthCap,
			MaxWidth:  appConfig.MaxWidth,
			Refresh:   sched,
			Theme:     ui.ResolveTheme(appConfig.Theme),
			Now:       now,
		})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "item source (sqlite|markdown|rest)")

	// Silence Cobra's built-in error and usage printing so we control stderr output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

// ownsTerminal reports whether cmd runs the interactive calendar, which owns
// the terminal, so its logs only go to a file.
func ownsTerminal(cmd *cobra.Command, tty bool) bool {
	return tty && !cmd.HasParent()
}

// openSource builds the configured item source.
func openSource(cfg *config.Config) (source.Source, error) {
	switch cfg.Source {
	case config.SourceMarkdown:
		s, err := markdown.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing markdown source: %w", err)
		}
		return s, nil
	case config.SourceSQLite:
		s, err := sqlite.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite source: %w", err)
		}
		return s, nil
	case config.SourceREST:
		timeout, _ := cfg.APITimeout()
		c, err := rest.New(rest.Options{
			BaseURL:  cfg.API.BaseURL,
			Token:    cfg.API.Token,
			PageSize: cfg.API.PageSize,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing rest source: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown source: %s", cfg.Source)
	}
}

// localStore returns the source as a writable store.
func localStore() (source.Store, error) {
	s, ok := src.(source.Store)
	if !ok {
		return nil, fmt.Errorf("source %q is read-only here; use sqlite or markdown", appConfig.Source)
	}
	return s, nil
}

// commandContext returns the command's context, or a background context when
// the command is run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func location() *time.Location {
	if observerLoc == nil {
		return time.Local
	}
	return observerLoc
}

// loadBoard lists the items of [start, end] and buckets them. Items with
// unusable dates stay on the board's invalid list.
func loadBoard(ctx context.Context, start, end time.Time) (*calendar.Board, error) {
	items, err := src.List(ctx, source.ListOptions{Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	b := calendar.NewBoard(location())
	if err := b.Load(items); err != nil {
		if !calendar.IsIntegrityError(err) {
			return nil, err
		}
		slog.Warn("some items could not be placed", "error", err)
	}
	return b, nil
}

// parseDay reads a YYYY-MM-DD argument as a local date.
func parseDay(s string) (time.Time, calendar.DayKey, error) {
	key, err := calendar.ParseDayKey(s)
	if err != nil {
		return time.Time{}, "", err
	}
	d, err := key.Date(location())
	if err != nil {
		return time.Time{}, "", err
	}
	return d, key, nil
}
