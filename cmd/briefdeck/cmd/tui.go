package cmd

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/feed"
	"github.com/briefdeck/briefdeck/internal/tui"
)

var (
	tuiView string
	tuiSort string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive terminal dashboard.

Views (Tab to switch):
  Dashboard   Analytics overview, recent emails and the selected email
  Newspaper   Two headline stories above per-category columns
  Masonry     Stories as cards in columns that follow the terminal width

Navigation:
  ↑/k, ↓/j    Move up/down
  Enter       Select the email under the cursor
  Esc         Clear the selection
  a           Analyze the email under the cursor
  s           Cycle sort: importance, most recent, reading time
  f           Cycle category filter
  r           Refresh
  ?           Toggle full help
  q           Quit

Logs are written to briefdeck.log in the home directory. Background jobs
from the [refresh] section of config.toml run while the dashboard is open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("the dashboard needs a terminal; use 'briefdeck emails list' or --json commands for scripted output")
		}

		opts, err := tuiOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		// The screen belongs to the TUI; log to a file instead of stderr.
		logFile, err := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))

		c, err := newClient()
		if err != nil {
			return err
		}
		s, err := newStore(c)
		if err != nil {
			return err
		}

		sched, err := startScheduler(newJobFunc(s, c))
		if err != nil {
			return err
		}
		if sched != nil {
			defer waitForScheduler(cmd.ErrOrStderr(), sched)
		}

		opts.Context = cmd.Context()
		opts.Insights = c
		opts.PxPerCell = cfg.Layout.PxPerCell
		opts.Version = Version

		model := tui.New(s, opts)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		final, err := p.Run()
		if m, ok := final.(tui.Model); ok {
			m.Close()
		} else {
			model.Close()
		}
		if err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	},
}

// tuiOptionsFromFlags resolves the initial view and sort from flags, then
// the [layout] config.
func tuiOptionsFromFlags(cmd *cobra.Command) (tui.Options, error) {
	var opts tui.Options

	view := cfg.Layout.DefaultView
	if cmd.Flags().Changed("view") {
		view = tuiView
	}
	v, err := tui.ParseViewMode(view)
	if err != nil {
		return opts, err
	}
	opts.View = v

	sortName := cfg.Layout.DefaultSort
	if cmd.Flags().Changed("sort") {
		sortName = tuiSort
	}
	k, err := feed.ParseSortKey(sortName)
	if err != nil {
		return opts, err
	}
	opts.Sort = k
	return opts, nil
}

func init() {
	tuiCmd.Flags().StringVar(&tuiView, "view", "", "initial view: dashboard, newspaper or masonry")
	tuiCmd.Flags().StringVar(&tuiSort, "sort", "", "initial sort: importance, recent or reading")
	rootCmd.AddCommand(tuiCmd)
}
