package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/config"
	"github.com/briefdeck/briefdeck/internal/remote"
	"github.com/briefdeck/briefdeck/internal/scheduler"
	"github.com/briefdeck/briefdeck/internal/store"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch emails, categories and stories once",
	Long: `Fetch every collection once and report what was loaded. Each collection
settles independently; failures are listed next to what did load.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		s, err := newStore(c)
		if err != nil {
			return err
		}
		err = s.FetchAll(cmd.Context())
		printRefresh(cmd.OutOrStdout(), s.Get())
		return err
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the background refresh and summary jobs",
	Long: `Run the jobs configured in the [refresh] section of config.toml in the
foreground until interrupted.

  [refresh]
  schedule = "*/10 * * * *"        # refetch every 10 minutes
  summary_schedule = "0 18 * * *"  # generate the daily summary at 6 PM

Schedules are cron expressions (minute hour day-of-month month day-of-week)
or descriptors such as "@every 5m" and "@hourly".

Use Ctrl+C to stop gracefully.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

// newJobFunc runs the named background job against s and c.
func newJobFunc(s *store.Store, c *remote.Client) scheduler.JobFunc {
	return func(ctx context.Context, name string) (string, error) {
		switch name {
		case config.JobRefresh:
			err := s.FetchAll(ctx)
			return refreshReport(s.Get()), err
		case config.JobSummary:
			ack, err := c.GenerateSummary(ctx, nil)
			if err != nil {
				return "", err
			}
			var resp struct {
				Date string `json:"date"`
			}
			if err := ack.Decode(&resp); err != nil || resp.Date == "" {
				return "summary generated", nil
			}
			return "summary generated for " + resp.Date, nil
		default:
			return "", fmt.Errorf("unknown job %q", name)
		}
	}
}

// refreshReport summarizes each collection of st on one line.
func refreshReport(st store.State) string {
	return fmt.Sprintf("emails %d (%s), categories %d (%s), content %d (%s)",
		len(st.Emails), st.EmailsStatus,
		len(st.Categories), st.CategoriesStatus,
		len(st.Content), st.ContentStatus)
}

// startScheduler schedules the configured jobs. It returns nil when no job
// is configured.
func startScheduler(run scheduler.JobFunc) (*scheduler.Scheduler, error) {
	if len(cfg.ScheduledJobs()) == 0 {
		return nil, nil
	}
	sched := scheduler.New(run).WithLogger(logger)
	count, errs := sched.AddJobsFromConfig(cfg)
	for _, err := range errs {
		logger.Error("failed to schedule job", "error", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no jobs could be scheduled")
	}
	sched.Start()
	return sched, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if len(cfg.ScheduledJobs()) == 0 {
		return fmt.Errorf("no jobs configured\n\nAdd schedules to %s:\n\n  [refresh]\n  schedule = \"*/10 * * * *\"\n  summary_schedule = \"0 18 * * *\"", cfg.ConfigFilePath())
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	s, err := newStore(c)
	if err != nil {
		return err
	}
	unsubscribe := s.Subscribe(func(st store.State) {
		if !st.Loading() {
			logger.Debug("store updated", "emails", len(st.Emails), "stories", len(st.Content), "version", st.Version)
		}
	})
	defer unsubscribe()

	sched, err := startScheduler(newJobFunc(s, c))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scheduler started against %s\n", c.BaseURL())
	for _, st := range sched.Status() {
		fmt.Fprintf(out, "  %s (%s): next run at %s\n", st.Name, st.Schedule, st.NextRun.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop.")

	<-cmd.Context().Done()
	fmt.Fprintln(out, "Waiting for running jobs to complete...")
	err = waitForScheduler(out, sched)
	printJobStatus(out, sched.Status())
	return err
}

// printJobStatus writes each job's run counts and latest outcome.
func printJobStatus(w io.Writer, statuses []scheduler.JobStatus) {
	for _, st := range statuses {
		fmt.Fprintf(w, "  %s: %d run(s), %d failed", st.Name, st.Runs, st.Failures)
		if st.Report != "" {
			fmt.Fprintf(w, "; last: %s", st.Report)
		}
		if st.LastError != "" {
			fmt.Fprintf(w, "; error: %s", st.LastError)
		}
		fmt.Fprintln(w)
	}
}

// waitForScheduler stops sched and waits for running jobs, up to 30s.
func waitForScheduler(out io.Writer, sched *scheduler.Scheduler) error {
	select {
	case <-sched.Stop().Done():
		return nil
	case <-time.After(30 * time.Second):
		fmt.Fprintln(out, "Shutdown timed out after 30 seconds.")
		return nil
	}
}

func printRefresh(w io.Writer, st store.State) {
	fmt.Fprintf(w, "Emails:     %d (%s)\n", len(st.Emails), st.EmailsStatus)
	fmt.Fprintf(w, "Categories: %d (%s)\n", len(st.Categories), st.CategoriesStatus)
	fmt.Fprintf(w, "Stories:    %d (%s)\n", len(st.Content), st.ContentStatus)
	for _, msg := range []string{st.Error, st.CategoriesError, st.ContentError} {
		if msg != "" {
			fmt.Fprintln(w, msg)
		}
	}
}

func init() {
	rootCmd.AddCommand(refreshCmd, scheduleCmd)
}
