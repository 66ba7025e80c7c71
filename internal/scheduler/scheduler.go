// Package scheduler runs named background jobs, such as periodic refreshes
// of the content store, on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/briefdeck/briefdeck/internal/config"
)

// JobFunc performs one run of the named job. The context is cancelled when
// the scheduler stops. On success it returns a one-line report of what the
// run did, such as per-collection counts after a refresh.
type JobFunc func(ctx context.Context, name string) (report string, err error)

// JobStatus reports the state of one scheduled job.
type JobStatus struct {
	Name      string        `json:"name"`
	Schedule  string        `json:"schedule"`
	NextRun   time.Time     `json:"next_run"`
	Running   bool          `json:"running"`
	Runs      int           `json:"runs"`
	Failures  int           `json:"failures"`
	LastRun   time.Time     `json:"last_run,omitempty"` // Last successful run
	Duration  time.Duration `json:"duration,omitempty"` // Of the last finished run
	Report    string        `json:"report,omitempty"`   // From the last successful run
	LastError string        `json:"last_error,omitempty"`
}

// parser accepts standard five-field expressions and descriptors such as
// @hourly or @every 5m.
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

var (
	errStopped    = errors.New("scheduler is stopped")
	errNotFound   = errors.New("job is not scheduled")
	errOverlapped = errors.New("job is already running")
)

// job is the bookkeeping for one named job.
type job struct {
	spec    string
	entry   cron.EntryID
	running bool
	runs    int
	fails   int
	lastOK  time.Time
	took    time.Duration
	report  string
	lastErr error
}

// Scheduler runs jobs on cron schedules. A job never overlaps itself: a
// tick that arrives while the previous run is in progress is skipped.
type Scheduler struct {
	cron   *cron.Cron
	run    JobFunc
	logger *slog.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	active  bool
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler that calls run for every due job.
func New(run JobFunc) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser)),
		run:    run,
		logger: slog.Default(),
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// WithLogger sets the logger for the scheduler.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

// AddJob schedules name with the given cron expression. Rescheduling a job
// keeps its run history.
func (s *Scheduler) AddJob(name, cronExpr string) error {
	sched, err := parser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if ok {
		s.cron.Remove(j.entry)
	} else {
		j = &job{}
		s.jobs[name] = j
	}
	j.spec = cronExpr
	j.entry = s.cron.Schedule(sched, cron.FuncJob(func() { s.tick(name) }))

	s.logger.Info("scheduled job", "job", name, "schedule", cronExpr, "next_run", s.cron.Entry(j.entry).Next)
	return nil
}

// AddJobsFromConfig schedules every job that has a schedule in cfg.
// It returns the number of jobs scheduled and any errors encountered.
func (s *Scheduler) AddJobsFromConfig(cfg *config.Config) (int, []error) {
	var errs []error
	scheduled := 0
	for _, js := range cfg.ScheduledJobs() {
		if err := s.AddJob(js.Name, js.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", js.Name, err))
			continue
		}
		scheduled++
	}
	return scheduled, errs
}

// RemoveJob unschedules name and forgets its history.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[name]; ok {
		s.cron.Remove(j.entry)
		delete(s.jobs, name)
		s.logger.Info("removed schedule", "job", name)
	}
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.active = true
	s.stopped = false
	n := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", n)
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && !s.stopped
}

// Stop stops scheduling and cancels running jobs. The returned context is
// done once every run has returned.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.logger.Info("scheduler stopping")

	ticks := s.cron.Stop()
	s.cancel()

	done, finish := context.WithCancel(context.Background())
	go func() {
		defer finish()
		<-ticks.Done()
		s.wg.Wait()
	}()
	return done
}

// IsScheduled reports whether name has been added.
func (s *Scheduler) IsScheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Trigger runs name now, outside its schedule. It fails if the job is
// unknown or already running, or if the scheduler has been stopped.
func (s *Scheduler) Trigger(name string) error {
	if err := s.claim(name); err != nil {
		return fmt.Errorf("trigger %s: %w", name, err)
	}
	go s.execute(name)
	return nil
}

// tick is the cron callback for name.
func (s *Scheduler) tick(name string) {
	if err := s.claim(name); err != nil {
		s.logger.Debug("skipping tick", "job", name, "reason", err)
		return
	}
	s.execute(name)
}

// claim marks name as running.
func (s *Scheduler) claim(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	switch {
	case s.stopped:
		return errStopped
	case !ok:
		return errNotFound
	case j.running:
		return errOverlapped
	}
	j.running = true
	s.wg.Add(1)
	return nil
}

// execute performs one claimed run of name and records its outcome.
func (s *Scheduler) execute(name string) {
	defer s.wg.Done()

	s.logger.Debug("starting job", "job", name)
	start := time.Now()
	report, err := s.run(s.ctx, name)
	took := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		// Removed while running.
		return
	}
	j.running = false
	j.runs++
	j.took = took
	j.lastErr = err
	if err != nil {
		j.fails++
		s.logger.Error("job failed", "job", name, "duration", took, "error", err)
		return
	}
	j.lastOK = start.Add(took)
	j.report = report
	s.logger.Info("job completed", "job", name, "duration", took, "report", report)
}

// Status returns the state of every scheduled job, sorted by name.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for name, j := range s.jobs {
		st := JobStatus{
			Name:     name,
			Schedule: j.spec,
			NextRun:  s.cron.Entry(j.entry).Next,
			Running:  j.running,
			Runs:     j.runs,
			Failures: j.fails,
			LastRun:  j.lastOK,
			Duration: j.took,
			Report:   j.report,
		}
		if j.lastErr != nil {
			st.LastError = j.lastErr.Error()
		}
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b JobStatus) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// ValidateCronExpr validates a cron expression without scheduling anything.
func ValidateCronExpr(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
