// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus is the outcome of the last run of a job
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the body of a job. ctx is cancelled on timeout or shutdown.
type JobFunc func(ctx context.Context) error

// Job is a named function run on a cron schedule. Schedule accepts standard
// five-field expressions and descriptors such as "@hourly" or "@every 10m".
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration // zero uses the scheduler default
	Run      JobFunc
}

// JobState reports the last execution of a job
type JobState struct {
	Name       string
	Schedule   string
	Status     JobStatus
	LastError  string
	LastRunAt  *time.Time
	LastTook   time.Duration
	NextRunAt  *time.Time
	RunCount   int
	FailCount  int
	registered cron.EntryID
}

// Config holds scheduler settings
type Config struct {
	JobTimeout time.Duration
	Location   *time.Location
}

// Scheduler wraps a cron runner with timeouts, overlap protection and per-job state
type Scheduler struct {
	cron    *cron.Cron
	cfg     Config
	logger  *zap.Logger
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	jobs    map[string]*Job
	states  map[string]*JobState
	running bool
}

// New creates a scheduler; jobs are added with Register before Start
func New(cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger = logger.Named("scheduler")
	cl := cronLogger{logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		cfg:     cfg,
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
		jobs:    make(map[string]*Job),
		states:  make(map[string]*JobState),
	}
}

// Register validates and adds a job
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Schedule == "" || job.Run == nil {
		return ErrInvalidJob
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerRunning
	}
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}

	j := job
	id, err := s.cron.AddFunc(j.Schedule, func() { s.execute(&j) })
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidJob, j.Name, err)
	}
	s.jobs[j.Name] = &j
	s.states[j.Name] = &JobState{Name: j.Name, Schedule: j.Schedule, Status: JobStatusIdle, registered: id}
	return nil
}

// Start begins firing jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop prevents new runs, cancels running ones and waits for them to return
// or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.cancel()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	s.cancel()

	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow executes a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(job)
}

// States returns a snapshot of every job ordered by name
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobState, 0, len(s.states))
	for _, st := range s.states {
		cp := *st
		if entry := s.cron.Entry(st.registered); entry.Valid() && !entry.Next.IsZero() {
			next := entry.Next
			cp.NextRunAt = &next
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) execute(job *Job) error {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = s.cfg.JobTimeout
	}
	ctx, cancel := context.WithTimeout(s.baseCtx, timeout)
	defer cancel()

	start := time.Now()
	s.update(job.Name, func(st *JobState) {
		st.Status = JobStatusRunning
		st.LastRunAt = &start
	})

	err := s.safeRun(ctx, job)
	took := time.Since(start)

	s.update(job.Name, func(st *JobState) {
		st.RunCount++
		st.LastTook = took
		if err != nil {
			st.Status = JobStatusFailed
			st.LastError = err.Error()
			st.FailCount++
			return
		}
		st.Status = JobStatusSuccess
		st.LastError = ""
	})

	if err != nil {
		s.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("took", took),
			zap.Bool("timed_out", errors.Is(err, context.DeadlineExceeded)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("job completed", zap.String("job", job.Name), zap.Duration("took", took))
	return nil
}

func (s *Scheduler) safeRun(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v", r)
		}
	}()
	return job.Run(ctx)
}

func (s *Scheduler) update(name string, fn func(*JobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[name]; ok {
		fn(st)
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
