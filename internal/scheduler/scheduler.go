package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/outlierline/pkg/logger"
)

// DefaultTimeout bounds a single run
const DefaultTimeout = 2 * time.Minute

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	timeout time.Duration

	mu     sync.RWMutex
	jobs   map[string]*entry
	ctx    context.Context
	cancel context.CancelFunc
}

type entry struct {
	job     Job
	id      cron.EntryID
	history JobHistory
	running bool
}

// New creates a new scheduler
func New(log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  log.Component("scheduler"),
		timeout: DefaultTimeout,
		jobs:    make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// WithTimeout overrides the per-run timeout
func (s *Scheduler) WithTimeout(d time.Duration) *Scheduler {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// AddJob registers a job on its cron schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		_ = s.run(name)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = &entry{job: job, id: id}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unschedules a job
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(e.id)
	delete(s.jobs, name)
	s.logger.WithField("job", name).Info("Job removed from scheduler")

	return nil
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow runs a job synchronously, outside of its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	_, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	return s.run(name)
}

// run executes one pass. A job still running from the previous tick is skipped.
func (s *Scheduler) run(name string) error {
	s.mu.Lock()
	e, exists := s.jobs[name]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("job %s not found", name)
	}
	start := time.Now()
	if e.running {
		e.history.Add(JobResult{JobName: name, StartTime: start, Skipped: true})
		s.mu.Unlock()
		s.logger.WithField("job", name).Warn("Previous run still in progress, skipping")
		return nil
	}
	e.running = true
	s.mu.Unlock()

	log := s.logger.WithField("job", name)
	log.Debug("Job started")

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	err := e.job.Run(ctx)
	cancel()

	result := JobResult{
		JobName:   name,
		StartTime: start,
		Duration:  time.Since(start),
		Success:   err == nil,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.mu.Lock()
	e.running = false
	e.history.Add(result)
	s.mu.Unlock()

	if err != nil {
		log.WithError(err).WithField("duration", result.Duration).Error("Job failed")
		return err
	}

	log.WithField("duration", result.Duration).Info("Job completed")
	return nil
}

// History returns up to n most recent results of a job
func (s *Scheduler) History(name string, n int) ([]JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return e.history.Latest(n), nil
}

// Jobs returns the registered job names, sorted
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JobStats summarizes a job's history
type JobStats struct {
	JobName     string     `json:"job_name"`
	Schedule    string     `json:"schedule"`
	TotalRuns   int        `json:"total_runs"`
	SuccessRate float64    `json:"success_rate"`
	Running     bool       `json:"running"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Stats returns statistics for all jobs
func (s *Scheduler) Stats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.jobs))
	for name, e := range s.jobs {
		st := JobStats{
			JobName:     name,
			Schedule:    e.job.Schedule(),
			TotalRuns:   e.history.Len(),
			SuccessRate: e.history.SuccessRate(),
			Running:     e.running,
		}
		if last := e.history.Latest(1); len(last) == 1 {
			t := last[0].StartTime
			st.LastRun = &t
			st.LastError = last[0].Error
		}
		stats[name] = st
	}
	return stats
}
