// Package jobs runs the periodic maintenance work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"anoa.com/devsearch/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Job is a named unit of periodic work. An empty Schedule registers the job
// for on-demand runs only.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]Job
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]Job),
	}
}

func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run func")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	if job.Schedule != "" {
		if _, err := s.cron.AddFunc(job.Schedule, func() { _ = s.execute(s.ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
		logger.Log.WithField("job", job.Name).WithField("schedule", job.Schedule).Info("job scheduled")
	}

	s.jobs[job.Name] = job
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		logger.Log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes a registered job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.execute(ctx, job)
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	log := logger.Log.WithField("job", job.Name)
	log.Debug("job started")

	if err := job.Run(ctx); err != nil {
		log.WithError(err).Error("job failed")
		return err
	}

	log.Debug("job completed")
	return nil
}
