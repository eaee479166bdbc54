package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// Clock abstracts time so tests can drive the scheduler with fake instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the real wall clock.
func SystemClock() Clock { return systemClock{} }

// JobFunc is one unit of scheduled work. Errors are recorded on the job's
// status and do not unschedule it.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	trigger  Trigger
	run      JobFunc
	nextRun  time.Time
	lastRun  time.Time
	runCount int
	lastErr  string
}

// Scheduler fires registered jobs on a fixed tick. Jobs run sequentially on
// the tick goroutine; a panicking job is recovered and recorded, never
// crashing the loop.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*job
	clock   Clock
	tick    time.Duration
	started bool
	stop    chan struct{}
	done    chan struct{}
}

func New(clock Clock, tick time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if tick <= 0 {
		tick = time.Minute
	}
	return &Scheduler{
		jobs:  make(map[string]*job),
		clock: clock,
		tick:  tick,
	}
}

// Register adds a named job. Names are unique; registering a duplicate is an
// error.
func (s *Scheduler) Register(name string, trigger Trigger, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q is already registered", name)
	}
	s.jobs[name] = &job{
		name:    name,
		trigger: trigger,
		run:     fn,
		nextRun: trigger.Next(s.clock.Now()),
	}
	return nil
}

// Remove drops a job by name. Removing an unknown name is a no-op.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, name)
}

// Start launches the tick loop. Calling it twice is a logged no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		logger.Log.Warn("scheduler already started")
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(ctx)
	logger.WithField("tick", s.tick.String()).Info("Scheduler started")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunPending(ctx, s.clock.Now())
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the tick loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		logger.Log.Warn("scheduler stop timed out waiting for running job")
	}
}

// RunPending fires every job whose next run is due at the given instant.
// Jobs run one after another; each reschedules off the same instant.
func (s *Scheduler) RunPending(ctx context.Context, now time.Time) {
	for _, due := range s.dueJobs(now) {
		s.runJob(ctx, due, now)
	}
}

func (s *Scheduler) dueJobs(now time.Time) []*job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*job
	for _, j := range s.jobs {
		if !j.nextRun.After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, k int) bool { return due[i].name < due[k].name })
	return due
}

func (s *Scheduler) runJob(ctx context.Context, j *job, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.recordRun(j, now, fmt.Sprintf("panic: %v", r))
			logger.WithField("job", j.name).Errorf("scheduled job panicked: %v", r)
		}
	}()

	logger.WithField("job", j.name).Debug("running scheduled job")
	err := j.run(ctx)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		logger.WithError(err).WithField("job", j.name).Error("scheduled job failed")
	}
	s.recordRun(j, now, errMsg)
}

func (s *Scheduler) recordRun(j *job, now time.Time, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.lastRun = now
	j.runCount++
	j.lastErr = errMsg
	j.nextRun = j.trigger.Next(now)
}

// Jobs reports the current schedule, sorted by job name.
func (s *Scheduler) Jobs() []models.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	statuses := make([]models.JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		status := models.JobStatus{
			Name:      j.name,
			Trigger:   j.trigger.String(),
			NextRun:   j.nextRun,
			RunCount:  j.runCount,
			LastError: j.lastErr,
		}
		if !j.lastRun.IsZero() {
			lastRun := j.lastRun
			status.LastRun = &lastRun
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, k int) bool { return statuses[i].Name < statuses[k].Name })
	return statuses
}
