package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/robfig/cron"
)

/**
 * @file: scheduler.go
 * @description: named background jobs over robfig/cron
 */

// JobFunc is a background job. A returned error is logged and recorded but
// never stops the schedule.
type JobFunc func(ctx context.Context) error

// MetricsRecorder receives per-run job measurements.
type MetricsRecorder interface {
	RecordJobRun(jobName string, duration time.Duration, err error)
	UpdateJobsCount(count int)
}

var (
	recorderMu sync.RWMutex
	recorder   MetricsRecorder
)

// SetMetricsRecorder installs the recorder used by every Scheduler.
func SetMetricsRecorder(r MetricsRecorder) {
	recorderMu.Lock()
	recorder = r
	recorderMu.Unlock()
}

func getRecorder() MetricsRecorder {
	recorderMu.RLock()
	defer recorderMu.RUnlock()
	return recorder
}

type Scheduler struct {
	c       *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	names   map[string]struct{}
	running map[string]*sync.Mutex
	wg      sync.WaitGroup
	timeout time.Duration
}

// NewScheduler creates a scheduler; each run gets a context bounded by
// jobTimeout (0 means unbounded) and cancelled on Stop.
func NewScheduler(jobTimeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		c:       cron.New(),
		ctx:     ctx,
		cancel:  cancel,
		names:   make(map[string]struct{}),
		running: make(map[string]*sync.Mutex),
		timeout: jobTimeout,
	}
}

// AddJob registers fn under name with a six field (seconds first) spec or a
// descriptor such as "@every 1h". A run is skipped while the previous run of
// the same job is still in progress.
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.names[name]; dup {
		return fmt.Errorf("cron job %q already registered", name)
	}
	if _, err := cron.Parse(spec); err != nil {
		return fmt.Errorf("invalid spec %q for job %q: %w", spec, name, err)
	}

	lock := &sync.Mutex{}
	if err := s.c.AddFunc(spec, func() { s.run(name, lock, fn) }); err != nil {
		return err
	}
	s.names[name] = struct{}{}
	s.running[name] = lock

	if r := getRecorder(); r != nil {
		r.UpdateJobsCount(len(s.names))
	}
	log.Infow("cron job registered", "job", name, "spec", spec)
	return nil
}

// RunNow executes a registered job synchronously, honouring the overlap guard.
func (s *Scheduler) RunNow(name string, fn JobFunc) {
	s.mu.Lock()
	lock, ok := s.running[name]
	s.mu.Unlock()
	if !ok {
		lock = &sync.Mutex{}
	}
	s.run(name, lock, fn)
}

func (s *Scheduler) run(name string, lock *sync.Mutex, fn JobFunc) {
	if !lock.TryLock() {
		log.Warnw("cron job still running, skip this tick", "job", name)
		return
	}
	defer lock.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn(ctx)
	}()

	elapsed := time.Since(start)
	if r := getRecorder(); r != nil {
		r.RecordJobRun(name, elapsed, err)
	}
	if err != nil {
		log.Errorw("cron job failed", "job", name, "elapsed", elapsed.String(), "error", err)
		return
	}
	log.Debugw("cron job finished", "job", name, "elapsed", elapsed.String())
}

func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop halts scheduling, cancels in-flight runs and waits for them.
func (s *Scheduler) Stop() {
	s.c.Stop()
	s.cancel()
	s.wg.Wait()
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	return out
}
