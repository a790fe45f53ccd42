package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu     sync.Mutex
	runs   map[string]int
	errors map[string]int
	count  int
}

func (f *fakeRecorder) RecordJobRun(name string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[name]++
	if err != nil {
		f.errors[name]++
	}
}

func (f *fakeRecorder) UpdateJobsCount(n int) {
	f.mu.Lock()
	f.count = n
	f.mu.Unlock()
}

func TestScheduler_AddJobValidation(t *testing.T) {
	s := NewScheduler(0)
	defer s.Stop()

	require.NoError(t, s.AddJob("purge", "@every 1h", func(context.Context) error { return nil }))
	assert.Error(t, s.AddJob("purge", "@every 1h", func(context.Context) error { return nil }))
	assert.Error(t, s.AddJob("bad", "not a spec", func(context.Context) error { return nil }))
	assert.ElementsMatch(t, []string{"purge"}, s.Jobs())
}

func TestScheduler_RunNowRecordsAndRecovers(t *testing.T) {
	rec := &fakeRecorder{runs: map[string]int{}, errors: map[string]int{}}
	SetMetricsRecorder(rec)
	defer SetMetricsRecorder(nil)

	s := NewScheduler(time.Second)
	defer s.Stop()

	s.RunNow("ok", func(context.Context) error { return nil })
	s.RunNow("fails", func(context.Context) error { return errors.New("boom") })
	assert.NotPanics(t, func() {
		s.RunNow("panics", func(context.Context) error { panic("oops") })
	})

	assert.Equal(t, 1, rec.runs["ok"])
	assert.Equal(t, 0, rec.errors["ok"])
	assert.Equal(t, 1, rec.errors["fails"])
	assert.Equal(t, 1, rec.errors["panics"])
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := NewScheduler(0)
	defer s.Stop()

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})
	job := func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return nil
	}
	require.NoError(t, s.AddJob("slow", "@every 1h", job))

	done := make(chan struct{})
	go func() {
		s.RunNow("slow", job)
		close(done)
	}()
	<-started

	// the second run must be skipped while the first holds the job lock
	s.RunNow("slow", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	close(release)
	<-done

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
