package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingRetention struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (r *recordingRetention) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.cutoffs = append(r.cutoffs, cutoff)
	return 1, nil
}

func (r *recordingRetention) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cutoffs)
}

func TestSweeper_SweepsImmediatelyAndPeriodically(t *testing.T) {
	store := &recordingRetention{}
	s := NewSweeper(store, 7*24*time.Hour, 20*time.Millisecond)

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return store.count() >= 3 })

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, cutoff := range store.cutoffs {
		age := time.Since(cutoff)
		if age < 7*24*time.Hour-time.Minute || age > 7*24*time.Hour+time.Minute {
			t.Errorf("cutoff %s not ~7 days ago", cutoff)
		}
	}
}

func TestSweeper_FailureToleratedAndRetried(t *testing.T) {
	store := &recordingRetention{err: errors.New("locked")}
	s := NewSweeper(store, time.Hour, 20*time.Millisecond)

	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(60 * time.Millisecond)
	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()

	waitFor(t, 2*time.Second, func() bool { return store.count() >= 1 })
}

func TestSweeper_StopsCleanly(t *testing.T) {
	store := &recordingRetention{}
	s := NewSweeper(store, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	waitFor(t, time.Second, func() bool { return store.count() == 1 })

	cancel()
	s.Stop()

	if store.count() != 1 {
		t.Errorf("no sweep should start after shutdown, got %d", store.count())
	}
}
