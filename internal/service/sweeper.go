package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"crypto_converter/internal/infra"
)

// RetentionStore deletes persisted quotes older than cutoff.
type RetentionStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes persisted quotes older than the retention
// age. Sweeps are idempotent; a failed sweep is logged and retried on the
// next tick. An in-flight sweep completes before shutdown, but no new sweep
// starts after cancellation.
type Sweeper struct {
	store     RetentionStore
	retention time.Duration
	interval  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper deleting rows older than retention, every interval.
func NewSweeper(store RetentionStore, retention, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:     store,
		retention: retention,
		interval:  interval,
	}
}

// Start launches the sweep loop. One sweep runs immediately so a restarted
// process does not carry stale rows for a full interval.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)

	// A sweep already in flight finishes even if ctx is cancelled mid-delete;
	// the delete runs on its own short context.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	deleted, err := s.store.DeleteOlderThan(opCtx, cutoff)
	infra.GlobalMetrics.RecordSweep(err)
	if err != nil {
		slog.Warn("Retention sweep failed, retrying next tick", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		slog.Info("Retention sweep removed old quotes",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff),
		)
	}
}

// Stop cancels the loop and waits for any in-flight sweep.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
