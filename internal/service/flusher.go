package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"crypto_converter/internal/domain"
	"crypto_converter/internal/infra"
)

// SnapshotStore persists one cache snapshot atomically.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, quotes []domain.Quote) error
}

// Flusher periodically persists the cache's current snapshot. The first
// flush happens as soon as the first quote of the process lifetime arrives,
// so data is queryable without waiting a full interval. A failed flush is
// logged and retried on the next tick; it never stops ingestion.
type Flusher struct {
	cache    *QuoteCache
	store    SnapshotStore
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFlusher creates a flusher writing cache snapshots to store.
func NewFlusher(cache *QuoteCache, store SnapshotStore, interval time.Duration) *Flusher {
	return &Flusher{
		cache:    cache,
		store:    store,
		interval: interval,
	}
}

// Start launches the flush loop.
func (f *Flusher) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	f.wg.Add(1)
	go f.run(ctx)
}

func (f *Flusher) run(ctx context.Context) {
	defer f.wg.Done()

	// First-flush fast path: trigger once, as soon as any quote arrives.
	select {
	case <-ctx.Done():
		f.finalFlush()
		return
	case <-f.cache.FirstUpdate():
		f.flush(ctx)
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.finalFlush()
			return
		case <-ticker.C:
			f.flush(ctx)
		}
	}
}

func (f *Flusher) flush(ctx context.Context) {
	snapshot := f.cache.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	err := f.store.SaveSnapshot(ctx, snapshot)
	infra.GlobalMetrics.RecordFlush(err)
	if err != nil {
		slog.Warn("Snapshot flush failed, retrying next tick",
			slog.Int("quotes", len(snapshot)),
			slog.Any("error", err),
		)
		return
	}

	slog.Debug("Snapshot flushed", slog.Int("quotes", len(snapshot)))
}

// finalFlush performs one best-effort flush during shutdown so the latest
// observations are not lost. Uses a short fresh context since the run
// context is already cancelled.
func (f *Flusher) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f.flush(ctx)
}

// Stop cancels the loop and waits for the final flush to complete.
func (f *Flusher) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
}
