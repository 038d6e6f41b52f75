package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crypto_converter/internal/domain"
	"crypto_converter/internal/infra"
	"crypto_converter/internal/infra/binance"
	"crypto_converter/internal/service"
)

// maxDiscoveryRetries bounds startup retries of pair discovery. Transient
// failures (network, rate limits, 5xx) are retried with backoff; anything
// else fails startup immediately.
const maxDiscoveryRetries = 5

// pairSource provides the tradable pair universe.
type pairSource interface {
	FetchSpotPairs(ctx context.Context, quoteFilter []string) ([]domain.Pair, error)
}

// discoverPairs fetches the pair universe, retrying retriable failures.
func discoverPairs(ctx context.Context, src pairSource, quoteFilter []string) ([]domain.Pair, error) {
	var lastErr error
	for attempt := 0; attempt <= maxDiscoveryRetries; attempt++ {
		pairs, err := src.FetchSpotPairs(ctx, quoteFilter)
		if err == nil {
			return pairs, nil
		}
		if !domain.IsRetriable(err) {
			return nil, err
		}
		lastErr = err

		delay := infra.Backoff(attempt)
		slog.Warn("Pair discovery failed",
			slog.Any("error", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

// RunConsumer runs the ingestion pipeline: pair discovery, one stream worker
// per batch, the flush scheduler, and the retention sweeper. Blocks until
// ctx is cancelled, then shuts every task down cleanly (workers close their
// connections, the flusher performs one final flush, an in-flight sweep
// completes).
func RunConsumer(ctx context.Context, b *Bootstrap) error {
	cfg := b.Config

	client := binance.NewClient(cfg)
	pairs, err := discoverPairs(ctx, client, cfg.Binance.SupportedQuotes)
	if err != nil {
		return fmt.Errorf("pair discovery failed: %w", err)
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no spot pairs discovered")
	}

	batches := service.BatchPairs(pairs, cfg.Binance.MaxStreamsPerConn)
	slog.Info("Starting stream batches",
		slog.Int("pairs", len(pairs)),
		slog.Int("batches", len(batches)),
	)

	cache := service.NewQuoteCache()

	workers := make([]*binance.Worker, 0, len(batches))
	for i, batch := range batches {
		w := binance.NewWorker(i, cfg.Binance.WSURL, batch, cache)
		if err := w.Connect(ctx); err != nil {
			return fmt.Errorf("worker %d: %w", i, err)
		}
		workers = append(workers, w)
	}

	flusher := service.NewFlusher(cache, b.Storage, cfg.FlushInterval())
	flusher.Start(ctx)

	sweeper := service.NewSweeper(b.Storage, cfg.RetentionAge(), cfg.SweepInterval())
	sweeper.Start(ctx)

	go reportMetrics(ctx)

	slog.Info("Consumer pipeline operational")
	<-ctx.Done()

	slog.Info("Shutting down consumer")
	for _, w := range workers {
		w.Disconnect()
	}
	flusher.Stop()
	sweeper.Stop()
	return nil
}

// reportMetrics logs a metrics snapshot every minute.
func reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := infra.GlobalMetrics.Snapshot()
			slog.Info("Pipeline metrics",
				slog.Uint64("messages", snap.MessagesDecoded),
				slog.Uint64("decode_errors", snap.DecodeErrors),
				slog.Uint64("stale_dropped", snap.StaleDropped),
				slog.Uint64("reconnects", snap.Reconnects),
				slog.Uint64("flushes", snap.Flushes),
				slog.Uint64("flush_errors", snap.FlushErrors),
				slog.Uint64("sweeps", snap.Sweeps),
				slog.Uint64("sweep_errors", snap.SweepErrors),
				slog.Int("connections", int(snap.ActiveConnections)),
			)
		}
	}
}
