package app

import (
	"context"
	"log/slog"
	"time"

	"crypto_converter/internal/api"
	"crypto_converter/internal/service"
)

// RunAPI runs the HTTP query service. The API process has no quote cache of
// its own; latest-mode conversions read the most recent persisted rows, so
// the freshness window naturally covers flush lag as well.
func RunAPI(ctx context.Context, b *Bootstrap) error {
	converter := service.NewConverter(nil, b.Storage, b.Config.MaxStaleness())
	server := api.NewServer(b.Config.API.ListenAddr, converter)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
