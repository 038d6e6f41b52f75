package app

import (
	"log/slog"
	"os"

	"crypto_converter/internal/infra"
	"crypto_converter/internal/infra/storage"
)

// Bootstrap orchestrates the startup sequence shared by both run modes:
// config, logger, durable storage.
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, installs the logger, and opens storage.
// Component tags every log record ("consumer" or "api").
func (b *Bootstrap) Initialize(component string) error {
	configPath := os.Getenv("CONVERTER_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// A missing file is fine here: defaults plus env overrides form a
	// runnable config. Any other config error is fatal.
	cfg, err := infra.LoadConfigOrDefault(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg, component)
	slog.SetDefault(logger)

	store, err := storage.NewStorage(cfg.Database.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("Database initialized", slog.String("path", cfg.Database.Path))

	return nil
}
