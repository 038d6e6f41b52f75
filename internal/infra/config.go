package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"crypto_converter/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// binanceStreamHardLimit is the provider-side maximum number of streams
	// a single combined-stream connection may carry.
	binanceStreamHardLimit = 1024
)

// Config holds every application setting. Values are loaded from YAML and
// then overridden by environment variables for deployment-sensitive fields.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Binance struct {
		WSURL             string   `yaml:"ws_url"`
		RestURL           string   `yaml:"rest_url"`
		SupportedQuotes   []string `yaml:"supported_quotes"` // empty = all spot pairs
		MaxStreamsPerConn int      `yaml:"max_streams_per_conn"`
	} `yaml:"binance"`

	Quotes struct {
		FlushIntervalSec int `yaml:"flush_interval_sec"`
		RetentionDays    int `yaml:"retention_days"`
		MaxStalenessSec  int `yaml:"max_staleness_sec"`
		SweepIntervalMin int `yaml:"sweep_interval_min"`
	} `yaml:"quotes"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	API struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a config with the stock defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "crypto-converter"
	cfg.Binance.WSURL = "wss://stream.binance.com:9443"
	cfg.Binance.RestURL = "https://api.binance.com"
	cfg.Binance.SupportedQuotes = []string{"USDT", "USDC"}
	cfg.Binance.MaxStreamsPerConn = 800
	cfg.Quotes.FlushIntervalSec = 30
	cfg.Quotes.RetentionDays = 7
	cfg.Quotes.MaxStalenessSec = 60
	cfg.Quotes.SweepIntervalMin = 60
	cfg.Database.Path = "quotes.db"
	cfg.API.ListenAddr = ":8000"
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads and parses the configuration file. A missing file is
// reported as domain.ErrConfigNotFound so callers can decide whether to
// fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrConfigNotFound)
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigOrDefault loads the config file, falling back to stock defaults
// (plus environment overrides) when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrConfigNotFound) {
		return nil, err
	}

	cfg = DefaultConfig()
	overrideWithEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Binance.WSURL, "ws://") && !strings.HasPrefix(c.Binance.WSURL, "wss://") {
		return &domain.ConfigError{Field: "binance.ws_url", Err: fmt.Errorf("invalid URL: %s", c.Binance.WSURL)}
	}
	if !strings.HasPrefix(c.Binance.RestURL, "http://") && !strings.HasPrefix(c.Binance.RestURL, "https://") {
		return &domain.ConfigError{Field: "binance.rest_url", Err: fmt.Errorf("invalid URL: %s", c.Binance.RestURL)}
	}
	if c.Binance.MaxStreamsPerConn <= 0 || c.Binance.MaxStreamsPerConn > binanceStreamHardLimit {
		return &domain.ConfigError{Field: "binance.max_streams_per_conn", Err: fmt.Errorf("must be in 1..%d, got %d", binanceStreamHardLimit, c.Binance.MaxStreamsPerConn)}
	}
	if c.Quotes.FlushIntervalSec <= 0 {
		return &domain.ConfigError{Field: "quotes.flush_interval_sec", Err: errors.New("must be positive")}
	}
	if c.Quotes.RetentionDays <= 0 {
		return &domain.ConfigError{Field: "quotes.retention_days", Err: errors.New("must be positive")}
	}
	if c.Quotes.MaxStalenessSec <= 0 {
		return &domain.ConfigError{Field: "quotes.max_staleness_sec", Err: errors.New("must be positive")}
	}
	if c.Quotes.SweepIntervalMin <= 0 {
		return &domain.ConfigError{Field: "quotes.sweep_interval_min", Err: errors.New("must be positive")}
	}
	if c.Database.Path == "" {
		return &domain.ConfigError{Field: "database.path", Err: errors.New("missing value")}
	}
	return nil
}

// FlushInterval returns the flush interval as a duration.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.Quotes.FlushIntervalSec) * time.Second
}

// RetentionAge returns the maximum age a persisted quote may reach.
func (c *Config) RetentionAge() time.Duration {
	return time.Duration(c.Quotes.RetentionDays) * 24 * time.Hour
}

// MaxStaleness returns the freshness window for latest-mode conversions.
func (c *Config) MaxStaleness() time.Duration {
	return time.Duration(c.Quotes.MaxStalenessSec) * time.Second
}

// SweepInterval returns how often the retention sweeper runs.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Quotes.SweepIntervalMin) * time.Minute
}

// overrideWithEnv applies environment variables over the file values.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("CONVERTER_BINANCE_WS_URL"); v != "" {
		cfg.Binance.WSURL = v
	}
	if v := os.Getenv("CONVERTER_BINANCE_REST_URL"); v != "" {
		cfg.Binance.RestURL = v
	}
	if v := os.Getenv("CONVERTER_SUPPORTED_QUOTES"); v != "" {
		quotes := make([]string, 0)
		for _, q := range strings.Split(v, ",") {
			if q = strings.TrimSpace(q); q != "" {
				quotes = append(quotes, strings.ToUpper(q))
			}
		}
		cfg.Binance.SupportedQuotes = quotes
	}
	if v := os.Getenv("CONVERTER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CONVERTER_LISTEN_ADDR"); v != "" {
		cfg.API.ListenAddr = v
	}
	if v := os.Getenv("CONVERTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
