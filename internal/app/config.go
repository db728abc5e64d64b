package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultWatchDebounce is how long Watch waits for file events to settle.
const DefaultWatchDebounce = 500 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath  string // arrangement file or directory
	Arrangement string // name filter, empty picks the only one

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Workers and QueueSize size the worker pool. Zero workers selects the
	// pool default; a zero queue rejects everything no worker can take.
	Workers   int
	QueueSize int

	Inputs        map[string]string
	WatchDebounce time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Workers < 0 {
		return nil, errors.New("workers must not be negative")
	}
	if cfg.QueueSize < 0 {
		return nil, errors.New("queue size must not be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	return &cfg, nil
}

// inputs converts the string inputs into session inputs.
func (c *Config) inputs() map[string]any {
	out := make(map[string]any, len(c.Inputs))
	for k, v := range c.Inputs {
		out[k] = v
	}
	return out
}
