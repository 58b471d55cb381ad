package tracking

import (
	"fmt"
	"time"
)

// Config holds the sampling cadence of the detection scheduler.
type Config struct {
	// RefreshInterval is the render-synchronized period used while the
	// dashboard is visible (one display refresh).
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"16ms"`

	// HiddenInterval is the fixed period used while the dashboard is hidden.
	HiddenInterval time.Duration `env:"HIDDEN_INTERVAL" envDefault:"33ms"`

	// ErrorLogInterval limits how often per-frame failures are logged.
	ErrorLogInterval time.Duration `env:"ERROR_LOG_INTERVAL" envDefault:"5s"`

	// StartVisible selects the loop used when the scheduler starts.
	StartVisible bool `env:"START_VISIBLE" envDefault:"true"`
}

// DefaultConfig returns the recommended cadence: one step per 60 Hz refresh
// while visible and ~30 Hz while hidden.
func DefaultConfig() Config {
	return Config{
		RefreshInterval:  time.Second / 60,
		HiddenInterval:   33 * time.Millisecond,
		ErrorLogInterval: 5 * time.Second,
		StartVisible:     true,
	}
}

// LowPowerConfig halves both sampling rates.
func LowPowerConfig() Config {
	cfg := DefaultConfig()
	cfg.RefreshInterval = time.Second / 30
	cfg.HiddenInterval = 66 * time.Millisecond
	return cfg
}

// Validate checks that all intervals are positive.
func (c Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %v", c.RefreshInterval)
	}
	if c.HiddenInterval <= 0 {
		return fmt.Errorf("hidden_interval must be positive, got %v", c.HiddenInterval)
	}
	if c.ErrorLogInterval < 0 {
		return fmt.Errorf("error_log_interval must not be negative, got %v", c.ErrorLogInterval)
	}
	return nil
}
