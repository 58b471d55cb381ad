package posture

import (
	"fmt"
	"time"
)

// Design constants of the alert cycle.
const (
	DefaultAlertDelay        = 1000 * time.Millisecond
	DefaultAlertDuration     = 2000 * time.Millisecond
	DefaultVerticalThreshold = 0.0
)

// Config holds the tunables of the posture engine.
type Config struct {
	// AlertDelay is how long a drop must persist before the alert fires.
	AlertDelay time.Duration `env:"ALERT_DELAY" envDefault:"1s"`

	// AlertDuration is how long a fired alert stays visible.
	AlertDuration time.Duration `env:"ALERT_DURATION" envDefault:"2s"`

	// VerticalThreshold is the drop in display pixels that counts as
	// slouching. Any drop strictly greater than it is below threshold.
	VerticalThreshold float64 `env:"VERTICAL_THRESHOLD" envDefault:"0"`
}

// DefaultConfig returns the design constants.
func DefaultConfig() Config {
	return Config{
		AlertDelay:        DefaultAlertDelay,
		AlertDuration:     DefaultAlertDuration,
		VerticalThreshold: DefaultVerticalThreshold,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.AlertDelay <= 0 {
		return fmt.Errorf("alert_delay must be positive, got %v", c.AlertDelay)
	}
	if c.AlertDuration <= 0 {
		return fmt.Errorf("alert_duration must be positive, got %v", c.AlertDuration)
	}
	if c.VerticalThreshold < 0 {
		return fmt.Errorf("vertical_threshold must not be negative, got %v", c.VerticalThreshold)
	}
	return nil
}
