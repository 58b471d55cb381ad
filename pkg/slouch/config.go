// Package slouch wires the posture engine, detection scheduler, camera, alert
// tone and dashboard into one application.
package slouch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teslashibe/go-posture/internal/config"
	"github.com/teslashibe/go-posture/pkg/audioio"
	"github.com/teslashibe/go-posture/pkg/camera"
	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/posture"
	"github.com/teslashibe/go-posture/pkg/tracking"
	"github.com/teslashibe/go-posture/pkg/web"
)

// Config holds all configuration for the application.
// Flag overrides are applied in cmd/posture; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool `env:"DEBUG"`

	// DebugFrames traces every processed frame.
	DebugFrames bool `env:"DEBUG_FRAMES"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// StatusInterval limits how often per-frame status is pushed to dashboards.
	StatusInterval time.Duration `env:"STATUS_INTERVAL" envDefault:"200ms"`

	// PreviewInterval is the camera preview period. 0 disables the preview.
	PreviewInterval time.Duration `env:"PREVIEW_INTERVAL" envDefault:"100ms"`

	Web       web.Config
	Posture   posture.Config
	Tracking  tracking.Config
	Camera    camera.Config
	Audio     audioio.Config
	Detection detection.Config
}

// DefaultConfig returns sensible defaults for every component.
func DefaultConfig() Config {
	return Config{
		LogLevel:        "info",
		StatusInterval:  200 * time.Millisecond,
		PreviewInterval: 100 * time.Millisecond,
		Web:             web.DefaultConfig(),
		Posture:         posture.DefaultConfig(),
		Tracking:        tracking.DefaultConfig(),
		Camera:          camera.DefaultConfig(),
		Audio:           audioio.DefaultConfig(),
		Detection:       detection.DefaultConfig(),
	}
}

// LoadConfig reads the configuration from the environment and the optional
// dotenv files (".env" when none are given).
func LoadConfig(files ...string) (Config, error) {
	var cfg Config
	if err := config.Load(&cfg, files...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Web.Port)
	if err != nil || port <= 0 || port > 65535 {
		return &ConfigError{Field: "Web.Port", Message: fmt.Sprintf("invalid port %q", c.Web.Port)}
	}
	if c.StatusInterval <= 0 {
		return &ConfigError{Field: "StatusInterval", Message: "STATUS_INTERVAL must be positive"}
	}
	if c.PreviewInterval < 0 {
		return &ConfigError{Field: "PreviewInterval", Message: "PREVIEW_INTERVAL must not be negative"}
	}
	if err := c.Posture.Validate(); err != nil {
		return &ConfigError{Field: "Posture", Message: err.Error()}
	}
	if err := c.Tracking.Validate(); err != nil {
		return &ConfigError{Field: "Tracking", Message: err.Error()}
	}
	if errs := c.Camera.Validate(); len(errs) > 0 {
		return &ConfigError{Field: "Camera", Message: strings.Join(errs, "; ")}
	}
	if err := c.Audio.Validate(); err != nil {
		return &ConfigError{Field: "Audio", Message: err.Error()}
	}
	if c.Detection.ModelPath == "" {
		return &ConfigError{Field: "Detection.ModelPath", Message: "MODEL_PATH is required"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
