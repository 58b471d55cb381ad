// Package camera captures webcam frames and exposes them as the video source
// of the detection loop. Settings can be changed at runtime.
package camera

// Config holds all camera configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	// Device is the capture device index (0 is the default webcam).
	Device int `env:"CAMERA_DEVICE" envDefault:"0" json:"device"`

	// === Resolution ===
	// Requested frame size and rate; the driver may pick the nearest mode.
	Width     int `env:"CAMERA_WIDTH" envDefault:"1920" json:"width"`
	Height    int `env:"CAMERA_HEIGHT" envDefault:"1080" json:"height"`
	Framerate int `env:"CAMERA_FPS" envDefault:"30" json:"framerate"`

	// Quality is the JPEG quality (1-100) of captured frames.
	Quality int `env:"CAMERA_QUALITY" envDefault:"85" json:"quality"`

	// === Exposure ===
	// Brightness adjustment (-1.0 to +1.0). 0 leaves the driver default.
	Brightness float64 `env:"CAMERA_BRIGHTNESS" envDefault:"0" json:"brightness"`

	// Exposure is a driver-specific manual exposure value. 0 means auto.
	Exposure float64 `env:"CAMERA_EXPOSURE" envDefault:"0" json:"exposure"`

	// === Digital Zoom ===
	// ZoomLevel crops the frame centre (1.0 to 4.0).
	ZoomLevel float64 `env:"CAMERA_ZOOM" envDefault:"1" json:"zoom_level"`

	// Mirror flips frames horizontally, like a selfie preview.
	Mirror bool `env:"CAMERA_MIRROR" envDefault:"false" json:"mirror"`
}

// Limits of the settings.
const (
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 120
	MaxZoom      = 4.0
)

// DefaultConfig returns the recommended configuration: 1080p at 30 FPS.
func DefaultConfig() Config {
	return Config{
		Width:     1920,
		Height:    1080,
		Framerate: 30,
		Quality:   85,
		ZoomLevel: 1.0,
	}
}

// LegacyConfig returns a 640x480 configuration for older webcams.
func LegacyConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, "device must not be negative")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 3840")
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.Brightness < -1.0 || c.Brightness > 1.0 {
		errors = append(errors, "brightness must be between -1.0 and 1.0")
	}
	if c.Exposure < 0 {
		errors = append(errors, "exposure must be 0 (auto) or positive")
	}
	if c.ZoomLevel < 1.0 || c.ZoomLevel > MaxZoom {
		errors = append(errors, "zoom_level must be between 1.0 and 4.0")
	}

	return errors
}

// Capabilities describes the tunable ranges for the dashboard.
func Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"max_width":     MaxWidth,
		"max_height":    MaxHeight,
		"max_framerate": MaxFramerate,
		"max_zoom":      MaxZoom,
		"presets":       PresetNames(),
	}
}
