// Package audioio plays PCM audio on the local machine.
//
// Backends:
//   - ALSA (Linux) - pipes raw PCM to aplay
//   - CoreAudio (macOS) - pipes raw PCM to sox's play
//   - Mock - CI/Testing without hardware
//
// The backend is selected from the platform, or can be set explicitly.
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto selects the best available backend for the platform.
	BackendAuto Backend = "auto"
	// BackendALSA plays through ALSA's aplay.
	BackendALSA Backend = "alsa"
	// BackendCoreAudio plays through sox on macOS.
	BackendCoreAudio Backend = "coreaudio"
	// BackendMock records audio in memory.
	BackendMock Backend = "mock"
	// BackendNone disables audio output.
	BackendNone Backend = "none"
)

// Config holds audio output configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto"
	Backend Backend `env:"AUDIO_BACKEND" envDefault:"auto" json:"backend"`

	// SampleRate is the output sample rate in Hz.
	// Default: 44100
	SampleRate int `env:"AUDIO_SAMPLE_RATE" envDefault:"44100" json:"sample_rate"`

	// Channels is the number of output channels.
	// Default: 1 (mono)
	Channels int `env:"AUDIO_CHANNELS" envDefault:"1" json:"channels"`

	// BufferDuration is the size of chunks written to the device.
	// Default: 20ms
	BufferDuration time.Duration `env:"AUDIO_BUFFER" envDefault:"20ms" json:"buffer_duration"`

	// Device is the platform-specific device identifier.
	// Examples:
	//   - ALSA: "hw:0,0", "default", "plughw:1,0"
	//   - CoreAudio: ignored, sox uses the default output
	//   - Mock: ignored
	Device string `env:"AUDIO_DEVICE" json:"device"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     44100,
		Channels:       1,
		BufferDuration: 20 * time.Millisecond,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	return nil
}

// BufferSize returns the number of frames per buffer.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}
