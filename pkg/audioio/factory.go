package audioio

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// NewSink creates an audio sink with the given configuration.
// If cfg.Backend is BackendAuto, the best available backend is selected.
// BackendNone and missing player binaries yield ErrUnavailable.
func NewSink(cfg Config, logger *slog.Logger) (Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = detectBestBackend()
	}

	logger.Info("creating audio sink",
		"backend", backend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"buffer_ms", cfg.BufferDuration.Milliseconds(),
	)

	switch backend {
	case BackendMock:
		return NewMockSink(cfg, logger), nil
	case BackendALSA:
		return newALSASink(cfg, logger)
	case BackendCoreAudio:
		return newCoreAudioSink(cfg, logger)
	case BackendNone:
		return nil, ErrUnavailable
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// detectBestBackend returns the best available backend for the current platform.
func detectBestBackend() Backend {
	switch runtime.GOOS {
	case "linux":
		return BackendALSA
	case "darwin":
		return BackendCoreAudio
	default:
		return BackendNone
	}
}

// AvailableBackends returns the backends whose player is installed.
func AvailableBackends() []Backend {
	backends := []Backend{BackendMock}

	if _, err := exec.LookPath("aplay"); err == nil {
		backends = append(backends, BackendALSA)
	}
	if _, err := exec.LookPath("play"); err == nil {
		backends = append(backends, BackendCoreAudio)
	}
	return backends
}
