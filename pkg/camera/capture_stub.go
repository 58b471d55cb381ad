//go:build nocv

package camera

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrNoOpenCV is returned by Start in builds without OpenCV.
var ErrNoOpenCV = errors.New("camera: built without OpenCV (nocv tag)")

// Capture is the webcam reader. This build has no OpenCV, so Start always
// fails; Frames can still be fed with Put.
type Capture struct {
	Frames

	logger *slog.Logger

	cfgMu sync.RWMutex
	cfg   Config
}

// NewCapture creates a capture for cfg.
func NewCapture(cfg Config, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{cfg: cfg, logger: logger}
}

// Start returns ErrNoOpenCV.
func (c *Capture) Start(context.Context) error {
	return ErrNoOpenCV
}

// Apply records cfg.
func (c *Capture) Apply(cfg Config) error {
	c.cfgMu.Lock()
	c.cfg = cfg
	c.cfgMu.Unlock()
	return nil
}

// Config returns the active settings.
func (c *Capture) Config() Config {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg
}

// Stop does nothing.
func (c *Capture) Stop() {}
