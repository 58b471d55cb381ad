//go:build !nocv

package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Capture reads a webcam with OpenCV and keeps the latest frame as JPEG.
type Capture struct {
	Frames

	logger *slog.Logger

	// cfgMu guards cfg separately so the read loop never waits on mu.
	cfgMu sync.RWMutex
	cfg   Config

	mu      sync.Mutex
	dev     *gocv.VideoCapture
	started time.Time
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewCapture creates a capture for cfg. The device is opened by Start.
func NewCapture(cfg Config, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{cfg: cfg, logger: logger}
}

// Start opens the device and begins reading frames until ctx is done or
// Stop is called.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev != nil {
		return nil
	}
	return c.openLocked(ctx)
}

func (c *Capture) openLocked(ctx context.Context) error {
	cfg := c.Config()
	dev, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", cfg.Device, err)
	}
	if !dev.IsOpened() {
		_ = dev.Close()
		return fmt.Errorf("open camera %d: device unavailable", cfg.Device)
	}

	c.dev = dev
	c.applyLocked()
	c.started = time.Now()
	c.Reset()

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.readLoop(loopCtx, dev)

	c.logger.Info("camera opened",
		"device", cfg.Device,
		"width", dev.Get(gocv.VideoCaptureFrameWidth),
		"height", dev.Get(gocv.VideoCaptureFrameHeight),
		"fps", dev.Get(gocv.VideoCaptureFPS),
	)
	return nil
}

// applyLocked pushes driver-level settings to the open device.
func (c *Capture) applyLocked() {
	cfg := c.Config()
	c.dev.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	c.dev.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	c.dev.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	if cfg.Brightness != 0 {
		c.dev.Set(gocv.VideoCaptureBrightness, cfg.Brightness)
	}
	if cfg.Exposure > 0 {
		c.dev.Set(gocv.VideoCaptureExposure, cfg.Exposure)
	}
}

// Apply changes settings at runtime. A different device index reopens the
// camera.
func (c *Capture) Apply(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfgMu.Lock()
	reopen := c.dev != nil && cfg.Device != c.cfg.Device
	c.cfg = cfg
	c.cfgMu.Unlock()

	if c.dev == nil {
		return nil
	}
	if reopen {
		c.closeLocked()
		return c.openLocked(context.Background())
	}
	c.applyLocked()
	return nil
}

// Config returns the active settings.
func (c *Capture) Config() Config {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg
}

// Stop closes the device. Safe to call repeatedly.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Capture) closeLocked() {
	if c.dev == nil {
		return
	}
	c.cancel()
	c.wg.Wait()
	_ = c.dev.Close()
	c.dev = nil
	c.logger.Info("camera closed", "device", c.Config().Device)
}

func (c *Capture) readLoop(ctx context.Context, dev *gocv.VideoCapture) {
	defer c.wg.Done()

	img := gocv.NewMat()
	defer img.Close()

	misses := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if ok := dev.Read(&img); !ok || img.Empty() {
			misses++
			if misses == 30 {
				c.logger.Warn("camera returns no frames", "device", c.Config().Device)
			}
			time.Sleep(c.framePeriod())
			continue
		}
		misses = 0

		if err := c.store(img); err != nil {
			c.logger.Debug("frame encode failed", "error", err)
		}
	}
}

func (c *Capture) framePeriod() time.Duration {
	fps := c.Config().Framerate
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}

// store post-processes one frame and publishes it.
func (c *Capture) store(img gocv.Mat) error {
	cfg := c.Config()
	at := time.Since(c.started).Seconds()

	out := img
	if cfg.ZoomLevel > 1 {
		w, h := img.Cols(), img.Rows()
		cw, ch := int(float64(w)/cfg.ZoomLevel), int(float64(h)/cfg.ZoomLevel)
		x, y := (w-cw)/2, (h-ch)/2
		region := img.Region(image.Rect(x, y, x+cw, y+ch))
		defer region.Close()

		zoomed := gocv.NewMat()
		defer zoomed.Close()
		gocv.Resize(region, &zoomed, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
		out = zoomed
	}
	if cfg.Mirror {
		flipped := gocv.NewMat()
		defer flipped.Close()
		gocv.Flip(out, &flipped, 1)
		out = flipped
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, out, []int{int(gocv.IMWriteJpegQuality), cfg.Quality})
	if err != nil {
		return err
	}
	defer buf.Close()

	jpeg := append([]byte(nil), buf.GetBytes()...)
	c.Put(jpeg, out.Cols(), out.Rows(), at)
	return nil
}
