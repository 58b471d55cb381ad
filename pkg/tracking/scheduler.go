// Package tracking drives face-landmark detection at the cadence the
// dashboard can sustain and hands each new anchor sample to a consumer.
package tracking

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/teslashibe/go-posture/pkg/debug"
	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/landmark"
)

var (
	// ErrModelNotReady is returned by Start before the landmarker is loaded.
	ErrModelNotReady = errors.New("tracking: landmark model not ready")

	// ErrNoVideo is returned by Start without a video source.
	ErrNoVideo = errors.New("tracking: no video source")
)

// Frame is one encoded video frame with its playback position in seconds.
// A zero Width or Height means the video has no picture yet.
type Frame struct {
	JPEG   []byte
	Time   float64
	Width  int
	Height int
}

// VideoSource provides the latest frame. The image, its time and its size
// are read together so a step never pairs one frame's pixels with
// another's timestamp.
type VideoSource interface {
	Latest() (Frame, error)
}

// Surface reports the pixel size of the display the anchors are drawn on.
type Surface interface {
	Size() (width, height int)
}

// Stats counts what the scheduler did with its ticks.
type Stats struct {
	Mode       Mode    `json:"mode"`
	Visible    bool    `json:"visible"`
	Running    bool    `json:"running"`
	Ticks      int64   `json:"ticks"`
	Processed  int64   `json:"processed"`
	Duplicates int64   `json:"duplicates"`
	Skipped    int64   `json:"skipped"`
	Errors     int64   `json:"errors"`
	VideoTime  float64 `json:"video_time"`
}

// Scheduler runs exactly one sampling loop at a time: a render loop while the
// dashboard is visible and a fixed-interval loop while it is hidden.
type Scheduler struct {
	cfg      Config
	video    VideoSource
	model    detection.Landmarker
	surface  Surface
	onSample func(landmark.AnchorSet)
	logger   *slog.Logger

	// newLoop builds the strategy for a visibility state.
	newLoop func(visible bool) Strategy

	// ctlMu serializes Start, Stop and SetVisible, and is held while an old
	// loop drains. The step path never takes it.
	ctlMu sync.Mutex

	mu      sync.Mutex
	visible bool
	running bool
	loop    Strategy

	stepMu        sync.Mutex
	lastVideoTime float64
	lastStamp     time.Duration
	started       time.Time
	errLog        rate.Sometimes

	// statsMu is only held to update or copy counters.
	statsMu sync.Mutex
	stats   Stats
}

// New creates a stopped scheduler. surface may be nil, in which case anchors
// are scaled to the video dimensions.
func New(cfg Config, video VideoSource, model detection.Landmarker, surface Surface, onSample func(landmark.AnchorSet), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cfg:           cfg,
		video:         video,
		model:         model,
		surface:       surface,
		onSample:      onSample,
		logger:        logger,
		visible:       cfg.StartVisible,
		lastVideoTime: -1,
		stats:         Stats{VideoTime: -1},
		errLog:        rate.Sometimes{First: 3, Interval: cfg.ErrorLogInterval},
	}
	s.newLoop = func(visible bool) Strategy {
		if visible {
			return NewRenderLoop(s.cfg.RefreshInterval)
		}
		return NewIntervalLoop(s.cfg.HiddenInterval)
	}
	return s
}

// Start begins sampling with the loop matching the current visibility.
// Starting a running scheduler does nothing.
func (s *Scheduler) Start() error {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	if s.Running() {
		return nil
	}
	if s.video == nil {
		return ErrNoVideo
	}
	if s.model == nil || !s.model.Ready() {
		return ErrModelNotReady
	}

	// No loop is running here, so this never waits on a step.
	s.stepMu.Lock()
	s.lastVideoTime = -1
	s.lastStamp = 0
	s.started = time.Now()
	s.stepMu.Unlock()
	s.count(func(st *Stats) { st.VideoTime = -1 })

	s.mu.Lock()
	s.running = true
	loop := s.newLoop(s.visible)
	s.loop = loop
	s.mu.Unlock()

	loop.Start(s.step)
	s.logger.Info("detection started", "mode", loop.Mode())
	return nil
}

// Stop cancels the active loop and waits for it to exit. Safe to call when
// already stopped. It must not be called from the sample callback.
func (s *Scheduler) Stop() {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	loop := s.loop
	s.running = false
	s.loop = nil
	s.mu.Unlock()

	loop.Stop()
	s.logger.Info("detection stopped")
}

// SetVisible switches loops on a visibility change. The old loop has fully
// exited before the new one starts. It must not be called from the sample
// callback.
func (s *Scheduler) SetVisible(visible bool) {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	s.mu.Lock()
	if s.visible == visible {
		s.mu.Unlock()
		return
	}
	s.visible = visible
	old := s.loop
	s.mu.Unlock()

	if old == nil {
		return
	}

	// Drain without holding mu: the draining step may be reading state.
	old.Stop()

	loop := s.newLoop(visible)
	s.mu.Lock()
	s.loop = loop
	s.mu.Unlock()
	loop.Start(s.step)

	s.logger.Debug("detection loop switched", "visible", visible, "mode", loop.Mode())
}

// Running reports whether a loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Visible reports the last visibility the scheduler was told about.
func (s *Scheduler) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Mode returns the active loop type.
func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loop == nil {
		return ModeStopped
	}
	return s.loop.Mode()
}

// Stats returns a copy of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	mode, visible, running := ModeStopped, s.visible, s.running
	if s.loop != nil {
		mode = s.loop.Mode()
	}
	s.mu.Unlock()

	s.statsMu.Lock()
	st := s.stats
	s.statsMu.Unlock()

	st.Mode, st.Visible, st.Running = mode, visible, running
	return st
}

func (s *Scheduler) count(f func(*Stats)) {
	s.statsMu.Lock()
	f(&s.stats)
	s.statsMu.Unlock()
}

// step processes at most one new video frame. onSample runs under stepMu,
// so samples reach the consumer one at a time and in frame order.
func (s *Scheduler) step() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	s.count(func(st *Stats) { st.Ticks++ })

	frame, err := s.video.Latest()
	if err != nil {
		s.frameError("capture", err)
		return
	}

	w, h := frame.Width, frame.Height
	if w == 0 || h == 0 {
		s.count(func(st *Stats) { st.Skipped++ })
		return
	}

	t := frame.Time
	if t == s.lastVideoTime {
		s.count(func(st *Stats) { st.Duplicates++ })
		return
	}
	// Recorded before detection so a failing frame is not retried.
	s.lastVideoTime = t
	s.count(func(st *Stats) { st.VideoTime = t })

	result, err := s.model.DetectForVideo(frame.JPEG, s.nextStamp())
	if err != nil {
		s.frameError("detect", err)
		return
	}

	if s.surface != nil {
		if sw, sh := s.surface.Size(); sw > 0 && sh > 0 {
			w, h = sw, sh
		}
	}
	anchors := landmark.Extract(result, w, h)
	s.count(func(st *Stats) { st.Processed++ })

	debug.FrameLog("frame processed",
		"video_time", t,
		"faces", len(result.Faces),
		"left_eye", anchors.LeftEye,
		"right_eye", anchors.RightEye,
	)

	if s.onSample != nil {
		s.onSample(anchors)
	}
}

// nextStamp returns a strictly increasing timestamp relative to Start.
func (s *Scheduler) nextStamp() time.Duration {
	ts := time.Since(s.started)
	if ts <= s.lastStamp {
		ts = s.lastStamp + time.Microsecond
	}
	s.lastStamp = ts
	return ts
}

func (s *Scheduler) frameError(stage string, err error) {
	var n int64
	s.count(func(st *Stats) {
		st.Errors++
		n = st.Errors
	})
	s.errLog.Do(func() {
		s.logger.Warn("frame skipped", "stage", stage, "error", err, "errors", n)
	})
}
