package slouch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-posture/internal/log"
	"github.com/teslashibe/go-posture/pkg/audio"
	"github.com/teslashibe/go-posture/pkg/audioio"
	"github.com/teslashibe/go-posture/pkg/camera"
	"github.com/teslashibe/go-posture/pkg/debug"
	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/landmark"
	"github.com/teslashibe/go-posture/pkg/posture"
	"github.com/teslashibe/go-posture/pkg/tracking"
	"github.com/teslashibe/go-posture/pkg/web"
)

// App is the posture monitor.
type App struct {
	config Config
	logger *slog.Logger
	clock  posture.Clock

	// Detection
	landmarker    detection.Landmarker
	video         tracking.VideoSource
	capture       *camera.Capture
	cameraManager *camera.Manager
	scheduler     *tracking.Scheduler

	// Alerts
	sink   audioio.Sink
	player *audio.Player
	engine *posture.Engine

	// Web dashboard
	webServer *web.Server

	statusLimiter *rate.Limiter
}

// Option overrides a component of the App, mainly for tests.
type Option func(*App)

// WithLandmarker uses l instead of loading the YuNet model.
func WithLandmarker(l detection.Landmarker) Option {
	return func(a *App) { a.landmarker = l }
}

// WithVideo uses v instead of opening the webcam.
func WithVideo(v tracking.VideoSource) Option {
	return func(a *App) { a.video = v }
}

// WithClock sets the clock of the alert timers.
func WithClock(c posture.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// New creates a new application with the given configuration.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Frames = cfg.DebugFrames

	app := &App{config: cfg}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil {
		app.logger = log.L()
	}
	return app, nil
}

// Init initializes all components.
// Call this after New() and before Run().
func (a *App) Init() error {
	if err := a.initDetection(); err != nil {
		return fmt.Errorf("detection init: %w", err)
	}
	a.initCamera()
	if err := a.initAudio(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}

	a.webServer = web.NewServer(a.config.Web, a, a.cameraManager, a.logger)

	a.engine = posture.NewEngine(a.config.Posture, posture.Options{
		Clock:         a.clock,
		Notifier:      a.webServer,
		Sounder:       a.player,
		Events:        a.webServer,
		Logger:        a.logger,
		DetectorReady: a.landmarker.Ready,
	})

	a.scheduler = tracking.New(a.config.Tracking, a.video, a.landmarker, a.webServer, a.onSample, a.logger)
	a.statusLimiter = rate.NewLimiter(rate.Every(a.config.StatusInterval), 1)

	a.logger.Info("posture monitor initialized",
		"model_ready", a.landmarker.Ready(),
		"audio", a.player.Available(),
		"alert_delay", a.config.Posture.AlertDelay,
		"threshold", a.config.Posture.VerticalThreshold,
	)
	return nil
}

func (a *App) initDetection() error {
	if a.landmarker != nil {
		return nil
	}
	l, err := detection.NewYuNetLandmarker(a.config.Detection)
	if err != nil {
		return err
	}
	a.landmarker = l
	return nil
}

// initCamera opens nothing yet; the device is opened by Run.
func (a *App) initCamera() {
	a.cameraManager = camera.NewManager(a.config.Camera)
	if a.video != nil {
		return
	}
	a.capture = camera.NewCapture(a.config.Camera, a.logger)
	a.video = a.capture
	a.cameraManager.OnConfigChange = a.capture.Apply
}

func (a *App) initAudio() error {
	sink, err := audioio.NewSink(a.config.Audio, a.logger)
	switch {
	case errors.Is(err, audioio.ErrUnavailable):
		a.logger.Warn("no audio output, alerts will be visual only")
	case err != nil:
		return err
	default:
		a.sink = sink
	}
	a.player = audio.NewPlayer(a.sink, a.logger)
	return nil
}

// Run starts the camera, the detection loop and the dashboard.
// Blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a.capture != nil {
		if err := a.capture.Start(ctx); err != nil {
			return fmt.Errorf("camera: %w", err)
		}
	}
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	a.webServer.AddLog("info", "Posture monitor started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.webServer.Run(ctx)
	})
	g.Go(func() error {
		a.streamCameraToWeb(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.scheduler.Stop()
		return nil
	})
	return g.Wait()
}

// Shutdown releases every component. Safe to call after Run returns.
func (a *App) Shutdown() {
	a.logger.Info("shutting down")

	if a.engine != nil {
		a.engine.StopMonitoring()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.capture != nil {
		a.capture.Stop()
	}
	if a.player != nil {
		if err := a.player.Close(); err != nil {
			a.logger.Warn("close audio", "error", err)
		}
	}
	if a.landmarker != nil {
		if err := a.landmarker.Close(); err != nil {
			a.logger.Warn("close model", "error", err)
		}
	}
}

// onSample receives every new anchor set from the scheduler.
func (a *App) onSample(anchors landmark.AnchorSet) {
	a.engine.Ingest(anchors)
	if a.statusLimiter.Allow() {
		a.publishState()
	}
}

func (a *App) publishState() {
	a.webServer.PublishState(a.State())
}

// State implements web.Controller.
func (a *App) State() web.State {
	st := web.State{
		Status:         a.engine.Status(),
		Tracking:       a.scheduler.Stats(),
		AudioAvailable: a.player.Available(),
	}
	if s, ok := a.sink.(audioio.SinkWithStats); ok {
		stats := s.Stats()
		st.Audio = &stats
	}
	return st
}

// CalibrationAction implements web.Controller.
func (a *App) CalibrationAction() (posture.Transition, error) {
	t, err := a.engine.CalibrationAction()
	a.publishState()
	return t, err
}

// Recalibrate implements web.Controller.
func (a *App) Recalibrate() (posture.Transition, error) {
	t, err := a.engine.Recalibrate()
	a.publishState()
	return t, err
}

// StartMonitoring implements web.Controller.
func (a *App) StartMonitoring() error {
	err := a.engine.StartMonitoring()
	a.publishState()
	return err
}

// StopMonitoring implements web.Controller.
func (a *App) StopMonitoring() {
	a.engine.StopMonitoring()
	a.publishState()
}

// SetVisible implements web.Controller.
func (a *App) SetVisible(visible bool) {
	a.scheduler.SetVisible(visible)
	debug.Log("dashboard visibility", "visible", visible, "mode", a.scheduler.Mode())
	a.publishState()
}
