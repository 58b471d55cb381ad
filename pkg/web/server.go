// Package web provides the posture dashboard: a JSON API for user actions and
// websocket feeds for status, alerts, logs and the camera preview.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-posture/pkg/audioio"
	"github.com/teslashibe/go-posture/pkg/camera"
	"github.com/teslashibe/go-posture/pkg/hub"
	"github.com/teslashibe/go-posture/pkg/posture"
	"github.com/teslashibe/go-posture/pkg/tracking"
)

// Config configures the dashboard server.
type Config struct {
	// Port is the HTTP listen port.
	Port string `env:"PORT" envDefault:"8181"`

	// StaticDir, when set, is served at "/".
	StaticDir string `env:"WEB_DIR"`

	// MaxLogs caps the in-memory event log.
	MaxLogs int `env:"WEB_MAX_LOGS" envDefault:"500"`
}

// DefaultConfig returns the default dashboard configuration.
func DefaultConfig() Config {
	return Config{Port: "8181", MaxLogs: 500}
}

// State is what the dashboard shows: the engine snapshot plus scheduler
// statistics.
type State struct {
	posture.Status
	Tracking       tracking.Stats     `json:"tracking"`
	AudioAvailable bool               `json:"audio_available"`
	Audio          *audioio.SinkStats `json:"audio,omitempty"`
}

// Controller performs the user actions behind the API.
type Controller interface {
	State() State
	CalibrationAction() (posture.Transition, error)
	Recalibrate() (posture.Transition, error)
	StartMonitoring() error
	StopMonitoring()
	SetVisible(visible bool)
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, calibration, monitoring, alert, error
	Message string `json:"message"`
}

// AlertMessage is pushed on /ws/alerts whenever the alert shows or hides.
type AlertMessage struct {
	Visible bool      `json:"visible"`
	At      time.Time `json:"at"`
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	cfg    Config
	ctrl   Controller
	camera *camera.Manager
	logger *slog.Logger

	// Log buffer (last MaxLogs entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Display surface reported by the page
	surfaceMu sync.RWMutex
	width     int
	height    int

	alertVisible atomic.Bool

	statusHub *hub.Hub
	alertHub  *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub
}

// NewServer creates a dashboard server. cam may be nil when the camera
// cannot be configured at runtime.
func NewServer(cfg Config, ctrl Controller, cam *camera.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxLogs <= 0 {
		cfg.MaxLogs = DefaultConfig().MaxLogs
	}
	logger = logger.With("component", "web")

	s := &Server{
		cfg:       cfg,
		ctrl:      ctrl,
		camera:    cam,
		logger:    logger,
		logs:      make([]LogEntry, 0, cfg.MaxLogs),
		statusHub: hub.New("status", hub.WithReplay(), hub.WithLogger(logger)),
		alertHub:  hub.New("alerts", hub.WithReplay(), hub.WithLogger(logger)),
		logHub:    hub.New("logs", hub.WithHistory(cfg.MaxLogs), hub.WithLogger(logger)),
		cameraHub: hub.New("camera", hub.WithReplay(), hub.WithLogger(logger)),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Posture Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/calibration", s.handleCalibration)
	api.Post("/calibration/recalibrate", s.handleRecalibrate)
	api.Post("/monitoring/start", s.handleMonitoringStart)
	api.Post("/monitoring/stop", s.handleMonitoringStop)
	api.Post("/visibility", s.handleVisibility)
	api.Post("/surface", s.handleSurface)
	api.Get("/camera", s.handleGetCamera)
	api.Post("/camera", s.handleSetCamera)
	api.Get("/camera/capabilities", s.handleCameraCapabilities)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.serveHub(s.statusHub)))
	app.Get("/ws/alerts", websocket.New(s.serveHub(s.alertHub)))
	app.Get("/ws/logs", websocket.New(s.serveHub(s.logHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	s.app = app
	return s
}

// Run starts the hubs and serves HTTP until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	hubs := []*hub.Hub{s.statusHub, s.alertHub, s.logHub, s.cameraHub}
	for _, h := range hubs {
		go h.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "url", "http://localhost:"+s.cfg.Port)
		errCh <- s.app.Listen(":" + s.cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web: listen on %s: %w", s.cfg.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	err := s.app.ShutdownWithTimeout(5 * time.Second)
	for _, h := range hubs {
		<-h.Done()
	}
	return err
}

// Handler exposes the fiber app, mainly for tests.
func (s *Server) Handler() *fiber.App {
	return s.app
}

// PublishState pushes a status snapshot to /ws/status clients.
func (s *Server) PublishState(st State) {
	if err := s.statusHub.BroadcastJSON(st); err != nil {
		s.logger.Warn("encode status", "error", err)
	}
}

// SetAlertVisible shows or hides the posture alert on every dashboard.
func (s *Server) SetAlertVisible(visible bool) {
	s.alertVisible.Store(visible)
	_ = s.alertHub.BroadcastJSON(AlertMessage{Visible: visible, At: time.Now()})
}

// AlertVisible reports the last alert state pushed to the dashboards.
func (s *Server) AlertVisible() bool {
	return s.alertVisible.Load()
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > s.cfg.MaxLogs {
		s.logs = s.logs[len(s.logs)-s.cfg.MaxLogs:]
	}
	s.logsMu.Unlock()

	_ = s.logHub.BroadcastJSON(entry)
}

// Logs returns a copy of the buffered log entries, oldest first.
func (s *Server) Logs() []LogEntry {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return append([]LogEntry(nil), s.logs...)
}

// SendCameraFrame sends a camera frame to all connected clients
func (s *Server) SendCameraFrame(jpegData []byte) {
	s.cameraHub.BroadcastBinary(jpegData)
}

// CameraViewers is the number of connected preview clients.
func (s *Server) CameraViewers() int {
	return s.cameraHub.ClientCount()
}

// Size returns the display surface size last reported by the page, or zeros.
func (s *Server) Size() (int, int) {
	s.surfaceMu.RLock()
	defer s.surfaceMu.RUnlock()
	return s.width, s.height
}

func (s *Server) setSize(width, height int) {
	s.surfaceMu.Lock()
	s.width, s.height = width, height
	s.surfaceMu.Unlock()
}
