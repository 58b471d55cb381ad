package posture

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/teslashibe/go-posture/pkg/debug"
	"github.com/teslashibe/go-posture/pkg/landmark"
)

// EventLog receives human-readable engine events for a dashboard.
type EventLog interface {
	AddLog(logType, message string)
}

// Options holds the collaborators of an Engine. All fields are optional.
type Options struct {
	Clock    Clock
	Notifier Notifier
	Sounder  Sounder
	Events   EventLog
	Logger   *slog.Logger

	// DetectorReady reports whether the face model is loaded. Nil means always ready.
	DetectorReady func() bool
}

// Status is a snapshot of the engine for display.
type Status struct {
	Phase         Phase              `json:"phase"`
	Calibrated    bool               `json:"calibrated"`
	Monitoring    bool               `json:"monitoring"`
	SessionID     string             `json:"session_id,omitempty"`
	DetectorReady bool               `json:"detector_ready"`
	AlertVisible  bool               `json:"alert_visible"`
	AlertPending  bool               `json:"alert_pending"`
	AlertsFired   int                `json:"alerts_fired"`
	Current       landmark.AnchorSet `json:"current"`
	Baseline      landmark.AnchorSet `json:"baseline"`
	Last          Measurement        `json:"last"`
	Samples       int64              `json:"samples"`
}

// Engine owns the calibration, baseline, monitoring flag and alert state of
// one session. Samples and user actions are applied one at a time.
type Engine struct {
	baseline   *BaselineStore
	calibrator *Calibrator
	evaluator  Evaluator
	alerts     *AlertController

	detectorReady func() bool
	events        EventLog
	logger        *slog.Logger

	mu         sync.Mutex
	current    landmark.AnchorSet
	monitoring bool
	sessionID  string
	last       Measurement
	samples    int64
}

// NewEngine creates an engine in PhaseReady with monitoring off.
func NewEngine(cfg Config, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ready := opts.DetectorReady
	if ready == nil {
		ready = func() bool { return true }
	}

	store := NewBaselineStore()
	e := &Engine{
		baseline:      store,
		calibrator:    NewCalibrator(store),
		evaluator:     NewEvaluator(cfg),
		alerts:        NewAlertController(cfg, opts.Clock, opts.Notifier, opts.Sounder, logger),
		detectorReady: ready,
		events:        opts.Events,
		logger:        logger,
	}
	e.alerts.OnFire = func(ev AlertEvent) {
		e.event("alert", "Posture alert "+ev.ID[:8])
	}
	return e
}

// Ingest evaluates one freshly extracted sample and feeds the alert controller.
func (e *Engine) Ingest(a landmark.AnchorSet) Measurement {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = a
	e.samples++

	m := e.evaluator.Measure(a, e.baseline.Snapshot(), e.monitoring)
	e.last = m
	e.alerts.Handle(m.Decision)

	debug.FrameLog("posture sample",
		"decision", m.Decision,
		"drop", m.Drop,
		"eye_drop", m.EyeDrop,
		"ear_drop", m.EarDrop,
	)
	return m
}

// Current returns the latest sample.
func (e *Engine) Current() landmark.AnchorSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// CalibrationAction handles the calibration button using the latest sample.
func (e *Engine) CalibrationAction() (Transition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.calibrator.Action(e.current, e.detectorReady())
	return t, e.applyLocked(t, err)
}

// Recalibrate discards the baseline and starts a new capture.
func (e *Engine) Recalibrate() (Transition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.calibrator.Recalibrate(e.detectorReady())
	return t, e.applyLocked(t, err)
}

func (e *Engine) applyLocked(t Transition, err error) error {
	if err != nil {
		e.logger.Warn("calibration refused", "phase", t.From, "error", err)
		e.event("error", err.Error())
		return err
	}
	if t.StopMonitoring {
		e.stopMonitoringLocked()
	}
	switch {
	case t.BaselineSaved:
		b := e.baseline.Snapshot()
		e.logger.Info("posture baseline saved", "left_eye", b.LeftEye, "right_eye", b.RightEye)
		e.event("calibration", "Posture baseline captured")
	case t.BaselineCleared:
		e.logger.Info("baseline reset for recalibration")
		e.event("calibration", "Calibration restarted")
	case t.Changed():
		e.event("calibration", fmt.Sprintf("Calibration %s", t.To))
	}
	return nil
}

// StartMonitoring turns evaluation on. It requires a completed calibration.
func (e *Engine) StartMonitoring() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.calibrator.Phase() != PhaseCompleted || !e.baseline.IsSet() {
		return ErrNotCalibrated
	}
	if e.monitoring {
		return nil
	}
	e.monitoring = true
	e.sessionID = uuid.NewString()
	e.logger.Info("posture monitoring started", "session_id", e.sessionID)
	e.event("monitoring", "Monitoring started")
	return nil
}

// StopMonitoring turns evaluation off and cancels any alert. Idempotent.
func (e *Engine) StopMonitoring() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopMonitoringLocked()
}

func (e *Engine) stopMonitoringLocked() {
	e.alerts.Stop()
	if !e.monitoring {
		return
	}
	e.monitoring = false
	e.logger.Info("posture monitoring stopped", "session_id", e.sessionID)
	e.event("monitoring", "Monitoring stopped")
	e.sessionID = ""
}

// Reset stops monitoring and returns calibration to PhaseReady.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopMonitoringLocked()
	e.calibrator.Reset()
}

// Monitoring reports whether monitoring is on.
func (e *Engine) Monitoring() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.monitoring
}

// Phase returns the calibration phase.
func (e *Engine) Phase() Phase {
	return e.calibrator.Phase()
}

// Baseline returns the current baseline.
func (e *Engine) Baseline() landmark.AnchorSet {
	return e.baseline.Snapshot()
}

// Status returns a snapshot of the engine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Status{
		Phase:         e.calibrator.Phase(),
		Calibrated:    e.calibrator.Calibrated(),
		Monitoring:    e.monitoring,
		SessionID:     e.sessionID,
		DetectorReady: e.detectorReady(),
		AlertVisible:  e.alerts.Visible(),
		AlertPending:  e.alerts.Pending(),
		AlertsFired:   e.alerts.Fired(),
		Current:       e.current,
		Baseline:      e.baseline.Snapshot(),
		Last:          e.last,
		Samples:       e.samples,
	}
}

func (e *Engine) event(kind, msg string) {
	if e.events != nil {
		e.events.AddLog(kind, msg)
	}
}
