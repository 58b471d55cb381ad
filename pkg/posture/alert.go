package posture

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier surfaces the visible alert. Implementations must not call back
// into the AlertController.
type Notifier interface {
	SetAlertVisible(visible bool)
}

// Sounder plays the alert tone. Errors mean no audio is available.
type Sounder interface {
	PlayAlert() error
}

// AlertEvent describes one fired alert.
type AlertEvent struct {
	ID      string    `json:"id"`
	FiredAt time.Time `json:"fired_at"`
}

// AlertController debounces BelowThreshold decisions into alerts.
//
// At most one debounce timer and one auto-dismiss timer exist at a time.
// Timer callbacks carry a generation number so a callback that raced with a
// cancellation is ignored.
type AlertController struct {
	clock    Clock
	delay    time.Duration
	duration time.Duration
	notifier Notifier
	sounder  Sounder
	logger   *slog.Logger

	// OnFire is called (under the controller lock) for each fired alert.
	OnFire func(AlertEvent)

	mu         sync.Mutex
	pending    Timer
	pendingGen uint64
	dismiss    Timer
	dismissGen uint64
	visible    bool
	fired      int
	last       AlertEvent
}

// NewAlertController creates a controller. Nil notifier or sounder disable
// that side effect; a nil clock means the system clock.
func NewAlertController(cfg Config, clock Clock, notifier Notifier, sounder Sounder, logger *slog.Logger) *AlertController {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertController{
		clock:    clock,
		delay:    cfg.AlertDelay,
		duration: cfg.AlertDuration,
		notifier: notifier,
		sounder:  sounder,
		logger:   logger,
	}
}

// Handle consumes one decision. It never blocks on timers or audio.
func (a *AlertController) Handle(d Decision) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch d {
	case BelowThreshold:
		if a.pending != nil {
			return
		}
		a.pendingGen++
		gen := a.pendingGen
		a.pending = a.clock.AfterFunc(a.delay, func() { a.fire(gen) })
	default:
		a.clearLocked()
	}
}

// Stop cancels any pending alert and hides a visible one. Safe to call repeatedly.
func (a *AlertController) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearLocked()
}

// Visible reports whether an alert is showing.
func (a *AlertController) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visible
}

// Pending reports whether a debounce timer is running.
func (a *AlertController) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Fired returns how many alerts have fired.
func (a *AlertController) Fired() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fired
}

// Last returns the most recent alert, if any fired.
func (a *AlertController) Last() (AlertEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.fired > 0
}

func (a *AlertController) fire(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == nil || gen != a.pendingGen {
		return
	}
	a.pending = nil

	a.fired++
	a.last = AlertEvent{ID: uuid.NewString(), FiredAt: a.clock.Now()}
	a.logger.Info("posture alert fired", "alert_id", a.last.ID, "count", a.fired)

	a.setVisibleLocked(true)
	a.playTone()

	if a.dismiss != nil {
		a.dismiss.Stop()
	}
	a.dismissGen++
	dgen := a.dismissGen
	a.dismiss = a.clock.AfterFunc(a.duration, func() { a.autoDismiss(dgen) })

	if a.OnFire != nil {
		a.OnFire(a.last)
	}
}

func (a *AlertController) autoDismiss(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dismiss == nil || gen != a.dismissGen {
		return
	}
	a.dismiss = nil
	a.setVisibleLocked(false)
}

func (a *AlertController) clearLocked() {
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
		a.pendingGen++
	}
	if a.dismiss != nil {
		a.dismiss.Stop()
		a.dismiss = nil
		a.dismissGen++
	}
	a.setVisibleLocked(false)
}

func (a *AlertController) setVisibleLocked(v bool) {
	if a.visible == v {
		return
	}
	a.visible = v
	if a.notifier != nil {
		a.notifier.SetAlertVisible(v)
	}
}

// playTone runs the sounder on its own goroutine; audio is best effort.
func (a *AlertController) playTone() {
	if a.sounder == nil {
		return
	}
	s, logger := a.sounder, a.logger
	go func() {
		if err := s.PlayAlert(); err != nil {
			logger.Debug("alert tone unavailable", "error", err)
		}
	}()
}
