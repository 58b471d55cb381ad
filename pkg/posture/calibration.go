package posture

import (
	"fmt"
	"sync"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

// Phase is the calibration state.
type Phase int

const (
	// PhaseReady waits for the user to start a capture.
	PhaseReady Phase = iota
	// PhaseCapturing waits for the user to save the current posture.
	PhaseCapturing
	// PhaseCompleted holds a saved baseline.
	PhaseCompleted
)

var phaseNames = [...]string{"ready", "capturing", "completed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown calibration phase %q", b)
}

// Transition describes what a calibration event did.
type Transition struct {
	From Phase
	To   Phase

	// BaselineSaved is set when the current anchors became the baseline.
	BaselineSaved bool

	// BaselineCleared is set when a recalibration dropped the baseline.
	BaselineCleared bool

	// StopMonitoring asks the caller to turn monitoring off.
	StopMonitoring bool
}

// Changed reports whether the phase moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Calibrator is the calibration state machine. It is the only writer of its
// BaselineStore.
type Calibrator struct {
	store *BaselineStore

	mu         sync.Mutex
	phase      Phase
	calibrated bool
}

// NewCalibrator creates a calibrator in PhaseReady that writes to store.
func NewCalibrator(store *BaselineStore) *Calibrator {
	return &Calibrator{store: store}
}

// Phase returns the current phase.
func (c *Calibrator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Calibrated reports whether a baseline has been captured in this cycle.
func (c *Calibrator) Calibrated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calibrated
}

// Action handles the single calibration button: start capturing, save the
// current posture, or start over.
func (c *Calibrator) Action(current landmark.AnchorSet, detectorReady bool) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := Transition{From: c.phase, To: c.phase}

	switch c.phase {
	case PhaseReady:
		if !detectorReady {
			return t, ErrDetectorNotReady
		}
		c.phase = PhaseCapturing
		c.calibrated = false

	case PhaseCapturing:
		if !current.HasEyes() {
			return t, ErrNoFace
		}
		c.store.save(current)
		c.phase = PhaseCompleted
		c.calibrated = true
		t.BaselineSaved = true

	case PhaseCompleted:
		c.restartLocked(&t)
	}

	t.To = c.phase
	return t, nil
}

// Recalibrate discards a completed calibration and starts a new capture.
// From PhaseReady it behaves like Action; while capturing it does nothing.
func (c *Calibrator) Recalibrate(detectorReady bool) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := Transition{From: c.phase, To: c.phase}

	switch c.phase {
	case PhaseReady:
		if !detectorReady {
			return t, ErrDetectorNotReady
		}
		c.phase = PhaseCapturing
	case PhaseCompleted:
		c.restartLocked(&t)
	}

	t.To = c.phase
	return t, nil
}

// Reset returns to PhaseReady with an empty baseline.
func (c *Calibrator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.clear()
	c.phase = PhaseReady
	c.calibrated = false
}

func (c *Calibrator) restartLocked(t *Transition) {
	c.store.clear()
	c.phase = PhaseCapturing
	c.calibrated = false
	t.BaselineCleared = true
	t.StopMonitoring = true
}
