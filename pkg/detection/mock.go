package detection

import (
	"sync"
	"time"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

// MockLandmarker returns scripted results for testing.
// Each call consumes the next step; the last step repeats forever.
type MockLandmarker struct {
	mu         sync.Mutex
	steps      []MockStep
	calls      int
	timestamps []time.Duration
	notReady   bool
	closed     bool
}

// MockStep is one scripted model response.
type MockStep struct {
	Result landmark.Result
	Err    error
}

// NewMockLandmarker creates a mock that replays steps.
func NewMockLandmarker(steps ...MockStep) *MockLandmarker {
	return &MockLandmarker{steps: steps}
}

// SetReady toggles what Ready reports.
func (m *MockLandmarker) SetReady(ready bool) {
	m.mu.Lock()
	m.notReady = !ready
	m.mu.Unlock()
}

// DetectForVideo returns the next scripted step.
func (m *MockLandmarker) DetectForVideo(_ []byte, ts time.Duration) (landmark.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return landmark.Result{}, ErrClosed
	}

	m.timestamps = append(m.timestamps, ts)
	i := m.calls
	m.calls++

	if len(m.steps) == 0 {
		return landmark.Result{}, nil
	}
	if i >= len(m.steps) {
		i = len(m.steps) - 1
	}
	return m.steps[i].Result, m.steps[i].Err
}

// Calls returns how many times the model was invoked.
func (m *MockLandmarker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Timestamps returns the timestamps passed to each call.
func (m *MockLandmarker) Timestamps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.timestamps...)
}

// Ready reports whether the mock is usable.
func (m *MockLandmarker) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.notReady && !m.closed
}

// Close marks the mock closed.
func (m *MockLandmarker) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Ensure the landmarkers implement Landmarker.
var (
	_ Landmarker = (*MockLandmarker)(nil)
	_ Landmarker = (*FaceLandmarker)(nil)
)
