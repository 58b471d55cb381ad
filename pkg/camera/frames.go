package camera

import (
	"sync"

	"github.com/teslashibe/go-posture/pkg/tracking"
)

// Frames holds the most recent encoded frame. It is the part of a capture
// the detection loop reads, and can be fed by anything that produces JPEGs.
type Frames struct {
	mu     sync.RWMutex
	latest tracking.Frame
	count  int64
}

// Put stores a new frame taken at playback time at (seconds). jpeg must not
// be modified afterwards.
func (f *Frames) Put(jpeg []byte, width, height int, at float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = tracking.Frame{JPEG: jpeg, Time: at, Width: width, Height: height}
	f.count++
}

// Reset forgets the current frame.
func (f *Frames) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = tracking.Frame{}
}

// Latest returns the newest frame with its time and size. Before the first
// frame it returns a zero Frame.
func (f *Frames) Latest() (tracking.Frame, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest, nil
}

// Count returns how many frames have been stored.
func (f *Frames) Count() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}
