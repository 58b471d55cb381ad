package posture

import (
	"sync/atomic"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

// BaselineStore holds the calibrated reference anchors.
//
// Writes replace the whole baseline atomically, so a reader sees either the
// old or the new baseline and never a mix of both.
type BaselineStore struct {
	current atomic.Pointer[landmark.AnchorSet]
}

// NewBaselineStore returns an empty store.
func NewBaselineStore() *BaselineStore {
	s := &BaselineStore{}
	s.current.Store(&landmark.AnchorSet{})
	return s
}

// Snapshot returns the current baseline. The returned value must not be
// mutated through its point pointers.
func (s *BaselineStore) Snapshot() landmark.AnchorSet {
	return *s.current.Load()
}

// IsSet reports whether a usable baseline (both eyes) is stored.
func (s *BaselineStore) IsSet() bool {
	return s.current.Load().HasEyes()
}

// save replaces the baseline with a deep copy of a.
func (s *BaselineStore) save(a landmark.AnchorSet) {
	c := a.Clone()
	s.current.Store(&c)
}

// clear empties the baseline.
func (s *BaselineStore) clear() {
	s.current.Store(&landmark.AnchorSet{})
}
