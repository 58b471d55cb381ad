package detection

import (
	"sync"
	"time"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

// FaceLandmarker adapts a box Detector into a Landmarker by mapping the best
// face's keypoints onto a sparse face mesh.
type FaceLandmarker struct {
	detector Detector

	mu     sync.RWMutex
	closed bool
}

// NewFaceLandmarker wraps a detector.
func NewFaceLandmarker(d Detector) *FaceLandmarker {
	return &FaceLandmarker{detector: d}
}

// NewYuNetLandmarker loads YuNet and wraps it as a Landmarker.
func NewYuNetLandmarker(cfg Config) (*FaceLandmarker, error) {
	d, err := NewYuNet(cfg)
	if err != nil {
		return nil, err
	}
	return NewFaceLandmarker(d), nil
}

// DetectForVideo runs detection on one frame. The timestamp is not needed by
// a stateless detector and is accepted for interface compatibility.
func (f *FaceLandmarker) DetectForVideo(frame []byte, _ time.Duration) (landmark.Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed || f.detector == nil {
		return landmark.Result{}, ErrClosed
	}

	dets, err := f.detector.Detect(frame)
	if err != nil {
		return landmark.Result{}, err
	}

	best := SelectBest(dets)
	if best == nil {
		return landmark.Result{}, nil
	}
	return landmark.Result{Faces: []landmark.Face{best.Keypoints.Face()}}, nil
}

// Ready reports whether the detector is loaded.
func (f *FaceLandmarker) Ready() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.closed && f.detector != nil
}

// Close releases the underlying detector.
func (f *FaceLandmarker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.detector == nil {
		return nil
	}
	return f.detector.Close()
}
