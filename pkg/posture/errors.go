package posture

import "errors"

// Sentinel errors for user actions the engine refuses.
var (
	// ErrDetectorNotReady is returned when calibration starts before the model is loaded.
	ErrDetectorNotReady = errors.New("posture: face detection is not ready yet")

	// ErrNoFace is returned when a baseline capture sees no eyes.
	ErrNoFace = errors.New("posture: no face detected")

	// ErrNotCalibrated is returned when monitoring starts without a baseline.
	ErrNotCalibrated = errors.New("posture: calibration not completed")
)
