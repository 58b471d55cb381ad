//go:build nocv

package detection

import "errors"

// ErrNoOpenCV is returned by NewYuNet in builds without OpenCV.
var ErrNoOpenCV = errors.New("detection: built without OpenCV (nocv tag)")

// YuNetDetector is unavailable without OpenCV.
type YuNetDetector struct{}

// NewYuNet returns ErrNoOpenCV.
func NewYuNet(Config) (*YuNetDetector, error) {
	return nil, ErrNoOpenCV
}

// Detect returns ErrNoOpenCV.
func (d *YuNetDetector) Detect([]byte) ([]Detection, error) {
	return nil, ErrNoOpenCV
}

// Close does nothing.
func (d *YuNetDetector) Close() error { return nil }
