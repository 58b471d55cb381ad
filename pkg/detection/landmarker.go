package detection

import (
	"errors"
	"time"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

// ErrClosed is returned when a closed landmarker is asked to run.
var ErrClosed = errors.New("detection: landmarker closed")

// Landmarker is the face-landmark model: given one video frame and a
// monotonically increasing timestamp it returns zero or one face meshes.
type Landmarker interface {
	// DetectForVideo runs the model on a JPEG frame.
	DetectForVideo(frame []byte, timestamp time.Duration) (landmark.Result, error)

	// Ready reports whether the model is loaded and usable.
	Ready() bool

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  `env:"MODEL_PATH" envDefault:"models/face_detection_yunet.onnx"`
	ConfidenceThresh float64 `env:"MODEL_CONFIDENCE" envDefault:"0.5"`
	InputWidth       int     `env:"MODEL_INPUT_WIDTH" envDefault:"320"`
	InputHeight      int     `env:"MODEL_INPUT_HEIGHT" envDefault:"320"`
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}
