//go:build !nocv

package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-posture/pkg/debug"
	"github.com/teslashibe/go-posture/pkg/landmark"
	"gocv.io/x/gocv"
)

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
	closed   bool
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	// Input size is updated per image in Detect
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// Detect finds faces in the JPEG image
func (d *YuNetDetector) Detect(jpeg []byte) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	var detections []Detection
	for r := 0; r < faces.Rows(); r++ {
		// YuNet output format (15 columns):
		// 0-3: x, y, w, h (bounding box in pixels)
		// 4-13: 5 facial landmarks (x,y pairs): eye, eye, nose, mouth, mouth
		// 14: face score
		at := func(c int) float64 { return float64(faces.GetFloatAt(r, c)) }
		kp := func(c int) landmark.Landmark {
			return landmark.Landmark{X: at(c) / imgW, Y: at(c+1) / imgH}
		}

		detections = append(detections, Detection{
			X:          at(0) / imgW,
			Y:          at(1) / imgH,
			W:          at(2) / imgW,
			H:          at(3) / imgH,
			Confidence: at(14),
			Keypoints: Keypoints{
				EyeA:   kp(4),
				EyeB:   kp(6),
				Nose:   kp(8),
				MouthA: kp(10),
				MouthB: kp(12),
			},
		})
	}

	if len(detections) > 0 {
		debug.FrameLog("yunet detections", "faces", len(detections))
	}

	return detections, nil
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.detector.Close()
	return nil
}
