package detection

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

func TestDetection_Center(t *testing.T) {
	tests := []struct {
		name    string
		det     Detection
		expectX float64
		expectY float64
	}{
		{
			name:    "center of image",
			det:     Detection{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
			expectX: 0.5,
			expectY: 0.5,
		},
		{
			name:    "top left corner",
			det:     Detection{X: 0, Y: 0, W: 0.25, H: 0.25},
			expectX: 0.125,
			expectY: 0.125,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := tc.det.Center()
			if x != tc.expectX {
				t.Errorf("Center X: got %.3f, want %.3f", x, tc.expectX)
			}
			if y != tc.expectY {
				t.Errorf("Center Y: got %.3f, want %.3f", y, tc.expectY)
			}
		})
	}
}

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name       string
		detections []Detection
		expectNil  bool
		expectIdx  int
	}{
		{
			name:       "empty list",
			detections: []Detection{},
			expectNil:  true,
		},
		{
			name: "single detection",
			detections: []Detection{
				{X: 0.4, Y: 0.4, W: 0.2, H: 0.2, Confidence: 0.9},
			},
			expectIdx: 0,
		},
		{
			name: "high confidence beats larger area",
			detections: []Detection{
				{X: 0.0, Y: 0.0, W: 0.4, H: 0.4, Confidence: 0.5},
				{X: 0.3, Y: 0.3, W: 0.2, H: 0.2, Confidence: 0.95},
			},
			expectIdx: 1, // 0.95*0.7 + 0.25*0.3 = 0.74 vs 0.5*0.7 + 1.0*0.3 = 0.65
		},
		{
			name: "similar confidence picks larger",
			detections: []Detection{
				{X: 0.0, Y: 0.0, W: 0.5, H: 0.5, Confidence: 0.8},
				{X: 0.3, Y: 0.3, W: 0.1, H: 0.1, Confidence: 0.8},
			},
			expectIdx: 0,
		},
		{
			name: "zero area boxes fall back to confidence",
			detections: []Detection{
				{Confidence: 0.6},
				{Confidence: 0.7},
			},
			expectIdx: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best := SelectBest(tc.detections)
			if tc.expectNil {
				if best != nil {
					t.Errorf("SelectBest: expected nil, got %+v", best)
				}
				return
			}
			if best == nil {
				t.Fatal("SelectBest: expected non-nil, got nil")
			}
			if best != &tc.detections[tc.expectIdx] {
				t.Errorf("SelectBest: got %+v, want %+v", best, tc.detections[tc.expectIdx])
			}
		})
	}
}

func TestKeypoints_FaceOrdersEyesByX(t *testing.T) {
	kp := Keypoints{
		EyeA: landmark.Landmark{X: 0.625, Y: 0.5},
		EyeB: landmark.Landmark{X: 0.375, Y: 0.5},
		Nose: landmark.Landmark{X: 0.5, Y: 0.625},
	}

	anchors := landmark.Extract(landmark.Result{Faces: []landmark.Face{kp.Face()}}, 640, 480)

	if anchors.LeftEye == nil || anchors.LeftEye.X != 240 {
		t.Errorf("left eye: got %+v, want x=240", anchors.LeftEye)
	}
	if anchors.RightEye == nil || anchors.RightEye.X != 400 {
		t.Errorf("right eye: got %+v, want x=400", anchors.RightEye)
	}
	// YuNet has no ear points, so the extractor's fallback must kick in
	if anchors.LeftEar == nil || anchors.LeftEar.X != 176 || anchors.LeftEar.Y != 250 {
		t.Errorf("left ear fallback: got %+v, want (176,250)", anchors.LeftEar)
	}
}

type fakeDetector struct {
	dets   []Detection
	err    error
	closed bool
}

func (f *fakeDetector) Detect([]byte) ([]Detection, error) { return f.dets, f.err }
func (f *fakeDetector) Close() error { f.closed = true; return nil }

func TestFaceLandmarker_NoFace(t *testing.T) {
	l := NewFaceLandmarker(&fakeDetector{})
	res, err := l.DetectForVideo(nil, 0)
	if err != nil {
		t.Fatalf("DetectForVideo: %v", err)
	}
	if len(res.Faces) != 0 {
		t.Errorf("expected no faces, got %d", len(res.Faces))
	}
}

func TestFaceLandmarker_BestFace(t *testing.T) {
	d := &fakeDetector{dets: []Detection{
		{W: 0.1, H: 0.1, Confidence: 0.3},
		{W: 0.3, H: 0.3, Confidence: 0.9, Keypoints: Keypoints{
			EyeA: landmark.Landmark{X: 0.25, Y: 0.5},
			EyeB: landmark.Landmark{X: 0.75, Y: 0.5},
		}},
	}}
	l := NewFaceLandmarker(d)

	res, err := l.DetectForVideo(nil, 0)
	if err != nil {
		t.Fatalf("DetectForVideo: %v", err)
	}
	if len(res.Faces) != 1 {
		t.Fatalf("expected one face, got %d", len(res.Faces))
	}
	if lm, ok := res.Faces[0].At(landmark.RightEyeOuter); !ok || lm.X != 0.75 {
		t.Errorf("right eye outer: got %+v ok=%v", lm, ok)
	}
}

func TestFaceLandmarker_ErrorAndClose(t *testing.T) {
	boom := errors.New("boom")
	d := &fakeDetector{err: boom}
	l := NewFaceLandmarker(d)

	if !l.Ready() {
		t.Fatal("expected ready before Close")
	}
	if _, err := l.DetectForVideo(nil, 0); !errors.Is(err, boom) {
		t.Errorf("expected detector error, got %v", err)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !d.closed {
		t.Error("Close should close the detector")
	}
	if l.Ready() {
		t.Error("expected not ready after Close")
	}
	if _, err := l.DetectForVideo(nil, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMockLandmarker_ReplaysSteps(t *testing.T) {
	face := landmark.Result{Faces: []landmark.Face{make(landmark.Face, landmark.MeshSize)}}
	boom := errors.New("boom")
	m := NewMockLandmarker(MockStep{Result: face}, MockStep{Err: boom})

	if res, err := m.DetectForVideo(nil, 1); err != nil || len(res.Faces) != 1 {
		t.Fatalf("step 1: res=%+v err=%v", res, err)
	}
	for i := 0; i < 2; i++ {
		if _, err := m.DetectForVideo(nil, 2); !errors.Is(err, boom) {
			t.Fatalf("step %d: expected boom, got %v", i+2, err)
		}
	}
	if m.Calls() != 3 {
		t.Errorf("Calls = %d, want 3", m.Calls())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ModelPath == "" {
		t.Error("DefaultConfig: ModelPath should not be empty")
	}
	if cfg.ConfidenceThresh <= 0 || cfg.ConfidenceThresh > 1 {
		t.Errorf("DefaultConfig: ConfidenceThresh should be 0-1, got %f", cfg.ConfidenceThresh)
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		t.Errorf("DefaultConfig: input size should be positive, got %dx%d", cfg.InputWidth, cfg.InputHeight)
	}
}
