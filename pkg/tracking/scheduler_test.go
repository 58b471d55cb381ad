package tracking

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/landmark"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeVideo struct {
	mu      sync.Mutex
	t       float64
	w, h    int
	advance float64
	seq     byte
	err     error
}

// Latest returns the current frame, then moves the video on by advance.
// Each distinct time carries a distinct one-byte payload.
func (v *fakeVideo) Latest() (Frame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return Frame{}, v.err
	}
	f := Frame{JPEG: []byte{v.seq}, Time: v.t, Width: v.w, Height: v.h}
	if v.advance != 0 {
		v.t += v.advance
		v.seq++
	}
	return f, nil
}

func (v *fakeVideo) set(t float64) {
	v.mu.Lock()
	if t != v.t {
		v.seq++
	}
	v.t = t
	v.mu.Unlock()
}

type fixedSurface struct{ w, h int }

func (s fixedSurface) Size() (int, int) { return s.w, s.h }

type sampleSink struct {
	mu      sync.Mutex
	samples []landmark.AnchorSet
}

func (s *sampleSink) add(a landmark.AnchorSet) {
	s.mu.Lock()
	s.samples = append(s.samples, a)
	s.mu.Unlock()
}

func (s *sampleSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

func (s *sampleSink) Last() landmark.AnchorSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples[len(s.samples)-1]
}

// meshWithEyes returns a face whose eye centres land at (0.25,0.5) and (0.75,0.5).
func meshWithEyes() landmark.Result {
	face := make(landmark.Face, landmark.MeshSize)
	for i := range face {
		face[i] = &landmark.Landmark{X: 0.5, Y: 0.5}
	}
	face[landmark.LeftEyeInner] = &landmark.Landmark{X: 0.25, Y: 0.5}
	face[landmark.LeftEyeOuter] = &landmark.Landmark{X: 0.25, Y: 0.5}
	face[landmark.RightEyeInner] = &landmark.Landmark{X: 0.75, Y: 0.5}
	face[landmark.RightEyeOuter] = &landmark.Landmark{X: 0.75, Y: 0.5}
	return landmark.Result{Faces: []landmark.Face{face}}
}

func TestScheduler_HiddenTicksDedup(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480}
	model := detection.NewMockLandmarker()
	sink := &sampleSink{}
	s := New(DefaultConfig(), video, model, nil, sink.add, nil)

	// Five 33 ms ticks against a video that only produced three frames.
	for _, vt := range []float64{0.0, 0.0, 0.033, 0.033, 0.066} {
		video.set(vt)
		s.step()
	}

	assert.Equal(t, 3, model.Calls())
	assert.Equal(t, 3, sink.Len())

	st := s.Stats()
	assert.Equal(t, int64(5), st.Ticks)
	assert.Equal(t, int64(2), st.Duplicates)
	assert.Equal(t, int64(3), st.Processed)
}

func TestScheduler_TimestampsIncrease(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480, advance: 0.01}
	model := detection.NewMockLandmarker()
	s := New(DefaultConfig(), video, model, nil, nil, nil)

	for i := 0; i < 5; i++ {
		s.step()
	}

	ts := model.Timestamps()
	require.Len(t, ts, 5)
	for i := 1; i < len(ts); i++ {
		assert.Greater(t, ts[i], ts[i-1])
	}
}

func TestScheduler_SkipsEmptyVideo(t *testing.T) {
	video := &fakeVideo{w: 0, h: 0, advance: 0.01}
	model := detection.NewMockLandmarker()
	s := New(DefaultConfig(), video, model, nil, nil, nil)

	s.step()
	s.step()

	assert.Equal(t, 0, model.Calls())
	assert.Equal(t, int64(2), s.Stats().Skipped)
}

func TestScheduler_DetectorErrorIsSwallowed(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480, advance: 0.01}
	model := detection.NewMockLandmarker(
		detection.MockStep{Err: errors.New("inference failed")},
		detection.MockStep{Result: meshWithEyes()},
	)
	sink := &sampleSink{}
	s := New(DefaultConfig(), video, model, nil, sink.add, nil)

	s.step()
	s.step()

	assert.Equal(t, 2, model.Calls())
	assert.Equal(t, 1, sink.Len())
	assert.Equal(t, int64(1), s.Stats().Errors)
}

func TestScheduler_FailedFrameNotRetried(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480}
	model := detection.NewMockLandmarker(detection.MockStep{Err: errors.New("boom")})
	s := New(DefaultConfig(), video, model, nil, nil, nil)

	s.step()
	s.step()

	assert.Equal(t, 1, model.Calls())
}

func TestScheduler_CaptureErrorSkipsModel(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480, err: errors.New("camera unplugged")}
	model := detection.NewMockLandmarker()
	s := New(DefaultConfig(), video, model, nil, nil, nil)

	s.step()
	assert.Equal(t, 0, model.Calls())
	assert.Equal(t, int64(1), s.Stats().Errors)
}

func TestScheduler_ScalesToSurface(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480}
	model := detection.NewMockLandmarker(detection.MockStep{Result: meshWithEyes()})
	sink := &sampleSink{}
	s := New(DefaultConfig(), video, model, fixedSurface{w: 1280, h: 720}, sink.add, nil)

	s.step()

	require.Equal(t, 1, sink.Len())
	got := sink.Last()
	require.True(t, got.HasEyes())
	assert.Equal(t, landmark.Point{X: 320, Y: 360}, *got.LeftEye)
	assert.Equal(t, landmark.Point{X: 960, Y: 360}, *got.RightEye)
}

func TestScheduler_StartRequiresReadyModel(t *testing.T) {
	model := detection.NewMockLandmarker()
	model.SetReady(false)

	s := New(DefaultConfig(), &fakeVideo{w: 640, h: 480}, model, nil, nil, nil)
	assert.ErrorIs(t, s.Start(), ErrModelNotReady)

	s = New(DefaultConfig(), nil, model, nil, nil, nil)
	assert.ErrorIs(t, s.Start(), ErrNoVideo)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RefreshInterval = time.Millisecond
	cfg.HiddenInterval = 2 * time.Millisecond
	return cfg
}

func TestScheduler_VisibilitySwitchesLoop(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480, advance: 0.001}
	model := detection.NewMockLandmarker()
	s := New(testConfig(), video, model, nil, nil, nil)

	require.NoError(t, s.Start())
	assert.Equal(t, ModeRender, s.Mode())

	s.SetVisible(false)
	assert.Equal(t, ModeInterval, s.Mode())

	before := model.Calls()
	assert.Eventually(t, func() bool { return model.Calls() > before }, time.Second, time.Millisecond)

	s.SetVisible(true)
	assert.Equal(t, ModeRender, s.Mode())

	s.Stop()
	s.Stop()
	assert.Equal(t, ModeStopped, s.Mode())
	assert.False(t, s.Running())

	after := model.Calls()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, model.Calls(), "no steps after Stop")
}

func TestScheduler_VisibilityWhileStopped(t *testing.T) {
	s := New(testConfig(), &fakeVideo{w: 640, h: 480}, detection.NewMockLandmarker(), nil, nil, nil)

	s.SetVisible(false)
	assert.Equal(t, ModeStopped, s.Mode())
	assert.False(t, s.Visible())

	require.NoError(t, s.Start())
	assert.Equal(t, ModeInterval, s.Mode())
	s.Stop()
}

func TestScheduler_RenderLoopStepsImmediately(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RefreshInterval = time.Hour

	video := &fakeVideo{w: 640, h: 480}
	model := detection.NewMockLandmarker()
	s := New(cfg, video, model, nil, nil, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return model.Calls() == 1 }, time.Second, time.Millisecond)
}

// payloadModel records the first byte of every frame it is given.
type payloadModel struct {
	mu   sync.Mutex
	seen []byte
}

func (m *payloadModel) DetectForVideo(frame []byte, _ time.Duration) (landmark.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, frame[0])
	return meshWithEyes(), nil
}

func (m *payloadModel) Ready() bool  { return true }
func (m *payloadModel) Close() error { return nil }

func (m *payloadModel) Seen() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.seen...)
}

func TestScheduler_EachFrameAnalysedOnce(t *testing.T) {
	video := &fakeVideo{w: 640, h: 480, advance: 0.01}
	model := &payloadModel{}
	s := New(DefaultConfig(), video, model, nil, nil, nil)

	for i := 0; i < 4; i++ {
		s.step()
	}
	// The video stalls on its latest frame for a few ticks.
	video.mu.Lock()
	video.advance = 0
	video.mu.Unlock()
	s.step()
	s.step()
	s.step()

	seen := model.Seen()
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, seen)

	st := s.Stats()
	assert.Equal(t, int64(5), st.Processed)
	assert.Equal(t, int64(2), st.Duplicates)
	assert.InDelta(t, 0.04, st.VideoTime, 1e-9)
}

func TestScheduler_SampleCallbackReadsState(t *testing.T) {
	defer goleak.VerifyNone(t)

	video := &fakeVideo{w: 640, h: 480, advance: 0.001}
	model := detection.NewMockLandmarker(detection.MockStep{Result: meshWithEyes()})

	var (
		s         *Scheduler
		mu        sync.Mutex
		processed []int64
	)
	s = New(testConfig(), video, model, nil, func(landmark.AnchorSet) {
		st := s.Stats()
		_ = s.Mode()
		mu.Lock()
		processed = append(processed, st.Processed)
		mu.Unlock()
	}, nil)

	samples := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(processed)
	}

	require.NoError(t, s.Start())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 40; i++ {
			s.SetVisible(i%2 == 1)
			time.Sleep(time.Millisecond)
		}
		s.Stop()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("visibility switching blocked while samples were flowing")
	}

	assert.False(t, s.Running())
	assert.Greater(t, samples(), 0)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(processed); i++ {
		assert.Greater(t, processed[i], processed[i-1], "samples arrive in order")
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, LowPowerConfig().Validate())

	cfg := DefaultConfig()
	cfg.HiddenInterval = 0
	assert.Error(t, cfg.Validate())
}

func TestMode_Text(t *testing.T) {
	for _, m := range []Mode{ModeStopped, ModeRender, ModeInterval} {
		b, err := m.MarshalText()
		require.NoError(t, err)

		var got Mode
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, m, got)
	}
	var m Mode
	assert.Error(t, m.UnmarshalText([]byte("paused")))
}
