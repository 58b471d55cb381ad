package landmark

import "testing"

// testFace builds a full mesh with the eye corners (and optionally ears) set.
func testFace(withEars bool) Face {
	face := make(Face, MeshSize)
	face[LeftEyeInner] = &Landmark{X: 0.375, Y: 0.5}
	face[LeftEyeOuter] = &Landmark{X: 0.25, Y: 0.5}
	face[RightEyeInner] = &Landmark{X: 0.625, Y: 0.5}
	face[RightEyeOuter] = &Landmark{X: 0.75, Y: 0.5}
	if withEars {
		face[LeftEarIndex] = &Landmark{X: 0.125, Y: 0.5625}
		face[RightEarIndex] = &Landmark{X: 0.875, Y: 0.5625}
	}
	return face
}

func assertPoint(t *testing.T, name string, got *Point, wantX, wantY int) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil, want (%d,%d)", name, wantX, wantY)
	}
	if got.X != wantX || got.Y != wantY {
		t.Errorf("%s: got (%d,%d), want (%d,%d)", name, got.X, got.Y, wantX, wantY)
	}
}

func TestExtract_NoFace(t *testing.T) {
	got := Extract(Result{}, 640, 480)
	if !got.IsEmpty() {
		t.Errorf("expected empty anchor set, got %+v", got)
	}
}

func TestExtract_FullMesh(t *testing.T) {
	got := Extract(Result{Faces: []Face{testFace(true)}}, 640, 480)

	assertPoint(t, "left eye", got.LeftEye, 200, 240)
	assertPoint(t, "right eye", got.RightEye, 440, 240)
	assertPoint(t, "left ear", got.LeftEar, 80, 270)
	assertPoint(t, "right ear", got.RightEar, 560, 270)
}

func TestExtract_EarFallback(t *testing.T) {
	got := Extract(Result{Faces: []Face{testFace(false)}}, 640, 480)

	// Eye centre shifted outward by 0.1 of the width and down by 0.02 of the height
	assertPoint(t, "left ear", got.LeftEar, 136, 250)
	assertPoint(t, "right ear", got.RightEar, 504, 250)
}

func TestExtract_ScalesWithSurface(t *testing.T) {
	small := Extract(Result{Faces: []Face{testFace(true)}}, 320, 240)
	assertPoint(t, "left eye", small.LeftEye, 100, 120)
	assertPoint(t, "right ear", small.RightEar, 280, 135)
}

func TestExtract_UsesFirstFaceOnly(t *testing.T) {
	other := testFace(true)
	other[LeftEyeInner] = &Landmark{X: 0.875, Y: 0.875}
	got := Extract(Result{Faces: []Face{testFace(true), other}}, 640, 480)
	assertPoint(t, "left eye", got.LeftEye, 200, 240)
}

func TestExtract_MissingEyeCorners(t *testing.T) {
	face := testFace(true)
	face[RightEyeOuter] = nil

	got := Extract(Result{Faces: []Face{face}}, 640, 480)
	if got.RightEye != nil {
		t.Errorf("right eye should be nil, got %+v", got.RightEye)
	}
	if got.HasEyes() {
		t.Error("HasEyes should be false")
	}
	assertPoint(t, "left eye", got.LeftEye, 200, 240)
	// The reported ear survives even though its eye is gone
	assertPoint(t, "right ear", got.RightEar, 560, 270)
}

func TestExtract_ShortMeshTreatsTailAsMissing(t *testing.T) {
	face := testFace(false)[:RightEyeOuter+1]
	got := Extract(Result{Faces: []Face{face}}, 640, 480)
	if got.RightEye != nil {
		t.Errorf("right eye should be nil for a truncated mesh, got %+v", got.RightEye)
	}
	if got.LeftEye == nil || got.LeftEar == nil {
		t.Errorf("left side should survive, got %+v", got)
	}
}

func TestRound_HalfTowardPositiveInfinity(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{2.5, 3},
		{2.49, 2},
		{-2.5, -2},
		{-2.51, -3},
		{-44.8, -45},
		{0, 0},
	}
	for _, tc := range tests {
		if got := round(tc.in); got != tc.want {
			t.Errorf("round(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAnchorSet_Clone(t *testing.T) {
	orig := AnchorSet{LeftEye: Pt(1, 2), RightEye: Pt(3, 4), LeftEar: Pt(5, 6)}
	c := orig.Clone()
	c.LeftEye.Y = 100

	if orig.LeftEye.Y != 2 {
		t.Error("Clone shares points with its source")
	}
	if c.RightEar != nil {
		t.Error("nil points must stay nil")
	}
}
