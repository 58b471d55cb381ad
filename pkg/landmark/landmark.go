// Package landmark turns face-mesh model output into the four anchor points
// used for posture comparison.
package landmark

// Point is a position in display-surface pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// AnchorSet holds the derived anchor points of one frame.
// Every field is independently nil when the point is unknown.
type AnchorSet struct {
	LeftEye  *Point `json:"left_eye"`
	RightEye *Point `json:"right_eye"`
	LeftEar  *Point `json:"left_ear"`
	RightEar *Point `json:"right_ear"`
}

// HasEyes reports whether both eye centres are present.
func (a AnchorSet) HasEyes() bool {
	return a.LeftEye != nil && a.RightEye != nil
}

// IsEmpty reports whether no anchor is present at all.
func (a AnchorSet) IsEmpty() bool {
	return a.LeftEye == nil && a.RightEye == nil && a.LeftEar == nil && a.RightEar == nil
}

// Clone returns a deep copy that shares no points with a.
func (a AnchorSet) Clone() AnchorSet {
	return AnchorSet{
		LeftEye:  clonePoint(a.LeftEye),
		RightEye: clonePoint(a.RightEye),
		LeftEar:  clonePoint(a.LeftEar),
		RightEar: clonePoint(a.RightEar),
	}
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Pt is a convenience constructor for a present point.
func Pt(x, y int) *Point {
	return &Point{X: x, Y: y}
}

// Landmark is one model point in normalized image-fraction coordinates.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Face is one face mesh indexed by model landmark number.
// A nil entry, or an index past the end, is a point the model did not report.
type Face []*Landmark

// At returns the landmark at index i if the model reported it.
func (f Face) At(i int) (Landmark, bool) {
	if i < 0 || i >= len(f) || f[i] == nil {
		return Landmark{}, false
	}
	return *f[i], true
}

// Result is the model output for one frame: zero or more faces.
type Result struct {
	Faces []Face `json:"faces"`
}
