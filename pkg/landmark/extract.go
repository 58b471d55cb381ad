package landmark

import "math"

// Face-mesh indices of the points the extractor reads.
const (
	LeftEyeInner  = 133
	LeftEyeOuter  = 33
	RightEyeInner = 362
	RightEyeOuter = 263
	LeftEarIndex  = 127
	RightEarIndex = 356

	// MeshSize is the number of points in a full face mesh.
	MeshSize = 478
)

// Ear fallback offsets, in normalized image fractions, applied to an eye
// centre when the model omits the ear landmark.
const (
	EarOffsetX = 0.1
	EarOffsetY = 0.02
)

// Extract converts a model result into an AnchorSet scaled to a display
// surface of width x height pixels. Only the first face is used.
func Extract(r Result, width, height int) AnchorSet {
	if len(r.Faces) == 0 {
		return AnchorSet{}
	}
	face := r.Faces[0]
	w, h := float64(width), float64(height)

	var out AnchorSet

	if cx, cy, ok := eyeCenter(face, LeftEyeInner, LeftEyeOuter); ok {
		out.LeftEye = toPixel(cx, cy, w, h)
		out.LeftEar = ear(face, LeftEarIndex, cx-EarOffsetX, cy+EarOffsetY, w, h)
	} else if lm, ok := face.At(LeftEarIndex); ok {
		out.LeftEar = toPixel(lm.X, lm.Y, w, h)
	}

	if cx, cy, ok := eyeCenter(face, RightEyeInner, RightEyeOuter); ok {
		out.RightEye = toPixel(cx, cy, w, h)
		out.RightEar = ear(face, RightEarIndex, cx+EarOffsetX, cy+EarOffsetY, w, h)
	} else if lm, ok := face.At(RightEarIndex); ok {
		out.RightEar = toPixel(lm.X, lm.Y, w, h)
	}

	return out
}

func eyeCenter(face Face, inner, outer int) (float64, float64, bool) {
	in, ok1 := face.At(inner)
	out, ok2 := face.At(outer)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return (in.X + out.X) / 2, (in.Y + out.Y) / 2, true
}

func ear(face Face, index int, fallbackX, fallbackY, w, h float64) *Point {
	if lm, ok := face.At(index); ok {
		return toPixel(lm.X, lm.Y, w, h)
	}
	return toPixel(fallbackX, fallbackY, w, h)
}

func toPixel(x, y, w, h float64) *Point {
	return &Point{X: round(x * w), Y: round(y * h)}
}

// round rounds half toward +Inf so negative fallback coordinates land on the
// same pixel a browser canvas would use.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
