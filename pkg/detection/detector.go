// Package detection provides the face-landmark model behind the posture engine.
package detection

import "github.com/teslashibe/go-posture/pkg/landmark"

// Detection represents a detected face
type Detection struct {
	X, Y       float64   // Top-left corner (0-1 normalized)
	W, H       float64   // Width and height (0-1 normalized)
	Confidence float64   // Detection confidence (0-1)
	Keypoints  Keypoints // Facial keypoints (0-1 normalized)
}

// Keypoints are the five facial keypoints reported by YuNet, in model order.
type Keypoints struct {
	EyeA, EyeB     landmark.Landmark
	Nose           landmark.Landmark
	MouthA, MouthB landmark.Landmark
}

// Face places the keypoints into a sparse face mesh at the indices the
// landmark extractor reads. Ear indices stay empty so the extractor falls
// back to its eye-relative ear estimate.
func (k Keypoints) Face() landmark.Face {
	left, right := k.EyeA, k.EyeB
	if right.X < left.X {
		left, right = right, left
	}

	face := make(landmark.Face, landmark.MeshSize)
	face[landmark.LeftEyeInner] = ptr(left)
	face[landmark.LeftEyeOuter] = ptr(left)
	face[landmark.RightEyeInner] = ptr(right)
	face[landmark.RightEyeOuter] = ptr(right)
	face[noseTipIndex] = ptr(k.Nose)
	return face
}

// noseTipIndex is the face-mesh index of the nose tip.
const noseTipIndex = 1

func ptr(l landmark.Landmark) *landmark.Landmark {
	return &l
}

// Center returns the center point of the detection
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in the image and returns their positions
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources
	Close() error
}

// SelectBest picks the best face from multiple detections
// Priority: confidence * 0.7 + area * 0.3
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}

	if len(dets) == 1 {
		return &dets[0]
	}

	// Find max area for normalization
	maxArea := 0.0
	for _, d := range dets {
		if d.Area() > maxArea {
			maxArea = d.Area()
		}
	}

	bestScore := -1.0
	var best *Detection

	for i := range dets {
		score := dets[i].Confidence * 0.7
		if maxArea > 0 {
			score += (dets[i].Area() / maxArea) * 0.3
		}
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}

	return best
}
