// Package detector provides hand landmark detection interfaces and types.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in normalized image coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks for one detected hand.
// Coordinates are normalized to the image plane: x and y in [0,1] with the
// origin at the top-left, z relative depth with negative values toward the
// camera. Ephemeral; produced each poll and not retained.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance returns the Euclidean distance between two landmark points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PinchDistance returns the distance between the thumb tip and index tip.
func (h *HandLandmarks) PinchDistance() float64 {
	return Distance(h.Points[ThumbTip], h.Points[IndexTip])
}

// PalmCenter returns the centroid of the wrist and the four finger MCP
// knuckles, a stable anchor for palm-relative forces.
func (h *HandLandmarks) PalmCenter() Point3D {
	anchors := [...]int{Wrist, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	var c Point3D
	for _, i := range anchors {
		c.X += h.Points[i].X
		c.Y += h.Points[i].Y
		c.Z += h.Points[i].Z
	}
	n := float64(len(anchors))
	return Point3D{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// PalmNormal returns a proxy for the palm orientation: the 2D cross product
// of the wrist-to-index-MCP and wrist-to-pinky-MCP vectors. Its sign flips
// when the palm faces toward or away from the camera, and its magnitude
// shrinks when the hand is seen edge-on.
func (h *HandLandmarks) PalmNormal() float64 {
	wrist := h.Points[Wrist]
	v1x := h.Points[IndexMCP].X - wrist.X
	v1y := h.Points[IndexMCP].Y - wrist.Y
	v2x := h.Points[PinkyMCP].X - wrist.X
	v2y := h.Points[PinkyMCP].Y - wrist.Y
	return v1x*v2y - v1y*v2x
}
