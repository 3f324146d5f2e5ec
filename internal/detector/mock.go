package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm.
// All four fingers are extended well above the wrist and their PIP joints.
func OpenPalmLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side, clear of the index tip
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	lm.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	lm.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return lm
}

// FistLandmarks returns a preset HandLandmarks representing a closed fist
// with the palm facing the camera. All fingertips sit near the palm and the
// thumb wraps across the curled fingers, away from the index tip.
func FistLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb wrapped over the curled fingers
	lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76, Z: 0.01}
	lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.74, Z: 0.01}
	lm.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.73, Z: 0.0}
	lm.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.72, Z: -0.01}

	// Index finger curled
	lm.Points[IndexMCP] = Point3D{X: 0.57, Y: 0.68, Z: -0.02}
	lm.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	lm.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	lm.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	// Middle finger curled
	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	lm.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	lm.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	// Ring finger curled
	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	lm.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	lm.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	lm.Points[PinkyMCP] = Point3D{X: 0.38, Y: 0.70, Z: -0.02}
	lm.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	lm.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	lm.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return lm
}

// PinchLandmarks returns a preset HandLandmarks with the thumb tip and index
// tip touching.
func PinchLandmarks() HandLandmarks {
	lm := OpenPalmLandmarks()

	lm.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.01}
	lm.Points[ThumbTip] = Point3D{X: 0.55, Y: 0.50, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.52, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: 0.56, Y: 0.48, Z: 0.0}

	return lm
}

// PointingLandmarks returns a preset HandLandmarks with only the index finger
// extended, positioned at the given normalized x/y for the index tip. Used to
// exercise swipe detection across consecutive polls.
func PointingLandmarks(tipX, tipY float64) HandLandmarks {
	lm := FistLandmarks()

	// Thumb tucked clear of the index tip
	lm.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.74, Z: -0.01}

	// Hand turned edge-on while pointing, so the palm-normal proxy is weak
	lm.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.76, Z: -0.02}

	// Index finger extended toward the tip position
	wrist := lm.Points[Wrist]
	lm.Points[IndexMCP] = Point3D{X: wrist.X + (tipX-wrist.X)*0.25, Y: wrist.Y + (tipY-wrist.Y)*0.25, Z: 0.0}
	lm.Points[IndexPIP] = Point3D{X: wrist.X + (tipX-wrist.X)*0.55, Y: wrist.Y + (tipY-wrist.Y)*0.55, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: wrist.X + (tipX-wrist.X)*0.8, Y: wrist.Y + (tipY-wrist.Y)*0.8, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: tipX, Y: tipY, Z: 0.0}

	return lm
}
