// Package gesture classifies raw hand landmark geometry into discrete
// gestures plus continuous derived signals, once per detection poll.
package gesture

import (
	"math"
	"time"

	"github.com/renderix/reverie/internal/detector"
)

// Label is the discrete classification of a single hand's pose or motion.
type Label string

const (
	// LabelOpen is an open palm with all four fingers extended.
	LabelOpen Label = "OPEN"
	// LabelClosed is a fist with the palm facing the camera.
	LabelClosed Label = "CLOSED"
	// LabelSwipe is a fast lateral motion with only the index finger extended.
	LabelSwipe Label = "SWIPE"
	// LabelPinch is the thumb tip touching the index tip.
	LabelPinch Label = "PINCH"
	// LabelIdle is any pose that matches no other label, or no hand at all.
	LabelIdle Label = "IDLE"
)

// Point2D is a point in the normalized image plane.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the full classifier output for one poll. It is recomputed and
// overwritten wholesale every poll; readers never observe a partial update.
type State struct {
	Label         Label            `json:"label"`
	Detected      bool             `json:"detected"`
	Position      detector.Point3D `json:"position"`   // wrist position
	PalmCenter    detector.Point3D `json:"palmCenter"` // centroid of wrist and knuckles
	Pointer       Point2D          `json:"pointer"`    // index fingertip
	Rotation      [2]float64       `json:"rotation"`   // knuckle-line roll, wrist-to-middle pitch
	PinchDistance float64          `json:"pinchDistance"`
	Velocity      float64          `json:"velocity"` // pointer speed, normalized units/sec
}

// Config holds the fixed thresholds used by the classifier.
type Config struct {
	// PinchThreshold is the thumb-to-index distance below which the pose is a pinch.
	PinchThreshold float64

	// WristMargin is how far above the wrist a fingertip must sit to count as extended.
	WristMargin float64

	// JointMargin is how far above its own PIP joint a fingertip must sit to count as extended.
	JointMargin float64

	// PalmNormalThreshold is the minimum palm-normal magnitude for a closed fist;
	// below it the hand is seen edge-on and the pose is ambiguous.
	PalmNormalThreshold float64

	// SwipeVelocity is the minimum pointer speed (normalized units/sec) for a swipe.
	SwipeVelocity float64
}

// DefaultConfig returns a Config with sensible default thresholds.
func DefaultConfig() Config {
	return Config{
		PinchThreshold:      0.08,
		WristMargin:         0.1,
		JointMargin:         0.02,
		PalmNormalThreshold: 0.012,
		SwipeVelocity:       0.8,
	}
}

// Classifier turns one LandmarkFrame per poll into a State. It keeps the
// previous poll's pointer so it can derive velocity; a poll with no hand
// clears that cache so no velocity carries across a detection gap.
type Classifier struct {
	config      Config
	hasPrev     bool
	prevPointer Point2D
	prevTime    time.Time
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config Config) *Classifier {
	return &Classifier{config: config}
}

// fingertip/PIP pairs checked for extension. The thumb is excluded: its tip
// rarely clears the wrist margin even when spread, so it only contributes
// through the pinch distance.
var fingerPairs = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// Classify computes the State for one poll. A nil hand means no detection:
// the label is forced to IDLE, Detected is false, and the pointer cache is
// cleared. Classify never fails; a degenerate frame classifies as IDLE.
func (c *Classifier) Classify(hand *detector.HandLandmarks, now time.Time) State {
	if hand == nil {
		c.hasPrev = false
		return State{Label: LabelIdle, Detected: false}
	}

	wrist := hand.Points[detector.Wrist]
	pointer := Point2D{X: hand.Points[detector.IndexTip].X, Y: hand.Points[detector.IndexTip].Y}

	// Pointer velocity from consecutive polls; zero when no previous sample.
	var velocity float64
	if c.hasPrev {
		dt := now.Sub(c.prevTime).Seconds()
		if dt > 0 {
			dx := pointer.X - c.prevPointer.X
			dy := pointer.Y - c.prevPointer.Y
			velocity = math.Sqrt(dx*dx+dy*dy) / dt
		}
	}
	c.prevPointer = pointer
	c.prevTime = now
	c.hasPrev = true

	extended := 0
	for _, pair := range fingerPairs {
		if c.isExtended(hand, pair[0], pair[1]) {
			extended++
		}
	}
	indexExtended := c.isExtended(hand, detector.IndexTip, detector.IndexPIP)

	palmNormal := hand.PalmNormal()
	pinchDist := hand.PinchDistance()

	state := State{
		Detected:      true,
		Position:      wrist,
		PalmCenter:    hand.PalmCenter(),
		Pointer:       pointer,
		Rotation:      handRotation(hand),
		PinchDistance: pinchDist,
		Velocity:      velocity,
	}

	// Priority order: pinch beats open beats closed beats swipe.
	switch {
	case pinchDist < c.config.PinchThreshold:
		state.Label = LabelPinch
	case extended >= 4:
		state.Label = LabelOpen
	case extended <= 1 && math.Abs(palmNormal) > c.config.PalmNormalThreshold:
		state.Label = LabelClosed
	case extended == 1 && velocity > c.config.SwipeVelocity && indexExtended:
		state.Label = LabelSwipe
	default:
		state.Label = LabelIdle
	}

	return state
}

// isExtended reports whether the fingertip at tip sits sufficiently above
// both the wrist and its own PIP joint. Image y grows downward, so "above"
// means a smaller y.
func (c *Classifier) isExtended(hand *detector.HandLandmarks, tip, pip int) bool {
	wristY := hand.Points[detector.Wrist].Y
	tipY := hand.Points[tip].Y
	pipY := hand.Points[pip].Y
	return wristY-tipY > c.config.WristMargin && pipY-tipY > c.config.JointMargin
}

// handRotation derives two image-plane angles: the roll of the knuckle line
// (index MCP to pinky MCP) and the pitch of the wrist-to-middle-MCP axis.
func handRotation(hand *detector.HandLandmarks) [2]float64 {
	indexMCP := hand.Points[detector.IndexMCP]
	pinkyMCP := hand.Points[detector.PinkyMCP]
	wrist := hand.Points[detector.Wrist]
	middleMCP := hand.Points[detector.MiddleMCP]

	roll := math.Atan2(pinkyMCP.Y-indexMCP.Y, pinkyMCP.X-indexMCP.X)
	pitch := math.Atan2(middleMCP.Y-wrist.Y, middleMCP.X-wrist.X)
	return [2]float64{roll, pitch}
}
