package scene

import (
	"math"
	"time"

	"github.com/renderix/reverie/internal/field"
)

// Glyph life cycle tuning.
const (
	// HoldDuration is how long a glyph rests near the bottom of the scene
	// before its flight is scheduled.
	HoldDuration = 3500 * time.Millisecond
	// StaggerStep delays each character in a spawn batch so a typed phrase
	// visibly cascades instead of flying as one block.
	StaggerStep = 80 * time.Millisecond
	// FlightDuration is the nominal time of the hold-to-dock Bezier flight.
	FlightDuration = 2500 * time.Millisecond
	// FlightTimeout hard-caps the fly phase so it completes even when the
	// render loop stalls.
	FlightTimeout = 4 * time.Second
	// MaxGlyphs caps the live glyph population; the oldest are evicted FIFO.
	MaxGlyphs = 500

	// GlyphsPerRing is how many dock slots one orbit shell holds.
	GlyphsPerRing = 24
	// RingBaseRadius and RingRadiusStep size successive orbit shells.
	RingBaseRadius = 2.2
	RingRadiusStep = 0.35
	// RingBaseHeight and RingHeightStep lift successive shells.
	RingBaseHeight = 0.6
	RingHeightStep = 0.3
	// RingTwist rotates each successive shell so docked characters from
	// different shells do not visually overlap.
	RingTwist = 0.26

	// HoldY and HoldZ place the hold area near the bottom center, slightly
	// toward the viewer.
	HoldY = -1.7
	HoldZ = 0.6
	// HoldSpacing separates glyphs horizontally while they hold.
	HoldSpacing = 0.11

	// ControlRise and ControlForward place the Bezier control point above
	// and in front of the dock destination.
	ControlRise    = 1.4
	ControlForward = 0.8
)

// Phase identifies the life cycle stage of a glyph particle.
type Phase string

const (
	// PhaseSpawn is the initial drift toward the hold area.
	PhaseSpawn Phase = "spawn"
	// PhaseFly is the Bezier flight from the hold area to the dock ring.
	PhaseFly Phase = "fly"
	// PhaseDock is the terminal orbit on the dock ring.
	PhaseDock Phase = "dock"
)

// dockSlot is the stable orbit assignment a glyph receives at creation,
// derived from the global running character counter.
type dockSlot struct {
	ring      int
	baseAngle float64
	radius    float64
	height    float64
}

// glyphState is the phase-tagged variant state of a glyph. Each phase owns
// exactly the fields it needs; transitions are strictly spawn→fly→dock.
type glyphState interface {
	phase() Phase
}

// spawnState covers the hold drift before the flight is scheduled.
type spawnState struct {
	spawnedAt  time.Time
	hold       field.Vec3
	startDelay time.Duration // batch index × StaggerStep
	slot       dockSlot
}

// flyState covers the Bezier flight. flyStart already includes the stagger
// delay; before it the glyph keeps easing toward its hold position.
type flyState struct {
	flyStart time.Time
	from     field.Vec3
	control  field.Vec3
	slot     dockSlot
}

// dockState is terminal: the glyph orbits its slot forever.
type dockState struct {
	slot dockSlot
}

func (spawnState) phase() Phase { return PhaseSpawn }
func (flyState) phase() Phase   { return PhaseFly }
func (dockState) phase() Phase  { return PhaseDock }

// Glyph is one animated on-screen character tied to transcribed speech.
// Owned exclusively by the Engine; renderers read position, scale and phase
// through GlyphView snapshots.
type Glyph struct {
	ID       uint64
	Char     rune
	Position field.Vec3
	Scale    float64
	Seed     float64

	state glyphState
}

// Phase returns the glyph's current life cycle phase.
func (g *Glyph) Phase() Phase {
	return g.state.phase()
}

// GlyphView is the render-facing snapshot of one glyph.
type GlyphView struct {
	ID       uint64     `json:"id"`
	Char     string     `json:"char"`
	Position field.Vec3 `json:"position"`
	Scale    float64    `json:"scale"`
	Phase    Phase      `json:"phase"`
}

// slotFor computes the orbit shell assignment for the n-th character ever
// spawned. Successive rings are twisted by RingTwist and pushed outward and
// upward so shells never coincide.
func slotFor(counter uint64) dockSlot {
	ring := int(counter / GlyphsPerRing)
	index := int(counter % GlyphsPerRing)

	angle := float64(index)*(2*math.Pi/GlyphsPerRing) + float64(ring)*RingTwist
	return dockSlot{
		ring:      ring,
		baseAngle: angle,
		radius:    RingBaseRadius + float64(ring)*RingRadiusStep,
		height:    RingBaseHeight + float64(ring)*RingHeightStep,
	}
}

// holdTargetFor spreads holding glyphs into a row near the bottom center.
func holdTargetFor(counter uint64) field.Vec3 {
	col := float64(counter%GlyphsPerRing) - GlyphsPerRing/2
	return field.Vec3{X: col * HoldSpacing, Y: HoldY, Z: HoldZ}
}
