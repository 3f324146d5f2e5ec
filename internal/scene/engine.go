// Package scene advances the point cloud and the glyph particles through
// their per-tick life cycles, reacting to gestures, transcript text and the
// disruption level.
package scene

import (
	"math"
	"time"

	"github.com/renderix/reverie/internal/field"
	"github.com/renderix/reverie/internal/gesture"
)

// Engine tuning.
const (
	// MaxTickStep clamps the variable timestep so a stalled frame cannot
	// teleport the simulation.
	MaxTickStep = 0.1

	// SpawnEase is the exponential easing rate toward the hold target.
	SpawnEase = 6.0
	// SpawnGrowTime is how long a freshly spawned glyph takes to reach full scale.
	SpawnGrowTime = 0.3

	// RevolveRate is the slow constant revolution of the dock rings (rad/sec).
	RevolveRate = 0.12
	// BobAmp and BobFreq drive the per-character sinusoidal bob while docked.
	BobAmp  = 0.08
	BobFreq = 1.7
	// DockEase is the ambient easing rate toward the dock target;
	// DockEaseClosed is the faster rate used during a CLOSED gather.
	DockEase       = 2.5
	DockEaseClosed = 8.0

	// OpenPushScale and OpenPushBack push dock targets radially outward and
	// back in depth while the palm is open.
	OpenPushScale = 1.35
	OpenPushBack  = 0.5
	// SwipeRadius and SwipeForce shape the pointer repulsion field.
	SwipeRadius = 1.2
	SwipeForce  = 0.35
	// ClusterScale and ClusterHeight define the tight half-scale gather
	// while the fist is closed.
	ClusterScale  = 0.5
	ClusterHeight = 0.8
)

// Engine owns the ambient point cloud and all live glyph particles. It is
// single-writer: only the render tick mutates it, and readers receive
// wholesale snapshots.
type Engine struct {
	points []field.Point
	glyphs []*Glyph

	charCounter uint64 // global running character counter, assigns dock slots
	nextID      uint64
	transcript  string

	disruption float64 // externally driven level (negative sentiment)
	scatter    float64 // asymmetric envelope actually applied to the cloud
	reading    bool

	sceneTime float64
	lastTick  time.Time
	ticked    bool
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SetCloud replaces the ambient point cloud. Cardinality is fixed until the
// next image load.
func (e *Engine) SetCloud(points []field.Point) {
	e.points = points
}

// Points returns the live point cloud. The slice is owned by the engine;
// readers must not mutate it.
func (e *Engine) Points() []field.Point {
	return e.points
}

// GlyphCount returns the number of live glyph particles.
func (e *Engine) GlyphCount() int {
	return len(e.glyphs)
}

// Glyphs returns render-facing snapshots of all live glyphs.
func (e *Engine) Glyphs() []GlyphView {
	views := make([]GlyphView, len(e.glyphs))
	for i, g := range e.glyphs {
		views[i] = GlyphView{
			ID:       g.ID,
			Char:     string(g.Char),
			Position: g.Position,
			Scale:    g.Scale,
			Phase:    g.Phase(),
		}
	}
	return views
}

// SetDisruption sets the externally driven disruption level in [0,1],
// typically from a negative sentiment result. An OPEN gesture raises the
// effective level independently during Tick.
func (e *Engine) SetDisruption(level float64) {
	e.disruption = clamp(level, 0, 1)
}

// Disruption returns the scatter envelope currently applied to the cloud.
func (e *Engine) Disruption() float64 {
	return e.scatter
}

// SetReadingMode toggles reading mode: ambient points recede and jitter,
// and glyph life cycle advancement pauses entirely.
func (e *Engine) SetReadingMode(on bool) {
	e.reading = on
}

// Reset clears all glyphs and the transcript diff state, for a scene reset
// such as a memory restore.
func (e *Engine) Reset() {
	e.glyphs = nil
	e.transcript = ""
	e.charCounter = 0
}

// Tick advances the whole scene by one render tick. The timestep is derived
// from now and clamped to MaxTickStep. Tick never fails; it always leaves
// the scene in a consistent state.
func (e *Engine) Tick(now time.Time, g gesture.State) {
	var dt float64
	if e.ticked {
		dt = clamp(now.Sub(e.lastTick).Seconds(), 0, MaxTickStep)
	}
	e.lastTick = now
	e.ticked = true
	e.sceneTime += dt

	e.updateScatter(dt, g)
	e.updateAmbient(dt)

	if e.reading {
		// Reading mode pauses the glyph life cycle entirely.
		return
	}
	for _, glyph := range e.glyphs {
		e.advanceGlyph(glyph, now, dt, g)
	}
}

// updateScatter moves the scatter envelope toward the effective disruption
// level. Scatter engages faster than it relaxes, so the cloud bursts apart
// quickly and settles back slowly.
func (e *Engine) updateScatter(dt float64, g gesture.State) {
	const (
		riseRate = 2.5
		fallRate = 0.6
	)

	target := e.disruption
	if g.Detected && g.Label == gesture.LabelOpen {
		target = 1
	}

	rate := fallRate
	if target > e.scatter {
		rate = riseRate
	}
	e.scatter += (target - e.scatter) * math.Min(1, rate*dt)
	e.scatter = clamp(e.scatter, 0, 1)
}

// advanceGlyph runs one tick of the phase machine. Transitions are strictly
// spawn→fly→dock; no branch ever assigns an earlier phase.
func (e *Engine) advanceGlyph(g *Glyph, now time.Time, dt float64, gs gesture.State) {
	switch st := g.state.(type) {
	case spawnState:
		g.Position = easeToward(g.Position, st.hold, SpawnEase, dt)

		elapsed := now.Sub(st.spawnedAt).Seconds()
		g.Scale = math.Min(1, elapsed/SpawnGrowTime)

		if now.Sub(st.spawnedAt) >= HoldDuration {
			g.state = flyState{
				flyStart: now.Add(st.startDelay),
				from:     g.Position,
				control:  controlPointFor(st.slot),
				slot:     st.slot,
			}
		}

	case flyState:
		g.Scale = 1
		elapsed := now.Sub(st.flyStart)
		if elapsed < 0 {
			// Stagger delay not reached yet; park at the departure point.
			g.Position = st.from
			return
		}

		progress := math.Min(1, elapsed.Seconds()/FlightDuration.Seconds())
		t := smoothstep(progress)
		g.Position = quadBezier(st.from, st.control, dockBasePosition(st.slot), t)

		// The hard timeout guarantees completion even if progress
		// computation is ever starved by frame stalls.
		if progress >= 1 || elapsed > FlightTimeout {
			g.state = dockState{slot: st.slot}
		}

	case dockState:
		g.Scale = 1
		target := e.dockTarget(st.slot, g.Seed, gs)

		rate := DockEase
		if gs.Detected && gs.Label == gesture.LabelClosed {
			rate = DockEaseClosed
		}
		g.Position = easeToward(g.Position, target, rate, dt)
	}
}

// dockTarget computes the revolving ring position for a docked glyph, then
// applies the active gesture's perturbation.
func (e *Engine) dockTarget(slot dockSlot, seed float64, gs gesture.State) field.Vec3 {
	angle := slot.baseAngle + RevolveRate*e.sceneTime
	bob := BobAmp * math.Sin(e.sceneTime*BobFreq+seed*2*math.Pi)

	target := field.Vec3{
		X: slot.radius * math.Cos(angle),
		Y: slot.height + bob,
		Z: slot.radius * math.Sin(angle),
	}

	if !gs.Detected {
		return target
	}

	switch gs.Label {
	case gesture.LabelOpen:
		target.X *= OpenPushScale
		target.Z = target.Z*OpenPushScale - OpenPushBack

	case gesture.LabelSwipe:
		px, py := pointerToScene(gs.Pointer)
		dx := target.X - px
		dy := target.Y - py
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist < SwipeRadius {
			// Repulsion inversely proportional to distance.
			force := SwipeForce / math.Max(dist, 0.1)
			target.X += dx / math.Max(dist, 1e-6) * force
			target.Y += dy / math.Max(dist, 1e-6) * force
		}

	case gesture.LabelClosed:
		target.X *= ClusterScale
		target.Y = ClusterHeight + (target.Y-ClusterHeight)*ClusterScale
		target.Z *= ClusterScale
	}

	return target
}

// controlPointFor places the Bezier control point above and in front of the
// dock destination.
func controlPointFor(slot dockSlot) field.Vec3 {
	dock := dockBasePosition(slot)
	return field.Vec3{X: dock.X, Y: dock.Y + ControlRise, Z: dock.Z + ControlForward}
}

// dockBasePosition is the un-revolved ring position of a slot.
func dockBasePosition(slot dockSlot) field.Vec3 {
	return field.Vec3{
		X: slot.radius * math.Cos(slot.baseAngle),
		Y: slot.height,
		Z: slot.radius * math.Sin(slot.baseAngle),
	}
}

// pointerToScene maps the classifier's normalized pointer to scene
// coordinates, mirrored horizontally so the scene moves like a mirror.
func pointerToScene(p gesture.Point2D) (float64, float64) {
	return (0.5 - p.X) * 2 * field.Extent, (0.5 - p.Y) * 2 * field.Extent
}

// easeToward moves p exponentially toward target at the given rate.
func easeToward(p, target field.Vec3, rate, dt float64) field.Vec3 {
	f := 1 - math.Exp(-rate*dt)
	return field.Vec3{
		X: p.X + (target.X-p.X)*f,
		Y: p.Y + (target.Y-p.Y)*f,
		Z: p.Z + (target.Z-p.Z)*f,
	}
}

// quadBezier evaluates a quadratic Bezier curve at t in [0,1].
func quadBezier(a, c, b field.Vec3, t float64) field.Vec3 {
	u := 1 - t
	return field.Vec3{
		X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
		Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
		Z: u*u*a.Z + 2*u*t*c.Z + t*t*b.Z,
	}
}

// smoothstep is the cubic ease-in-out used for flight progress.
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}
