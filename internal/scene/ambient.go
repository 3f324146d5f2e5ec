package scene

import (
	"math"

	"github.com/renderix/reverie/internal/field"
)

func field3(x, y, z float64) field.Vec3 {
	return field.Vec3{X: x, Y: y, Z: z}
}

// Ambient cloud tuning.
const (
	// RippleAmp and RippleFreq drive the gentle resting surface ripple.
	RippleAmp  = 0.05
	RippleFreq = 2.2
	// RippleSpeed scales how fast the ripple travels.
	RippleSpeed = 0.9

	// EdgeRadius is the planar distance beyond which points count as cloud
	// edge and pick up curl-noise drift, softening the silhouette.
	EdgeRadius = 1.1
	// EdgeDriftAmp scales the curl drift at the edge.
	EdgeDriftAmp = 0.22
	// EdgeNoiseScale maps scene coordinates into noise space.
	EdgeNoiseScale = 0.9

	// ScatterExpand is the radial expansion factor at full disruption.
	ScatterExpand = 0.9
	// ScatterNoiseAmp is the noise displacement at full disruption.
	ScatterNoiseAmp = 0.8

	// ReadingPushback moves ambient points away in depth while reading.
	ReadingPushback = 1.6
	// ReadingJitterAmp and ReadingJitterSpeed give the receded cloud a
	// nervous shimmer.
	ReadingJitterAmp   = 0.04
	ReadingJitterSpeed = 3.0
)

// updateAmbient recomputes every ambient point position for this tick.
// Positions are functions of the immutable original anchor, the scene time
// and the scatter envelope, so a stalled frame never accumulates error.
func (e *Engine) updateAmbient(dt float64) {
	if e.reading {
		e.updateAmbientReading()
		return
	}

	t := e.sceneTime
	for i := range e.points {
		p := &e.points[i]
		orig := p.Original

		// Resting surface ripple.
		pos := orig
		pos.Z += RippleAmp *
			math.Sin(orig.X*RippleFreq+t*RippleSpeed) *
			math.Cos(orig.Y*RippleFreq*0.8+t*RippleSpeed*0.7)

		// Curl drift for edge points, so the silhouette stays soft.
		planar := math.Sqrt(orig.X*orig.X + orig.Y*orig.Y)
		if planar > EdgeRadius {
			edge := math.Min(1, planar-EdgeRadius)
			cx, cy, cz := curlNoise(
				orig.X*EdgeNoiseScale+t*0.15,
				orig.Y*EdgeNoiseScale,
				orig.Z*EdgeNoiseScale+p.Seed*10,
			)
			pos.X += cx * EdgeDriftAmp * edge
			pos.Y += cy * EdgeDriftAmp * edge
			pos.Z += cz * EdgeDriftAmp * edge
		}

		// Disruption blends toward a noise-scattered, radially expanded
		// position. The asymmetric envelope lives in updateScatter.
		if e.scatter > 0 {
			nx, ny, nz := curlNoise(
				orig.X*1.7+p.Seed*31,
				orig.Y*1.7+p.Seed*17,
				orig.Z*1.7,
			)
			scattered := field3(
				orig.X*(1+ScatterExpand)+nx*ScatterNoiseAmp,
				orig.Y*(1+ScatterExpand)+ny*ScatterNoiseAmp,
				orig.Z*(1+ScatterExpand)+nz*ScatterNoiseAmp,
			)
			pos.X += (scattered.X - pos.X) * e.scatter
			pos.Y += (scattered.Y - pos.Y) * e.scatter
			pos.Z += (scattered.Z - pos.Z) * e.scatter
		}

		p.Position = pos
	}
}

// updateAmbientReading pushes the cloud back in depth and jitters it while
// reading mode is active.
func (e *Engine) updateAmbientReading() {
	t := e.sceneTime
	for i := range e.points {
		p := &e.points[i]
		orig := p.Original

		jx := (valueNoise(p.Seed*73, t*ReadingJitterSpeed, 0) - 0.5) * 2 * ReadingJitterAmp
		jy := (valueNoise(p.Seed*73+11, t*ReadingJitterSpeed, 5) - 0.5) * 2 * ReadingJitterAmp

		p.Position = field3(orig.X+jx, orig.Y+jy, orig.Z-ReadingPushback)
	}
}
