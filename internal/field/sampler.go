// Package field samples a decoded image into a depth-shaded point cloud
// using center-biased rejection sampling.
package field

import (
	"image"
	"math"
	"math/rand"
	"sync"
)

// Sampling constants.
const (
	// Extent is the half-width of the scene region the cloud is spread over.
	Extent = 1.5
	// DepthRange is the total z spread between the darkest and brightest pixels.
	DepthRange = 3.0
	// BaseKeepChance is the probability that a peripheral pixel survives
	// rejection anyway, keeping the edges sparse rather than empty.
	BaseKeepChance = 0.15
	// AttemptsPerPoint bounds the sampling loop at 200 draws per target point.
	AttemptsPerPoint = 200
	// alphaCutoff is the 8-bit alpha at or below which a pixel is transparent.
	alphaCutoff = 10
)

// Vec3 is a position in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color is an RGB color with channels in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Point is one sample of the loaded image. Original is the immutable anchor
// assigned at sampling time; Position is mutated every tick by the lifecycle
// engine. Seed is a per-point random in [0,1) used to decorrelate animation.
type Point struct {
	Position Vec3    `json:"position"`
	Original Vec3    `json:"-"`
	Color    Color   `json:"color"`
	Seed     float64 `json:"-"`
}

// Sample draws up to n points from img. Pixels are drawn uniformly at
// random; a pixel whose center-distance falloff (distance^1.5) exceeds a
// fresh random draw is rejected unless it wins the base keep chance, and
// transparent pixels are always rejected. Accepted pixels get a depth from
// their luminance: brighter pixels sit closer to the viewer.
//
// The loop stops after collecting n points or exhausting 200×n attempts.
// A fully rejected image (e.g. all transparent) yields exactly one white
// fallback point at the origin, so the cloud is never empty.
//
// Sampling is intentionally not deterministic: resampling the same image
// gives a different but statistically similar cloud.
func Sample(img image.Image, n int) []Point {
	if img == nil || n <= 0 {
		return fallbackCloud()
	}

	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return fallbackCloud()
	}

	cx := float64(w) / 2
	cy := float64(h) / 2
	// Normalize center distance by the half-diagonal so corners sit at 1.
	halfDiag := math.Sqrt(cx*cx + cy*cy)

	// Uniform world scale preserving the image aspect ratio.
	scale := 2 * Extent / float64(max(w, h))

	points := make([]Point, 0, n)
	budget := AttemptsPerPoint * n

	for attempt := 0; attempt < budget && len(points) < n; attempt++ {
		px := rand.Intn(w)
		py := rand.Intn(h)

		dx := float64(px) + 0.5 - cx
		dy := float64(py) + 0.5 - cy
		dist := math.Sqrt(dx*dx+dy*dy) / halfDiag

		// Center-biased rejection with a base survival chance.
		falloff := math.Pow(dist, 1.5)
		if falloff > rand.Float64() && rand.Float64() > BaseKeepChance {
			continue
		}

		r16, g16, b16, a16 := img.At(bounds.Min.X+px, bounds.Min.Y+py).RGBA()
		if a16>>8 <= alphaCutoff {
			continue
		}

		r := float64(r16) / 0xffff
		g := float64(g16) / 0xffff
		b := float64(b16) / 0xffff

		// Perceptual luminance maps affinely to depth, brighter closer.
		lum := 0.2126*r + 0.7152*g + 0.0722*b
		z := (lum - 0.5) * DepthRange

		pos := Vec3{
			X: (float64(px) + 0.5 - cx) * scale,
			Y: (cy - float64(py) - 0.5) * scale,
			Z: z,
		}

		points = append(points, Point{
			Position: pos,
			Original: pos,
			Color:    Color{R: r, G: g, B: b},
			Seed:     rand.Float64(),
		})
	}

	if len(points) == 0 {
		return fallbackCloud()
	}
	return points
}

// fallbackCloud is the single white origin point emitted when nothing could
// be sampled.
func fallbackCloud() []Point {
	return []Point{{
		Position: Vec3{},
		Original: Vec3{},
		Color:    Color{R: 1, G: 1, B: 1},
		Seed:     rand.Float64(),
	}}
}

// Loader serializes concurrent sampling requests so that when a new image
// arrives before the previous sampling finishes, only the newest request's
// result is delivered.
type Loader struct {
	mu      sync.Mutex
	gen     uint64
	applied uint64
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load samples img in the background and calls deliver with the result.
// A result is dropped if a newer request's result has already been
// delivered, so the newest request always ends up applied last. deliver
// runs on the sampling goroutine with the loader lock held.
func (l *Loader) Load(img image.Image, n int, deliver func([]Point)) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	go func() {
		points := Sample(img, n)

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen < l.applied {
			return
		}
		l.applied = gen
		deliver(points)
	}()
}
