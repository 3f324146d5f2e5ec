package scene

import "math"

// Hash-based value noise and a curl field derived from it. The ambient
// cloud only needs a cheap, smooth, divergence-free-looking drift, not a
// full simplex implementation.

// hash3 maps an integer lattice point to a pseudo-random value in [0,1).
func hash3(x, y, z int64) float64 {
	h := uint64(x)*0x9e3779b97f4a7c15 ^ uint64(y)*0xbf58476d1ce4e5b9 ^ uint64(z)*0x94d049bb133111eb
	h ^= h >> 31
	h *= 0xd6e8feb86659fd93
	h ^= h >> 32
	return float64(h%(1<<20)) / float64(1<<20)
}

// smooth is the classic cubic fade for lattice interpolation.
func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// valueNoise is trilinear-interpolated lattice noise in [0,1).
func valueNoise(x, y, z float64) float64 {
	xi, yi, zi := math.Floor(x), math.Floor(y), math.Floor(z)
	xf, yf, zf := smooth(x-xi), smooth(y-yi), smooth(z-zi)
	ix, iy, iz := int64(xi), int64(yi), int64(zi)

	lerp := func(a, b, t float64) float64 { return a + (b-a)*t }

	c000 := hash3(ix, iy, iz)
	c100 := hash3(ix+1, iy, iz)
	c010 := hash3(ix, iy+1, iz)
	c110 := hash3(ix+1, iy+1, iz)
	c001 := hash3(ix, iy, iz+1)
	c101 := hash3(ix+1, iy, iz+1)
	c011 := hash3(ix, iy+1, iz+1)
	c111 := hash3(ix+1, iy+1, iz+1)

	x00 := lerp(c000, c100, xf)
	x10 := lerp(c010, c110, xf)
	x01 := lerp(c001, c101, xf)
	x11 := lerp(c011, c111, xf)

	y0 := lerp(x00, x10, yf)
	y1 := lerp(x01, x11, yf)

	return lerp(y0, y1, zf)
}

// curlNoise approximates the curl of a vector potential built from three
// offset noise fields, by central differences. The result is a smooth
// swirling direction with near-zero divergence, bounded roughly to [-1,1]
// per axis.
func curlNoise(x, y, z float64) (float64, float64, float64) {
	const eps = 0.1

	// Three decorrelated potentials.
	p1 := func(x, y, z float64) float64 { return valueNoise(x, y, z) }
	p2 := func(x, y, z float64) float64 { return valueNoise(x+31.7, y+57.3, z+12.9) }
	p3 := func(x, y, z float64) float64 { return valueNoise(x-47.2, y+19.1, z-88.4) }

	dp3dy := (p3(x, y+eps, z) - p3(x, y-eps, z)) / (2 * eps)
	dp2dz := (p2(x, y, z+eps) - p2(x, y, z-eps)) / (2 * eps)
	dp1dz := (p1(x, y, z+eps) - p1(x, y, z-eps)) / (2 * eps)
	dp3dx := (p3(x+eps, y, z) - p3(x-eps, y, z)) / (2 * eps)
	dp2dx := (p2(x+eps, y, z) - p2(x-eps, y, z)) / (2 * eps)
	dp1dy := (p1(x, y+eps, z) - p1(x, y-eps, z)) / (2 * eps)

	cx := dp3dy - dp2dz
	cy := dp1dz - dp3dx
	cz := dp2dx - dp1dy

	return clamp(cx, -1, 1), clamp(cy, -1, 1), clamp(cz, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
