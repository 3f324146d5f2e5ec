package memory

import (
	"math"

	"github.com/renderix/reverie/internal/field"
)

// Layout tuning.
const (
	// GoldenAngle (~137.5°) spreads spiral placements evenly.
	GoldenAngle = math.Pi * (3 - 2.2360679774997896) // pi * (3 - sqrt(5))

	// Focus row: matched memories alternate center-out.
	FocusSpacing   = 1.1  // x distance between adjacent slots
	FocusY         = 0.4  // height of slot 0
	FocusDropStep  = 0.12 // height lost per slot away from center
	FocusZ         = 1.2  // depth of slot 0, closest to the viewer
	FocusBackStep  = 0.25 // depth lost per slot away from center
	FocusMinHeight = -0.6

	// Background band for non-matching memories during a search.
	BackMinRadius = 3.2
	BackMaxRadius = 5.4
	BackMinZ      = -4.5
	BackZSpread   = 2.0

	// Gallery spiral used when no search is active.
	GalleryBaseRadius = 0.7
	GalleryRadiusStep = 0.22
	GalleryZ          = -0.8
)

// Place computes a 3-D position per memory. entries must already be ranked
// (see Rank); active reports whether a search is in effect.
//
// With an active search and at least one positive score, matched memories
// occupy an alternating center-out row (best at the center, each further
// slot slightly lower and deeper) and the rest scatter into a deep
// background band on a golden-angle spiral. Otherwise all memories form a
// single expanding golden-angle gallery spiral, which only changes when the
// memory set size or the query state changes.
func Place(entries []*Entry, active bool) map[string]field.Vec3 {
	placements := make(map[string]field.Vec3, len(entries))

	anyPositive := false
	for _, e := range entries {
		if e.MatchScore > 0 {
			anyPositive = true
			break
		}
	}

	if !active || !anyPositive {
		for i, e := range entries {
			placements[e.ID] = gallerySpot(i)
		}
		return placements
	}

	matchRank := 0
	scatterRank := 0
	for _, e := range entries {
		if e.MatchScore > 0 {
			placements[e.ID] = focusSpot(matchRank)
			matchRank++
		} else {
			placements[e.ID] = backgroundSpot(e.ID, scatterRank)
			scatterRank++
		}
	}
	return placements
}

// focusSpot maps a match rank to an alternating center-out slot:
// rank 0 → slot 0, rank 1 → +1, rank 2 → −1, rank 3 → +2, …
func focusSpot(rank int) field.Vec3 {
	var slot int
	if rank > 0 {
		slot = (rank + 1) / 2
		if rank%2 == 0 {
			slot = -slot
		}
	}

	away := math.Abs(float64(slot))
	y := FocusY - away*FocusDropStep
	if y < FocusMinHeight {
		y = FocusMinHeight
	}

	return field.Vec3{
		X: float64(slot) * FocusSpacing,
		Y: y,
		Z: FocusZ - away*FocusBackStep,
	}
}

// backgroundSpot scatters a non-matching memory into the deep band. The
// golden-angle step gives even angular coverage; the per-ID hash picks a
// stable pseudo-random radius and depth inside wide bounds so the band
// never collides with the focused row.
func backgroundSpot(id string, rank int) field.Vec3 {
	angle := float64(rank) * GoldenAngle
	h1 := idHash(id)
	h2 := idHash(id + "#z")

	radius := BackMinRadius + h1*(BackMaxRadius-BackMinRadius)
	return field.Vec3{
		X: radius * math.Cos(angle),
		Y: radius * math.Sin(angle) * 0.45,
		Z: BackMinZ - h2*BackZSpread,
	}
}

// gallerySpot is the stable no-search arrangement: golden-angle angular
// step with a linearly growing radius.
func gallerySpot(index int) field.Vec3 {
	angle := float64(index) * GoldenAngle
	radius := GalleryBaseRadius + float64(index)*GalleryRadiusStep

	return field.Vec3{
		X: radius * math.Cos(angle),
		Y: radius * math.Sin(angle) * 0.6,
		Z: GalleryZ,
	}
}

// idHash maps an ID string to a stable value in [0,1).
func idHash(id string) float64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(id); i++ {
		h ^= uint64(id[i])
		h *= 1099511628211
	}
	return float64(h%(1<<20)) / float64(1<<20)
}
