package memory

import (
	"fmt"
	"math"
	"testing"
	"time"
)

func TestPlace_GallerySpiral(t *testing.T) {
	var entries []*Entry
	for i := 0; i < 12; i++ {
		entries = append(entries, entry(fmt.Sprintf("m%d", i), "text", time.Duration(i)*time.Minute))
	}

	placements := Place(entries, false)

	if len(placements) != len(entries) {
		t.Fatalf("placements = %d, want %d", len(placements), len(entries))
	}

	angles := map[int64]bool{}
	prevRadius := -1.0
	for i, e := range entries {
		p := placements[e.ID]

		// Radius in the gallery plane must grow strictly with index.
		radius := GalleryBaseRadius + float64(i)*GalleryRadiusStep
		gotRadius := math.Sqrt(p.X*p.X + (p.Y/0.6)*(p.Y/0.6))
		if math.Abs(gotRadius-radius) > 1e-9 {
			t.Errorf("entry %d radius = %f, want %f", i, gotRadius, radius)
		}
		if radius <= prevRadius {
			t.Errorf("entry %d radius %f not strictly increasing", i, radius)
		}
		prevRadius = radius

		// Distinct angular positions, bucketed to a milliradian.
		angle := math.Atan2(p.Y/0.6, p.X)
		key := int64(angle * 1000)
		if angles[key] {
			t.Errorf("entry %d angular position collides", i)
		}
		angles[key] = true
	}
}

func TestPlace_FocusRowAlternatesCenterOut(t *testing.T) {
	entries := []*Entry{
		entry("best", "x", time.Minute),
		entry("second", "x", time.Minute),
		entry("third", "x", time.Minute),
		entry("fourth", "x", time.Minute),
	}
	for i, e := range entries {
		e.MatchScore = 1.0 - float64(i)*0.1
	}

	placements := Place(entries, true)

	best := placements["best"]
	if best.X != 0 {
		t.Errorf("best match x = %f, want 0 (horizontal center)", best.X)
	}
	if placements["second"].X != FocusSpacing {
		t.Errorf("second x = %f, want +%f", placements["second"].X, FocusSpacing)
	}
	if placements["third"].X != -FocusSpacing {
		t.Errorf("third x = %f, want -%f", placements["third"].X, FocusSpacing)
	}
	if placements["fourth"].X != 2*FocusSpacing {
		t.Errorf("fourth x = %f, want +%f", placements["fourth"].X, 2*FocusSpacing)
	}

	// Center slot is closest and highest.
	for _, id := range []string{"second", "third", "fourth"} {
		if placements[id].Z >= best.Z {
			t.Errorf("%s depth %f not behind center %f", id, placements[id].Z, best.Z)
		}
		if placements[id].Y >= best.Y {
			t.Errorf("%s height %f not below center %f", id, placements[id].Y, best.Y)
		}
	}
}

func TestPlace_NonMatchesScatterIntoBackgroundBand(t *testing.T) {
	entries := []*Entry{
		entry("hit", "x", time.Minute),
		entry("miss1", "x", time.Minute),
		entry("miss2", "x", time.Minute),
	}
	entries[0].MatchScore = 0.8

	placements := Place(entries, true)

	for _, id := range []string{"miss1", "miss2"} {
		p := placements[id]
		if p.Z > BackMinZ {
			t.Errorf("%s z = %f, want at or behind %f", id, p.Z, BackMinZ)
		}
		planar := math.Hypot(p.X, p.Y/0.45)
		if planar < BackMinRadius || planar > BackMaxRadius {
			t.Errorf("%s planar radius = %f, want within [%f, %f]", id, planar, BackMinRadius, BackMaxRadius)
		}
	}

	// The focused memory stays up front, well clear of the band.
	if placements["hit"].Z < 0 {
		t.Errorf("focused memory z = %f, want in front", placements["hit"].Z)
	}
}

func TestPlace_ActiveSearchWithoutHitsUsesGallery(t *testing.T) {
	entries := []*Entry{
		entry("a", "x", time.Minute),
		entry("b", "x", 2*time.Minute),
	}

	withSearch := Place(entries, true)
	noSearch := Place(entries, false)

	for _, e := range entries {
		if withSearch[e.ID] != noSearch[e.ID] {
			t.Errorf("entry %s moved despite zero hits everywhere", e.ID)
		}
	}
}

func TestPlace_StableForSameInput(t *testing.T) {
	entries := []*Entry{
		entry("a", "x", time.Minute),
		entry("b", "x", 2*time.Minute),
		entry("c", "x", 3*time.Minute),
	}

	first := Place(entries, false)
	second := Place(entries, false)

	for _, e := range entries {
		if first[e.ID] != second[e.ID] {
			t.Errorf("entry %s placement not stable across identical calls", e.ID)
		}
	}
}
