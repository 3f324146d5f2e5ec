package scene

import (
	"testing"
	"time"
)

func glyphString(e *Engine) string {
	var s []rune
	for _, g := range e.glyphs {
		s = append(s, g.Char)
	}
	return string(s)
}

func TestSetTranscript_AppendSpawnsOnlySuffix(t *testing.T) {
	e := NewEngine()
	t0 := time.Unix(100, 0)

	e.SetTranscript(t0, "HELLO", false)
	if e.GlyphCount() != 5 {
		t.Fatalf("glyphs = %d after initial transcript, want 5", e.GlyphCount())
	}

	e.SetTranscript(t0.Add(time.Second), "HELLO WORLD", false)
	if e.GlyphCount() != 11 {
		t.Errorf("glyphs = %d after append, want 11 (5 + 6 for \" WORLD\")", e.GlyphCount())
	}
	if got := glyphString(e); got != "HELLO WORLD" {
		t.Errorf("glyph chars = %q, want %q", got, "HELLO WORLD")
	}
}

func TestSetTranscript_UnchangedTextSpawnsNothing(t *testing.T) {
	e := NewEngine()
	t0 := time.Unix(100, 0)

	e.SetTranscript(t0, "SAME", false)
	e.SetTranscript(t0.Add(time.Second), "SAME", false)

	if e.GlyphCount() != 4 {
		t.Errorf("glyphs = %d after unchanged transcript, want 4", e.GlyphCount())
	}
}

func TestSetTranscript_NonPrefixChangeRespawnsFullText(t *testing.T) {
	e := NewEngine()
	t0 := time.Unix(100, 0)

	e.SetTranscript(t0, "ABC", false)
	e.SetTranscript(t0.Add(time.Second), "XYZ", false)

	// Full respawn without deduplication is the documented behavior.
	if e.GlyphCount() != 6 {
		t.Errorf("glyphs = %d after non-prefix change, want 6", e.GlyphCount())
	}
}

func TestSetTranscript_RestoreSpawnsWholeTranscriptOnce(t *testing.T) {
	e := NewEngine()
	t0 := time.Unix(100, 0)

	e.SetTranscript(t0, "OLD SCENE", false)
	e.Reset()
	if e.GlyphCount() != 0 {
		t.Fatalf("glyphs = %d after reset, want 0", e.GlyphCount())
	}

	e.SetTranscript(t0.Add(time.Second), "RESTORED", true)
	if e.GlyphCount() != 8 {
		t.Errorf("glyphs = %d after restore, want 8", e.GlyphCount())
	}

	// Re-applying the same transcript afterward adds nothing.
	e.SetTranscript(t0.Add(2*time.Second), "RESTORED", false)
	if e.GlyphCount() != 8 {
		t.Errorf("glyphs = %d after re-apply, want 8", e.GlyphCount())
	}
}

func TestSetTranscript_RestoreWithEmptyTranscriptSpawnsNothing(t *testing.T) {
	e := NewEngine()
	e.SetTranscript(time.Unix(100, 0), "", true)
	if e.GlyphCount() != 0 {
		t.Errorf("glyphs = %d for empty restore, want 0", e.GlyphCount())
	}
}

func TestSetTranscript_CapEvictsOldestFIFO(t *testing.T) {
	e := NewEngine()
	t0 := time.Unix(100, 0)

	long := make([]rune, MaxGlyphs+40)
	for i := range long {
		long[i] = rune('a' + i%26)
	}
	e.SetTranscript(t0, string(long), false)

	if e.GlyphCount() != MaxGlyphs {
		t.Fatalf("glyphs = %d after overflow, want %d", e.GlyphCount(), MaxGlyphs)
	}

	// The survivors must be the newest glyphs: IDs strictly increasing and
	// the first 40 evicted.
	first := e.glyphs[0]
	if first.ID != 41 {
		t.Errorf("oldest surviving glyph ID = %d, want 41", first.ID)
	}
	for i := 1; i < len(e.glyphs); i++ {
		if e.glyphs[i].ID <= e.glyphs[i-1].ID {
			t.Fatal("glyph order not FIFO after eviction")
		}
	}
}

func TestGlyphIDsAreUnique(t *testing.T) {
	e := NewEngine()
	t0 := time.Unix(100, 0)

	e.SetTranscript(t0, "AAAA", false)
	e.SetTranscript(t0.Add(time.Second), "AAAAAAAA", false)

	seen := map[uint64]bool{}
	for _, g := range e.glyphs {
		if seen[g.ID] {
			t.Fatalf("duplicate glyph ID %d", g.ID)
		}
		seen[g.ID] = true
	}
}
