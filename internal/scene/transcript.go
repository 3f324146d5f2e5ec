package scene

import (
	"strings"
	"time"
)

// SetTranscript applies a transcript change at the given time.
//
// If the new text continues the previous text (shares its prefix), only the
// appended suffix spawns new glyphs. A restore (scene reset with non-empty
// transcript) spawns the entire transcript once. Any other change respawns
// the full current text; if the transcript was edited non-append-only this
// can duplicate visible characters, a known tolerated limitation.
//
// After each spawn batch the oldest glyphs beyond MaxGlyphs are evicted in
// FIFO order.
func (e *Engine) SetTranscript(now time.Time, text string, restore bool) {
	switch {
	case restore:
		if text != "" {
			e.spawnBatch(now, text)
		}
	case strings.HasPrefix(text, e.transcript):
		e.spawnBatch(now, text[len(e.transcript):])
	default:
		e.spawnBatch(now, text)
	}

	e.transcript = text
	e.evictOverflow()
}

// Transcript returns the last transcript applied to the engine.
func (e *Engine) Transcript() string {
	return e.transcript
}

// spawnBatch creates one glyph per rune. Each glyph's dock slot comes from
// the global running character counter; the stagger delay comes from its
// index within this batch, so the phrase cascades.
func (e *Engine) spawnBatch(now time.Time, text string) {
	batchIndex := 0
	for _, r := range text {
		hold := holdTargetFor(e.charCounter)
		slot := slotFor(e.charCounter)
		e.charCounter++

		e.nextID++
		g := &Glyph{
			ID:   e.nextID,
			Char: r,
			// Materialize just below the hold row.
			Position: field3(hold.X, hold.Y-0.6, hold.Z),
			Scale:    0,
			Seed:     hash3(int64(e.nextID), 0, 0),
			state: spawnState{
				spawnedAt:  now,
				hold:       hold,
				startDelay: time.Duration(batchIndex) * StaggerStep,
				slot:       slot,
			},
		}
		e.glyphs = append(e.glyphs, g)
		batchIndex++
	}
}

// evictOverflow drops the oldest glyphs beyond the capacity cap. Glyph
// slices are append-only, so the front of the slice is always the oldest.
func (e *Engine) evictOverflow() {
	if len(e.glyphs) <= MaxGlyphs {
		return
	}
	excess := len(e.glyphs) - MaxGlyphs
	e.glyphs = append([]*Glyph(nil), e.glyphs[excess:]...)
}
