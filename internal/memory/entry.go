// Package memory models saved scene snapshots and implements voice search
// scoring and spatial layout over them.
package memory

import (
	"time"

	"github.com/renderix/reverie/internal/field"
)

// Sentiment is the label produced by the external sentiment analyzer.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// VoiceSegment is one finalized speech recognition result captured while a
// memory was being recorded.
type VoiceSegment struct {
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry is a saved snapshot of scene state. Everything except MatchScore is
// immutable after creation; MatchScore is recomputed transiently on every
// search-query change and is not part of the entry's identity.
type Entry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Transcript string         `json:"transcript"`
	Sentiment  Sentiment      `json:"sentiment"`
	ImageRef   string         `json:"imageRef"` // resolvable to image bytes via the blob store
	Density    int            `json:"density"`  // point cloud target count at save time
	Palette    [3]field.Color `json:"palette"`
	Segments   []VoiceSegment `json:"segments"`

	MatchScore float64 `json:"matchScore"`
}
