// Package speech defines the collaborator boundary for speech-to-text and
// sentiment analysis, and the recording controller that drives both. The
// engines themselves are external black boxes; this package only shapes
// their event streams for the render loop.
package speech

import (
	"sync"
	"time"

	"github.com/renderix/reverie/internal/memory"
)

// SentimentResult is the output of the external sentiment analyzer for one
// sealed audio chunk.
type SentimentResult struct {
	Label      memory.Sentiment `json:"label"`
	Confidence float64          `json:"confidence"`
}

// Unavailable reports whether the result signals "analysis unavailable"
// rather than a detected neutral. Such a result must not overwrite a prior
// non-neutral label.
func (r SentimentResult) Unavailable() bool {
	return r.Label == memory.SentimentNeutral && r.Confidence == 0
}

// Event is a message pushed onto the event queue by background speech work
// and applied to scene state once per render tick.
type Event interface {
	eventTime() time.Time
}

// TranscriptEvent is a speech recognition result. Interim events
// (IsFinal=false) overwrite the live transcript; final events append a
// permanent voice segment and clear the interim buffer.
type TranscriptEvent struct {
	IsFinal   bool
	Text      string
	Timestamp time.Time
}

func (e TranscriptEvent) eventTime() time.Time { return e.Timestamp }

// SentimentEvent carries the analyzer's verdict for one audio chunk.
type SentimentEvent struct {
	Result    SentimentResult
	Timestamp time.Time
}

func (e SentimentEvent) eventTime() time.Time { return e.Timestamp }

// Recognizer is a streaming speech-to-text session factory. Start opens a
// long-lived session delivering events through onEvent; onEnd fires when
// the session terminates for any reason other than Stop, and is never
// invoked from inside Start itself.
type Recognizer interface {
	Start(onEvent func(TranscriptEvent), onEnd func()) error
	Stop()
}

// SentimentAnalyzer classifies the emotional tone of a sealed audio chunk.
type SentimentAnalyzer interface {
	Analyze(chunk []byte) (SentimentResult, error)
}

// MockRecognizer is a scriptable Recognizer for tests. Sessions are started
// synchronously; tests drive them with Emit and EndSession.
type MockRecognizer struct {
	mu      sync.Mutex
	onEvent func(TranscriptEvent)
	onEnd   func()
	active  bool

	StartCount int
	StopCount  int
	StartErr   error
}

func (m *MockRecognizer) Start(onEvent func(TranscriptEvent), onEnd func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartCount++
	if m.StartErr != nil {
		return m.StartErr
	}
	m.onEvent = onEvent
	m.onEnd = onEnd
	m.active = true
	return nil
}

func (m *MockRecognizer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCount++
	m.active = false
}

// Emit delivers a transcript event to the current session, if any.
func (m *MockRecognizer) Emit(ev TranscriptEvent) {
	m.mu.Lock()
	cb := m.onEvent
	active := m.active
	m.mu.Unlock()

	if active && cb != nil {
		cb(ev)
	}
}

// EndSession simulates the session terminating on its own.
func (m *MockRecognizer) EndSession() {
	m.mu.Lock()
	cb := m.onEnd
	active := m.active
	m.active = false
	m.mu.Unlock()

	if active && cb != nil {
		cb()
	}
}

// Active reports whether a session is currently running.
func (m *MockRecognizer) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// MockAnalyzer is a SentimentAnalyzer returning a fixed result.
type MockAnalyzer struct {
	mu     sync.Mutex
	Result SentimentResult
	Err    error

	calls [][]byte
}

func (m *MockAnalyzer) Analyze(chunk []byte) (SentimentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, chunk)
	if m.Err != nil {
		return SentimentResult{}, m.Err
	}
	return m.Result, nil
}

// Calls returns the chunks analyzed so far.
func (m *MockAnalyzer) Calls() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.calls))
	copy(out, m.calls)
	return out
}
