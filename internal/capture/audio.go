package capture

import (
	"errors"
	"sync"
)

// ErrAudioNotOpen is returned when reading from an audio capture that is
// not open.
var ErrAudioNotOpen = errors.New("audio capture is not open")

// AudioCapture defines the interface for microphone capture. The concrete
// device backend lives outside the core; the recording controller only
// needs to open the stream, seal off buffered chunks, and release it.
type AudioCapture interface {
	Open() error
	Close() error
	// ReadChunk seals off the audio buffered since the previous call and
	// returns it. An empty chunk is valid (silence).
	ReadChunk() ([]byte, error)
}

// MockAudioCapture is an in-memory AudioCapture for tests. It plays back
// queued chunks and counts open/close calls so tests can verify the
// acquire/release discipline around stop/start cycles.
type MockAudioCapture struct {
	mu     sync.Mutex
	open   bool
	chunks [][]byte
	index  int

	OpenCount  int
	CloseCount int
}

// NewMockAudioCapture creates a MockAudioCapture over the given chunks.
func NewMockAudioCapture(chunks [][]byte) *MockAudioCapture {
	return &MockAudioCapture{chunks: chunks}
}

func (a *MockAudioCapture) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.open = true
	a.OpenCount++
	return nil
}

func (a *MockAudioCapture) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open {
		a.CloseCount++
	}
	a.open = false
	return nil
}

func (a *MockAudioCapture) ReadChunk() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.open {
		return nil, ErrAudioNotOpen
	}

	if a.index >= len(a.chunks) {
		return []byte{}, nil
	}

	chunk := a.chunks[a.index]
	a.index++
	return chunk, nil
}

// IsOpen reports whether the capture is currently open.
func (a *MockAudioCapture) IsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open
}
