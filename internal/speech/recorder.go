package speech

import (
	"log"
	"sync"
	"time"

	"github.com/renderix/reverie/internal/capture"
)

// DefaultChunkInterval is how often the audio buffer is sealed off and
// handed to the sentiment analyzer.
const DefaultChunkInterval = 4 * time.Second

// RecorderConfig holds recording controller settings.
type RecorderConfig struct {
	ChunkInterval time.Duration
}

// DefaultRecorderConfig returns a RecorderConfig with default values.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		ChunkInterval: DefaultChunkInterval,
	}
}

// Recorder owns the microphone while recording is active. It keeps a
// streaming recognition session alive (restarting it if it terminates on
// its own), rotates the audio buffer on a fixed interval, and dispatches
// each sealed chunk to the sentiment analyzer without blocking. Results
// arrive on the event queue for the render loop to drain.
type Recorder struct {
	audio      capture.AudioCapture
	recognizer Recognizer
	analyzer   SentimentAnalyzer
	queue      *Queue
	interval   time.Duration

	mu        sync.Mutex
	recording bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewRecorder creates a Recorder. Events are published to queue.
func NewRecorder(cfg RecorderConfig, audio capture.AudioCapture, recognizer Recognizer, analyzer SentimentAnalyzer, queue *Queue) *Recorder {
	interval := cfg.ChunkInterval
	if interval <= 0 {
		interval = DefaultChunkInterval
	}
	return &Recorder{
		audio:      audio,
		recognizer: recognizer,
		analyzer:   analyzer,
		queue:      queue,
		interval:   interval,
	}
}

// IsRecording reports whether a recording is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start opens the audio device, starts a recognition session, and begins
// the chunk rotation timer. Starting an active recorder is a no-op.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return nil
	}

	if err := r.audio.Open(); err != nil {
		r.mu.Unlock()
		return err
	}

	r.recording = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	if err := r.recognizer.Start(r.publishTranscript, r.onSessionEnd); err != nil {
		r.mu.Lock()
		r.recording = false
		close(r.stopCh)
		r.mu.Unlock()
		r.audio.Close()
		return err
	}

	r.wg.Add(1)
	go r.chunkLoop(stopCh)

	return nil
}

// Stop halts the recognition session and the chunk timer and releases the
// audio device. It is synchronous and idempotent.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return
	}
	r.recording = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
	r.recognizer.Stop()

	if err := r.audio.Close(); err != nil {
		log.Printf("recorder: closing audio capture: %v", err)
	}
}

func (r *Recorder) publishTranscript(ev TranscriptEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	r.queue.Push(ev)
}

// onSessionEnd fires when the recognition session terminates on its own.
// While recording is active at least one session must be listening, so the
// session is restarted immediately. The restart happens under the lock so
// it serializes with Stop: either it wins and Stop tears the new session
// down, or Stop wins and the recording flag blocks the restart. No session
// can come alive after Stop returns.
func (r *Recorder) onSessionEnd() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}

	if err := r.recognizer.Start(r.publishTranscript, r.onSessionEnd); err != nil {
		log.Printf("recorder: restarting recognition session: %v", err)
	}
}

func (r *Recorder) chunkLoop(stopCh chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.rotateChunk()
		}
	}
}

// rotateChunk seals off the buffered audio and dispatches it to the
// analyzer in the background. Analysis failures mean "no new data this
// cycle": logged and dropped, previous sentiment stands.
func (r *Recorder) rotateChunk() {
	chunk, err := r.audio.ReadChunk()
	if err != nil {
		log.Printf("recorder: reading audio chunk: %v", err)
		return
	}
	if len(chunk) == 0 {
		return
	}

	go func() {
		result, err := r.analyzer.Analyze(chunk)
		if err != nil {
			log.Printf("recorder: sentiment analysis: %v", err)
			return
		}
		r.queue.Push(SentimentEvent{Result: result, Timestamp: time.Now()})
	}()
}
