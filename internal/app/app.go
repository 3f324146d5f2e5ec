// Package app wires the capture, detection, scene and speech components
// into the running application and owns the shared state between them.
package app

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for uploaded images
	_ "image/png"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/renderix/reverie/internal/blob"
	"github.com/renderix/reverie/internal/capture"
	"github.com/renderix/reverie/internal/detector"
	"github.com/renderix/reverie/internal/field"
	"github.com/renderix/reverie/internal/gesture"
	"github.com/renderix/reverie/internal/memory"
	"github.com/renderix/reverie/internal/scene"
	"github.com/renderix/reverie/internal/speech"
	"github.com/renderix/reverie/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the detection poll rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the poll rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is how long without motion before dropping back to idle.
	IdleTimeoutMs = 2000
	// DefaultTickInterval is the render tick period (~30 ticks/sec).
	DefaultTickInterval = 33 * time.Millisecond
	// DefaultPointTarget is the point cloud size sampled from a loaded image.
	DefaultPointTarget = 1800
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Blobs        *blob.Store
	CameraID     int
	MotionThresh float64
	PointTarget  int
	TickInterval time.Duration
}

// App orchestrates the detection poll loop, the render tick loop, the
// recording controller and the save/restore operations. GestureState and
// the scene are guarded by a single mutex; each is replaced or advanced
// wholesale, never partially, so readers always observe a consistent tick.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	classifier *gesture.Classifier
	engine     *scene.Engine
	loader     *field.Loader
	queue      *speech.Queue
	recorder   *speech.Recorder

	mu           sync.RWMutex
	gestureState gesture.State
	enabled      bool
	finalText    string
	interim      string
	sentiment    memory.Sentiment
	segments     []memory.VoiceSegment
	imageRef     string
	query        string
	placements   map[string]field.Vec3

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new App instance with the given configuration. The
// recording controller is attached separately via SetRecorder because its
// collaborators (recognizer, analyzer) come from outside the core.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}
	if config.PointTarget <= 0 {
		config.PointTarget = DefaultPointTarget
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		classifier: gesture.NewClassifier(gesture.DefaultConfig()),
		engine:     scene.NewEngine(),
		loader:     field.NewLoader(),
		queue:      speech.NewQueue(),
		sentiment:  memory.SentimentNeutral,
		placements: map[string]field.Vec3{},
	}
	a.gestureState = a.classifier.Classify(nil, time.Now())

	// Try MediaPipe first, fall back to the mock detector.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera, for tests driving recorded frames.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetRecorder attaches the recording controller. It must publish to Queue().
func (a *App) SetRecorder(r *speech.Recorder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorder = r
}

// Queue returns the speech event queue drained by the render loop.
func (a *App) Queue() *speech.Queue {
	return a.queue
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	if !enabled {
		// Detection off means no hand: classify a nil frame so the
		// published state drops back to idle immediately.
		a.gestureState = a.classifier.Classify(nil, time.Now())
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// GestureState returns the latest classifier output.
func (a *App) GestureState() gesture.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gestureState
}

// SetReadingMode toggles reading mode on the scene.
func (a *App) SetReadingMode(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.SetReadingMode(on)
}

// StartRecording begins a fresh voice session: transcript, segments and
// sentiment reset, then the recorder acquires the microphone.
func (a *App) StartRecording() error {
	a.mu.Lock()
	r := a.recorder
	a.finalText = ""
	a.interim = ""
	a.segments = nil
	a.sentiment = memory.SentimentNeutral
	a.mu.Unlock()

	if r == nil {
		return fmt.Errorf("no recorder attached")
	}
	return r.Start()
}

// StopRecording stops the voice session. Safe to call when not recording.
func (a *App) StopRecording() {
	a.mu.RLock()
	r := a.recorder
	a.mu.RUnlock()

	if r != nil {
		r.Stop()
	}
}

// IsRecording reports whether a voice session is active.
func (a *App) IsRecording() bool {
	a.mu.RLock()
	r := a.recorder
	a.mu.RUnlock()
	return r != nil && r.IsRecording()
}

// Transcript returns the live transcript: finalized text plus the interim
// tail.
func (a *App) Transcript() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.displayTranscript()
}

// displayTranscript joins finalized text and interim. Callers hold a.mu.
func (a *App) displayTranscript() string {
	if a.interim == "" {
		return a.finalText
	}
	if a.finalText == "" {
		return a.interim
	}
	return a.finalText + " " + a.interim
}

// LoadImage samples a point cloud from img in the background and installs
// it when ready. A newer load always wins over a slower older one.
func (a *App) LoadImage(img image.Image) {
	a.mu.RLock()
	target := a.config.PointTarget
	a.mu.RUnlock()

	a.loader.Load(img, target, func(points []field.Point) {
		a.mu.Lock()
		a.engine.SetCloud(points)
		a.mu.Unlock()
	})
}

// UploadImage decodes raw image bytes, stores them in the blob store and
// kicks off sampling. On decode failure the previous cloud is kept and the
// error is returned to the caller.
func (a *App) UploadImage(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	ref := uuid.New().String()
	if a.config.Blobs != nil {
		if err := a.config.Blobs.Put(ref, data); err != nil {
			return "", fmt.Errorf("storing image: %w", err)
		}
	}

	a.mu.Lock()
	a.imageRef = ref
	a.mu.Unlock()

	a.LoadImage(img)
	return ref, nil
}

// SaveMemory snapshots the current scene into a new immutable memory and
// persists it.
func (a *App) SaveMemory() (*memory.Entry, error) {
	a.mu.RLock()
	entry := &memory.Entry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Transcript: a.displayTranscript(),
		Sentiment:  a.sentiment,
		ImageRef:   a.imageRef,
		Density:    len(a.engine.Points()),
		Palette:    paletteFrom(a.engine.Points()),
		Segments:   append([]memory.VoiceSegment(nil), a.segments...),
	}
	a.mu.RUnlock()

	if a.config.Store != nil {
		if err := a.config.Store.Memories().Create(entry); err != nil {
			return nil, err
		}
		a.refreshPlacements()
	}

	return entry, nil
}

// RestoreMemory rebuilds the scene from a saved memory: the source image is
// re-sampled into a fresh cloud and the whole stored transcript is spawned
// once as glyphs.
func (a *App) RestoreMemory(id string) (*memory.Entry, error) {
	if a.config.Store == nil {
		return nil, store.ErrNotFound
	}

	entry, err := a.config.Store.Memories().GetByID(id)
	if err != nil {
		return nil, err
	}

	if entry.ImageRef != "" && a.config.Blobs != nil {
		data, err := a.config.Blobs.Get(entry.ImageRef)
		if err != nil {
			log.Printf("restore: image blob %s: %v", entry.ImageRef, err)
		} else if img, _, err := image.Decode(bytes.NewReader(data)); err != nil {
			log.Printf("restore: decoding image %s: %v", entry.ImageRef, err)
		} else {
			a.LoadImage(img)
		}
	}

	now := time.Now()

	a.mu.Lock()
	a.finalText = entry.Transcript
	a.interim = ""
	a.sentiment = entry.Sentiment
	a.segments = append([]memory.VoiceSegment(nil), entry.Segments...)
	a.imageRef = entry.ImageRef
	a.engine.Reset()
	a.engine.SetTranscript(now, entry.Transcript, true)
	a.mu.Unlock()

	return entry, nil
}

// ListMemories returns all saved memories ranked by query (recency when the
// query is empty), plus their 3-D placements.
func (a *App) ListMemories(query string) ([]*memory.Entry, map[string]field.Vec3, error) {
	if a.config.Store == nil {
		return nil, nil, nil
	}

	entries, err := a.config.Store.Memories().List()
	if err != nil {
		return nil, nil, err
	}

	active := memory.Rank(entries, query)
	placements := memory.Place(entries, active)

	a.mu.Lock()
	a.query = query
	a.placements = placements
	a.mu.Unlock()

	return entries, placements, nil
}

// refreshPlacements recomputes the cached placement map against the last
// active query. The map only changes when the memory set or the query
// changes, so the render tick serves it straight from this cache.
func (a *App) refreshPlacements() {
	if a.config.Store == nil {
		return
	}

	entries, err := a.config.Store.Memories().List()
	if err != nil {
		log.Printf("refreshing placements: %v", err)
		return
	}

	a.mu.RLock()
	query := a.query
	a.mu.RUnlock()

	active := memory.Rank(entries, query)
	placements := memory.Place(entries, active)

	a.mu.Lock()
	a.placements = placements
	a.mu.Unlock()
}

// GetMemory returns one saved memory by ID.
func (a *App) GetMemory(id string) (*memory.Entry, error) {
	if a.config.Store == nil {
		return nil, store.ErrNotFound
	}
	return a.config.Store.Memories().GetByID(id)
}

// DeleteMemory removes a memory and its stored image.
func (a *App) DeleteMemory(id string) error {
	if a.config.Store == nil {
		return store.ErrNotFound
	}

	entry, err := a.config.Store.Memories().GetByID(id)
	if err != nil {
		return err
	}

	if err := a.config.Store.Memories().Delete(id); err != nil {
		return err
	}
	a.refreshPlacements()

	if entry.ImageRef != "" && a.config.Blobs != nil {
		if err := a.config.Blobs.Delete(entry.ImageRef); err != nil {
			log.Printf("delete: image blob %s: %v", entry.ImageRef, err)
		}
	}

	return nil
}

// Snapshot is the per-tick scene state pushed to the rendering client.
type Snapshot struct {
	Points     []field.Point         `json:"points"`
	Glyphs     []scene.GlyphView     `json:"glyphs"`
	Placements map[string]field.Vec3 `json:"placements"`
	Gesture    gesture.State         `json:"gesture"`
	Disruption float64               `json:"disruption"`
	Transcript string                `json:"transcript"`
}

// Snapshot captures the current scene state for the rendering client. The
// placement map is the cached one; it is replaced wholesale and never
// mutated, so sharing it with the encoder is safe.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	points := a.engine.Points()
	out := make([]field.Point, len(points))
	copy(out, points)

	return Snapshot{
		Points:     out,
		Glyphs:     a.engine.Glyphs(),
		Placements: a.placements,
		Gesture:    a.gestureState,
		Disruption: a.engine.Disruption(),
		Transcript: a.displayTranscript(),
	}
}

// Start begins the detection poll loop and the render tick loop.
func (a *App) Start() error {
	// Seed the placement cache so memories from a previous run are placed
	// before the first save or list.
	a.refreshPlacements()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		// Sensor unavailable is not fatal: the scene runs without
		// gestures.
		log.Printf("camera unavailable, running without detection: %v", err)
	} else {
		a.camera.SetFPS(IdleFPS)
	}

	a.stopCh = make(chan struct{})

	a.wg.Add(2)
	go a.runDetection(a.stopCh)
	go a.runRender(a.stopCh)

	log.Println("Pipelines started")
	return nil
}

// Stop halts both loops and releases every device resource.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	recorder := a.recorder
	a.mu.Unlock()

	a.wg.Wait()

	if recorder != nil {
		recorder.Stop()
	}
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Pipelines stopped")
}

// paletteFrom derives three representative colors from the cloud: the mean
// color of the darkest, middle and brightest luminance thirds.
func paletteFrom(points []field.Point) [3]field.Color {
	palette := [3]field.Color{
		{R: 1, G: 1, B: 1},
		{R: 1, G: 1, B: 1},
		{R: 1, G: 1, B: 1},
	}
	if len(points) == 0 {
		return palette
	}

	sorted := make([]field.Color, len(points))
	for i, p := range points {
		sorted[i] = p.Color
	}
	sort.Slice(sorted, func(i, j int) bool {
		return luminance(sorted[i]) < luminance(sorted[j])
	})

	third := len(sorted) / 3
	bands := [3][2]int{
		{0, max(third, 1)},
		{third, max(2*third, third+1)},
		{2 * third, len(sorted)},
	}
	for b, band := range bands {
		lo, hi := band[0], band[1]
		if hi > len(sorted) {
			hi = len(sorted)
		}
		if lo >= hi {
			lo, hi = len(sorted)-1, len(sorted)
		}
		var sum field.Color
		for _, c := range sorted[lo:hi] {
			sum.R += c.R
			sum.G += c.G
			sum.B += c.B
		}
		n := float64(hi - lo)
		palette[b] = field.Color{R: sum.R / n, G: sum.G / n, B: sum.B / n}
	}

	return palette
}

func luminance(c field.Color) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// voiceSegmentText is only used for logging long transcripts compactly.
func voiceSegmentText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}
