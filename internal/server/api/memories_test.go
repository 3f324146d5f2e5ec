package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/renderix/reverie/internal/app"
	"github.com/renderix/reverie/internal/blob"
	"github.com/renderix/reverie/internal/capture"
	"github.com/renderix/reverie/internal/memory"
	"github.com/renderix/reverie/internal/speech"
	"github.com/renderix/reverie/internal/store"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	dir := t.TempDir()
	s, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	b, err := blob.Open(filepath.Join(dir, "blobs.db"))
	if err != nil {
		t.Fatalf("creating blob store: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	a := app.New(app.Config{
		Store:        s,
		Blobs:        b,
		PointTarget:  30,
		TickInterval: 5 * time.Millisecond,
	})
	a.SetCamera(capture.NewMockCamera(nil, false))

	if err := a.Start(); err != nil {
		t.Fatalf("starting app: %v", err)
	}
	t.Cleanup(a.Stop)

	return a
}

// speakFinal pushes a finalized transcript through the render loop and
// waits for it to land in shared state.
func speakFinal(t *testing.T, a *app.App, text string) {
	t.Helper()

	a.Queue().Push(speech.TranscriptEvent{IsFinal: true, Text: text, Timestamp: time.Now()})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.Transcript() == text {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("transcript never became %q", text)
}

func saveMemory(t *testing.T, h *MemoriesHandler) *memory.Entry {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/memories", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var entry memory.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entry); err != nil {
		t.Fatalf("decoding save response: %v", err)
	}
	return &entry
}

func TestMemoriesHandler_SaveAndGet(t *testing.T) {
	a := newTestApp(t)
	h := NewMemoriesHandler(a)

	speakFinal(t, a, "sunset over the harbor")
	saved := saveMemory(t, h)

	if saved.ID == "" {
		t.Fatal("saved memory has no ID")
	}
	if saved.Transcript != "sunset over the harbor" {
		t.Errorf("saved transcript = %q", saved.Transcript)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/memories/"+saved.ID, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got memory.Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding get response: %v", err)
	}
	if got.ID != saved.ID || got.Transcript != saved.Transcript {
		t.Errorf("got = %+v, want saved entry", got)
	}
}

func TestMemoriesHandler_Get_NotFound(t *testing.T) {
	h := NewMemoriesHandler(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "/api/memories/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMemoriesHandler_ListWithQueryRanks(t *testing.T) {
	a := newTestApp(t)
	h := NewMemoriesHandler(a)

	speakFinal(t, a, "sunset over the harbor")
	saveMemory(t, h)

	a.StartRecording() // no recorder attached, but resets transcript state
	speakFinal(t, a, "quiet morning rain")
	saveMemory(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/memories?q=sunset+harbor", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp listMemoriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if len(resp.Memories) != 2 {
		t.Fatalf("memories = %d, want 2", len(resp.Memories))
	}
	if resp.Memories[0].Transcript != "sunset over the harbor" {
		t.Errorf("best match = %q, want the sunset memory first", resp.Memories[0].Transcript)
	}
	if resp.Memories[0].MatchScore <= resp.Memories[1].MatchScore {
		t.Error("match should outscore non-match")
	}
	if len(resp.Placements) != 2 {
		t.Errorf("placements = %d, want one per memory", len(resp.Placements))
	}
	if resp.Placements[resp.Memories[0].ID].X != 0 {
		t.Errorf("best match x = %f, want center slot", resp.Placements[resp.Memories[0].ID].X)
	}
}

func TestMemoriesHandler_List_Empty(t *testing.T) {
	h := NewMemoriesHandler(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "/api/memories", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp listMemoriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if resp.Memories == nil || resp.Placements == nil {
		t.Error("empty list should marshal as [] and {}, not null")
	}
}

func TestMemoriesHandler_RestoreRebuildsScene(t *testing.T) {
	a := newTestApp(t)
	h := NewMemoriesHandler(a)

	speakFinal(t, a, "walking on the beach")
	saved := saveMemory(t, h)

	a.StartRecording()
	speakFinal(t, a, "something else")

	req := httptest.NewRequest(http.MethodPost, "/api/memories/"+saved.ID+"/restore", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := a.Transcript(); got != "walking on the beach" {
		t.Errorf("transcript after restore = %q", got)
	}
}

func TestMemoriesHandler_Restore_WrongMethod(t *testing.T) {
	h := NewMemoriesHandler(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "/api/memories/some-id/restore", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestMemoriesHandler_Delete(t *testing.T) {
	a := newTestApp(t)
	h := NewMemoriesHandler(a)

	saved := saveMemory(t, h)

	req := httptest.NewRequest(http.MethodDelete, "/api/memories/"+saved.ID, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/memories/"+saved.ID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUploadHandler_AcceptsImageAndRejectsGarbage(t *testing.T) {
	a := newTestApp(t)
	h := NewUploadHandler(a)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 140, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp uploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}
	if resp.ImageRef == "" {
		t.Error("upload returned empty imageRef")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewBufferString("not an image"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("garbage upload status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
