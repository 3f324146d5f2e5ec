package e2e

import (
	"bytes"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/renderix/reverie/internal/app"
	"github.com/renderix/reverie/internal/blob"
	"github.com/renderix/reverie/internal/capture"
	"github.com/renderix/reverie/internal/memory"
	"github.com/renderix/reverie/internal/server"
	"github.com/renderix/reverie/internal/speech"
	"github.com/renderix/reverie/internal/store"
	"github.com/renderix/reverie/testdata"
)

type listResponse struct {
	Memories   []*memory.Entry        `json:"memories"`
	Placements map[string]interface{} `json:"placements"`
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	blobs, err := blob.Open(filepath.Join(tmpDir, "images.db"))
	if err != nil {
		t.Fatalf("blob.Open() error = %v", err)
	}
	defer blobs.Close()

	application := app.New(app.Config{
		Store:        s,
		Blobs:        blobs,
		PointTarget:  40,
		TickInterval: 5 * time.Millisecond,
	})
	application.SetCamera(capture.NewMockCamera(nil, false))

	recognizer := &speech.MockRecognizer{}
	analyzer := &speech.MockAnalyzer{
		Result: speech.SentimentResult{Label: memory.SentimentPositive, Confidence: 0.9},
	}
	application.SetRecorder(speech.NewRecorder(
		speech.RecorderConfig{ChunkInterval: time.Hour},
		capture.NewMockAudioCapture(nil),
		recognizer,
		analyzer,
		application.Queue(),
	))

	if err := application.Start(); err != nil {
		t.Fatalf("app.Start() error = %v", err)
	}
	defer application.Stop()

	srv := server.New(server.Config{App: application})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("UploadImage", func(t *testing.T) {
		data, err := testdata.PNGBytes(testdata.SolidImage(8, 8, color.RGBA{R: 180, G: 120, B: 60, A: 255}))
		if err != nil {
			t.Fatalf("encoding fixture: %v", err)
		}

		resp, err := client.Post(ts.URL+"/api/upload", "image/png", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("upload error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("upload status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if len(application.Snapshot().Points) == 40 {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatal("point cloud never sampled from upload")
	})

	t.Run("RecordTranscript", func(t *testing.T) {
		if err := application.StartRecording(); err != nil {
			t.Fatalf("StartRecording() error = %v", err)
		}

		recognizer.Emit(speech.TranscriptEvent{Text: "walking on"})
		recognizer.Emit(speech.TranscriptEvent{IsFinal: true, Text: "walking on the beach"})

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if application.Transcript() == "walking on the beach" {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
		if got := application.Transcript(); got != "walking on the beach" {
			t.Fatalf("transcript = %q", got)
		}

		application.StopRecording()
	})

	var savedID string
	t.Run("SaveMemory", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/memories", "application/json", nil)
		if err != nil {
			t.Fatalf("save error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("save status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var entry memory.Entry
		if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
			t.Fatalf("decoding save response: %v", err)
		}
		if entry.Transcript != "walking on the beach" {
			t.Errorf("saved transcript = %q", entry.Transcript)
		}
		if entry.Density != 40 {
			t.Errorf("saved density = %d, want 40", entry.Density)
		}
		savedID = entry.ID
	})

	t.Run("SearchMemories", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/memories?q=beach")
		if err != nil {
			t.Fatalf("search error = %v", err)
		}
		defer resp.Body.Close()

		var list listResponse
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("decoding search response: %v", err)
		}
		if len(list.Memories) != 1 {
			t.Fatalf("memories = %d, want 1", len(list.Memories))
		}
		if list.Memories[0].MatchScore <= 0 {
			t.Error("query should score the saved memory")
		}
	})

	t.Run("RestoreMemory", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/memories/"+savedID+"/restore", "application/json", nil)
		if err != nil {
			t.Fatalf("restore error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("restore status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		// Restore respawns the stored transcript as glyphs.
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if len(application.Snapshot().Glyphs) > 0 {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Error("restore never spawned glyphs")
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after workflow")
		}
	})
}
