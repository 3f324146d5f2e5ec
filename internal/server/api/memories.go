// Package api provides HTTP API handlers for the Reverie scene core.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/renderix/reverie/internal/app"
	"github.com/renderix/reverie/internal/field"
	"github.com/renderix/reverie/internal/memory"
	"github.com/renderix/reverie/internal/store"
)

// MemoriesHandler handles HTTP requests for memory resources.
type MemoriesHandler struct {
	app *app.App
}

// NewMemoriesHandler creates a new MemoriesHandler backed by the app.
func NewMemoriesHandler(a *app.App) *MemoriesHandler {
	return &MemoriesHandler{app: a}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
// Expected paths: /api/memories, /api/memories/{id}, /api/memories/{id}/restore
func (h *MemoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/memories")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.save(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/restore"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.restore(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listMemoriesResponse struct {
	Memories   []*memory.Entry       `json:"memories"`
	Placements map[string]field.Vec3 `json:"placements"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/memories?q= and returns all memories ranked by the
// query (recency when q is empty), plus their scene placements.
func (h *MemoriesHandler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	entries, placements, err := h.app.ListMemories(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list memories")
		return
	}

	if entries == nil {
		entries = []*memory.Entry{}
	}
	if placements == nil {
		placements = map[string]field.Vec3{}
	}

	writeJSON(w, http.StatusOK, listMemoriesResponse{
		Memories:   entries,
		Placements: placements,
	})
}

// save handles POST /api/memories and snapshots the current scene.
func (h *MemoriesHandler) save(w http.ResponseWriter, r *http.Request) {
	entry, err := h.app.SaveMemory()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save memory")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// get handles GET /api/memories/{id} and returns a single memory.
func (h *MemoriesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.app.GetMemory(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Memory not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get memory")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// restore handles POST /api/memories/{id}/restore and rebuilds the scene
// from the stored memory.
func (h *MemoriesHandler) restore(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.app.RestoreMemory(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Memory not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to restore memory")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// delete handles DELETE /api/memories/{id}.
func (h *MemoriesHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.app.DeleteMemory(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Memory not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete memory")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
