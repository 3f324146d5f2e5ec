package api

import (
	"io"
	"net/http"

	"github.com/renderix/reverie/internal/app"
)

// MaxUploadBytes caps the accepted image payload size.
const MaxUploadBytes = 16 << 20

// UploadHandler accepts raw image bytes and swaps in a freshly sampled
// point cloud. On decode failure the previous cloud is kept and the client
// gets a 400.
type UploadHandler struct {
	app *app.App
}

// NewUploadHandler creates a new UploadHandler backed by the app.
func NewUploadHandler(a *app.App) *UploadHandler {
	return &UploadHandler{app: a}
}

type uploadResponse struct {
	ImageRef string `json:"imageRef"`
}

// ServeHTTP handles POST /api/upload with the image bytes as the body.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	ref, err := h.app.UploadImage(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to decode image")
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{ImageRef: ref})
}
