// Package server provides the HTTP server for the Reverie scene core.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/renderix/reverie/internal/app"
	"github.com/renderix/reverie/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
}

// Server represents the HTTP server for the Reverie application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	scene  *SceneHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		memoriesHandler := api.NewMemoriesHandler(s.config.App)
		s.mux.Handle("/api/memories", memoriesHandler)
		s.mux.Handle("/api/memories/", memoriesHandler)

		s.mux.Handle("/api/upload", api.NewUploadHandler(s.config.App))

		s.scene = NewSceneHandler(s.config.App)
		s.mux.Handle("/api/scene", s.scene)

		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App.Camera()))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops background broadcast work. Safe to call more than once.
func (s *Server) Close() {
	if s.scene != nil {
		s.scene.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
