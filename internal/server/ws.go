package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/renderix/reverie/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SceneHandler pushes per-tick scene snapshots (points, glyphs, memory
// placements, gesture, disruption) to the rendering client via WebSocket.
type SceneHandler struct {
	app      *app.App
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSceneHandler creates a new SceneHandler for the given app.
func NewSceneHandler(a *app.App) *SceneHandler {
	h := &SceneHandler{
		app:     a,
		clients: make(map[*websocket.Conn]bool),
		stopCh:  make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// Close stops the broadcast loop. Safe to call more than once. Connected
// clients are dropped when their connections close.
func (h *SceneHandler) Close() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the scene snapshot to all connected clients once per
// render tick interval.
func (h *SceneHandler) broadcast() {
	ticker := time.NewTicker(app.DefaultTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		snapshot := h.app.Snapshot()
		msg, err := json.Marshal(snapshot)
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
