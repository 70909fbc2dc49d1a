// Package httpapi is the lobby's plain HTTP surface: joining a room
// ahead of opening the websocket, the /room/{name} handoff to the game
// page, and a health check. Game play itself is entirely over the
// websocket; this package never touches game state.
package httpapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lukev/elpres/internal/coordinator"
)

var roomNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,20}$`)

const maxNameLen = 20

// JoinHandler serves GET /join, /room/{name}, and /health.
type JoinHandler struct {
	registry  *coordinator.Registry
	staticDir string
}

// NewJoinHandler returns a handler backed by registry. staticDir is where
// the external static-file collaborator drops the client; /room/{name}
// hands off to its game page.
func NewJoinHandler(registry *coordinator.Registry, staticDir string) *JoinHandler {
	return &JoinHandler{registry: registry, staticDir: staticDir}
}

// RegisterRoutes wires /join, /room/{name}, and /health onto router.
func (h *JoinHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/join", h.handleJoin).Methods(http.MethodGet)
	router.HandleFunc("/room/{name}", h.handleRoom).Methods(http.MethodGet)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
}

// handleRoom serves the client's game page for a room. The page itself
// belongs to the static-file collaborator; this route only validates the
// room name and hands the same entry point back regardless of it.
func (h *JoinHandler) handleRoom(w http.ResponseWriter, r *http.Request) {
	if !roomNamePattern.MatchString(mux.Vars(r)["name"]) {
		http.Error(w, "invalid room name", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, "game.html"))
}

func (h *JoinHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *JoinHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	roomName := r.URL.Query().Get("room")
	if !roomNamePattern.MatchString(roomName) {
		http.Error(w, "invalid room name", http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Player"
	} else if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	room := h.registry.Room(roomName)
	id := room.Join(uuid.NewString(), name)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(struct {
		ID string `json:"id"`
	}{ID: id})
}
