package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"

	"github.com/gorilla/websocket"

	"github.com/lukev/elpres/internal/coordinator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var roomNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,20}$`)

// ServeWs handles GET /ws?room=<name>&id=<player_id>. The room must
// already exist with id as a known member (minted by the join
// endpoint) and not already have a live connection under that id; a
// rejection is a websocket-level error frame followed by a close, per
// the handshake contract, not a plain HTTP error.
func ServeWs(hub *Hub, registry *coordinator.Registry, w http.ResponseWriter, r *http.Request) {
	roomName := r.URL.Query().Get("room")
	playerID := r.URL.Query().Get("id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: upgrade failed: %v", err)
		return
	}

	if !roomNamePattern.MatchString(roomName) {
		rejectHandshake(conn, "missing or invalid room name")
		return
	}
	if playerID == "" {
		rejectHandshake(conn, "missing id")
		return
	}
	room := registry.Room(roomName)
	if !room.HasPlayer(playerID) {
		rejectHandshake(conn, "unknown id")
		return
	}

	client := &Client{
		hub:      hub,
		room:     room,
		conn:     conn,
		send:     make(chan []byte, 256),
		roomName: roomName,
		playerID: playerID,
	}
	if !room.TryConnect(playerID, client) {
		rejectHandshake(conn, "id already live in this room")
		return
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func rejectHandshake(conn *websocket.Conn, message string) {
	data, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "error", Message: message})
	_ = conn.WriteMessage(websocket.TextMessage, data)
	_ = conn.Close()
}
