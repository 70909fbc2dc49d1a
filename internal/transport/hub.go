// Package transport is the websocket edge: it upgrades HTTP connections,
// validates the room/player handshake, and hands inbound bytes to the
// coordinator. Per-room fan-out lives in coordinator.Room, so the Hub
// here only tracks live clients for bookkeeping and orderly shutdown.
package transport

import (
	"log"
	"sync"
)

// Hub is the process-wide registry of connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
}

// NewHub creates an empty Hub. Call Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run services the register/unregister channels until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("transport: client connected, total=%d", h.Count())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("transport: client disconnected, total=%d", h.Count())
		}
	}
}

// Count returns the number of currently registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
