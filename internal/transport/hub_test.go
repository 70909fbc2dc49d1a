package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubTracksRegisteredClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := &Client{hub: hub, send: make(chan []byte, 8), playerID: "a"}
	c2 := &Client{hub: hub, send: make(chan []byte, 8), playerID: "b"}

	hub.register <- c1
	hub.register <- c2
	waitForCount(t, hub, 2)

	hub.unregister <- c1
	waitForCount(t, hub, 1)

	hub.unregister <- c2
	waitForCount(t, hub, 0)
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 8), playerID: "a"}
	hub.register <- c
	waitForCount(t, hub, 1)

	hub.unregister <- c

	select {
	case _, ok := <-c.send:
		assert.False(t, ok, "send channel should be closed after unregister")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send channel to close")
	}
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub count never reached %d, got %d", want, hub.Count())
}
