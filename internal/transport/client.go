package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lukev/elpres/internal/coordinator"
)

var errClosed = errors.New("transport: send channel closed")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client is a middleman between one websocket connection and the room it
// belongs to. It implements coordinator.Conn.
type Client struct {
	hub  *Hub
	room *coordinator.Room
	conn *websocket.Conn
	send chan []byte

	roomName string
	playerID string
}

// Send marshals msg and queues it for delivery. A client whose send
// buffer is full is assumed dead; the message is dropped rather than
// blocking the coordinator.
func (c *Client) Send(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("transport: failed to marshal outbound message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("transport: send buffer full for player %s, dropping message", c.playerID)
	}
}

// CloseConn queues a graceful close behind any messages already waiting
// to be written, so a final ack (e.g. you_left) is flushed before the
// socket goes down. A full send buffer falls back to an immediate close.
func (c *Client) CloseConn() {
	select {
	case c.send <- nil:
	default:
		_ = c.conn.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.room.Disconnect(c.playerID)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: read error for player %s: %v", c.playerID, err)
			}
			break
		}
		message = bytes.TrimSpace(bytes.ReplaceAll(message, newline, space))
		if len(message) == 0 {
			continue
		}
		c.room.HandleMessage(c.playerID, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			if err := c.handleWriteMessage(message, ok); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.handlePing(); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleWriteMessage(message []byte, ok bool) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if !ok || message == nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		return errClosed
	}

	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if _, err := w.Write(message); err != nil {
		return err
	}
	return w.Close()
}

func (c *Client) handlePing() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}
