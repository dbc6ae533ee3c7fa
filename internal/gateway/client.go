package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

const sendBuffer = 16

// client is one websocket connection. Writes go through the send channel so
// only writePump ever touches the underlying connection for output. The
// mutex orders enqueue against close: the relay goroutine may evict and
// close a client while the read goroutine is sending a direct reply.
type client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// enqueue hands a raw frame to writePump. A client whose buffer stays full
// or that has been closed is reported dead; the hub evicts it.
func (c *client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) sendFrame(f frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("gateway: marshal %s: %w", f.Event, err)
	}

	if !c.enqueue(b) {
		return fmt.Errorf("gateway: client send buffer full")
	}

	return nil
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}
