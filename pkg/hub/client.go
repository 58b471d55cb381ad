package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Clients only send control frames; anything larger is a protocol error.
	maxReadSize = 4 * 1024

	// Queued messages per client before it counts as slow.
	sendBuffer = 64
)

// Client is one dashboard websocket attached to a hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient registers conn with h. It returns nil if h has stopped.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	c := &Client{hub: h, conn: conn, send: make(chan Message, sendBuffer+h.history)}
	select {
	case h.register <- c:
		return c
	case <-h.done:
		return nil
	}
}

// Run serves the connection until the peer leaves or the hub drops it.
// Call it from the websocket handler; it blocks.
func (c *Client) Run() {
	go c.writeLoop()
	c.readLoop()
}

// readLoop discards client frames and notices the disconnect.
func (c *Client) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop is the only writer of conn.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			if err := c.write(m.frameType(), m.Data); err != nil {
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(frameType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(frameType, data)
}
