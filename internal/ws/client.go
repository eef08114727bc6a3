package ws

import (
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const closeWait = time.Second

// feedConn is the part of a websocket connection the pumps use.
type feedConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	WriteControl(int, []byte, time.Time) error
	Close() error
}

// Client is one websocket connection reading the feed as Name.
type Client struct {
	ID   string
	Name string
	conn feedConn
	send chan []byte
}

func (h *Hub) newClient(name string, conn feedConn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Name: name,
		conn: conn,
		send: make(chan []byte, h.buffer),
	}
}

// Upgrade rejects requests that are not websocket upgrades.
func Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler serves the live feed. The viewer is taken from the user query
// parameter or the User header, with the same trust as the REST surface.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		name := conn.Query("user", conn.Headers(middleware.UserHeader))
		if name == "" {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user is required"))
			return
		}

		c := h.newClient(name, conn)
		h.register(c)
		c.serve(h)
	})
}

// serve runs both pumps and returns once both have exited. The connection
// is released when the handler returns, so the write side must finish first.
func (c *Client) serve(h *Hub) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()
	c.readPump(h)
	<-done
}

// readPump drains inbound frames until the peer goes away. The feed is
// read-only; messages are posted over REST.
func (c *Client) readPump(h *Hub) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards queued events. When the hub closes the send channel,
// it says goodbye and closes the connection, which also ends readPump.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
		time.Now().Add(closeWait))
}
