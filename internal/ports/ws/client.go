package ws

import (
	"encoding/json"
	"sync"
	"time"

	"truco/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong.
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// client is one websocket connection. roomID and userID are only touched by
// the read loop.
type client struct {
	g      *Gateway
	conn   *websocket.Conn
	out    chan []byte
	done   chan struct{}
	once   sync.Once
	roomID string
	userID string
}

func newClient(g *Gateway, conn *websocket.Conn) *client {
	return &client{
		g:    g,
		conn: conn,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *client) remote() string {
	return c.conn.RemoteAddr().String()
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// roomLost closes a connection whose seat was taken over by a newer one.
func (c *client) roomLost() {
	c.sendError(errReplaced)
	c.close()
}

// enqueue queues a frame without blocking the room goroutine. A client that
// cannot keep up is dropped.
func (c *client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.out <- data:
	default:
		c.g.logger.Warn("ws: Send buffer full for %s, closing", c.remote())
		c.close()
	}
}

func (c *client) send(msgType string, payload interface{}) error {
	data, err := encode(msgType, payload)
	if err != nil {
		return err
	}
	c.enqueue(data)
	return nil
}

func (c *client) sendError(err error) {
	if sendErr := c.send(TypeError, errorEvent{Code: domain.ErrorCode(err), Message: err.Error()}); sendErr != nil {
		c.g.logger.Error("ws: Failed to marshal error event: %v", sendErr)
	}
}

func (c *client) inRoom(fn func(roomID, userID string) error) error {
	if c.roomID == "" {
		return errNotInRoom
	}
	return fn(c.roomID, c.userID)
}

func (c *client) readLoop() {
	defer func() {
		c.g.disconnected(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.g.logger.Warn("ws: Unexpected close from %s: %v", c.remote(), err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(errMalformed)
			continue
		}
		c.g.handle(c, msg)
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.g.logger.Debug("ws: Write to %s failed: %v", c.remote(), err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever is already queued.
func (c *client) flush() {
	for {
		select {
		case data := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
