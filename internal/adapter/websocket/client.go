package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

var (
	errClientGone     = errors.New("websocket client disconnected")
	errMalformedFrame = errors.New("malformed frame")
)

// Client is one connected browser or terminal. It is the session's
// presenter and the sender behind its remote voice adapters. Outbound
// frames are queued and written by writePump; a client that falls
// behind by a full buffer is disconnected.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	log  *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, log *zap.Logger) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		log:  log,
	}
}

func (c *Client) StateChanged(state domain.SessionState) {
	c.enqueue(FrameState, StatePayload{State: state})
}

func (c *Client) Notify(n domain.Notification) {
	c.enqueue(FrameNotification, n)
}

// SendCommand implements voice.Sender.
func (c *Client) SendCommand(kind string, payload interface{}) error {
	return c.enqueue(kind, payload)
}

func (c *Client) sendError(msg string) {
	c.enqueue(FrameError, ErrorPayload{Message: msg})
}

func (c *Client) enqueue(kind string, payload interface{}) error {
	data, err := encodeFrame(kind, payload)
	if err != nil {
		c.log.Error("Failed to encode frame", zap.String("type", kind), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClientGone
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.log.Warn("Client send buffer full, disconnecting")
		c.closeLocked()
		return errClientGone
	}
}

// close stops writePump. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readFrame blocks for the next client frame. A message that is not a
// frame is reported with errMalformedFrame and the connection stays usable.
func (c *Client) readFrame() (Frame, error) {
	var f Frame
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return f, err
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	if err := json.Unmarshal(data, &f); err != nil || f.Type == "" {
		return f, errMalformedFrame
	}
	return f, nil
}

func (c *Client) writePump(done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
