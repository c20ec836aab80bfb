package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"teamchat-service/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer; a peer
	// that misses it is treated as disconnected
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size allowed from peer
	maxFrameSize = 4096
)

var (
	ErrClientDisconnected = errors.New("client disconnected")
	ErrSendBufferFull     = errors.New("send buffer full")
	ErrNotAMember         = errors.New("not a member of channel")
	ErrInvalidStatus      = errors.New("invalid presence status")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin allow-listing happens in the CORS middleware; the
		// upgrader accepts whatever made it through.
		return true
	},
}

// Conn is the transport surface the hub needs from one connection.
// *websocket.Conn satisfies it; tests substitute an in-memory fake.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is one open duplex connection for exactly one authenticated user.
type Client struct {
	id     string
	userID uint
	hub    *Hub
	conn   Conn
	send   chan []byte

	// rooms is the set of channel IDs this connection subscribed to,
	// guarded by the hub mutex.
	rooms map[uint]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	closed int32
}

func newClient(hub *Hub, conn Conn, userID uint, queueSize int) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, queueSize),
		rooms:  make(map[uint]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() uint {
	return c.userID
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client dead, cancels its pending operations and closes
// the transport. Safe to call more than once.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
		c.conn.Close()
	}
}

// enqueue hands an already-serialized frame to the write pump. It never
// blocks: a full queue means the consumer cannot keep up and the caller
// drops the connection instead of stalling the room.
func (c *Client) enqueue(data []byte) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) sendControl(f *ControlFrame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := c.enqueue(data); err != nil {
		slog.Debug("control frame dropped", "clientID", c.id, "error", err)
	}
}

func (c *Client) sendError(code, message string) {
	c.sendControl(NewErrorFrame(code, message))
}

// readPump reads inbound frames until the connection dies, then cleans up.
// Heartbeat liveness rides on the read deadline: every pong extends it and
// a missed one surfaces as a read error.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read failed", "clientID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("websocket connection closed", "clientID", c.id, "userID", c.userID)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError(CodeInvalidFrame, "invalid frame format")
			continue
		}
		c.handleFrame(&frame)
	}
}

func (c *Client) handleFrame(frame *InboundFrame) {
	switch frame.Type {
	case FrameSubscribe:
		err := c.hub.Subscribe(c.ctx, c, frame.ChannelID)
		switch {
		case err == nil:
			c.sendControl(NewAckFrame(FrameSubscribeOK, frame.ChannelID))
		case errors.Is(err, ErrNotAMember):
			// Rejection is per-room; the connection stays open.
			c.sendError(CodeNotAMember, "not a member of this channel")
		default:
			slog.Error("subscribe failed", "clientID", c.id, "channelID", frame.ChannelID, "error", err)
			c.sendError(CodeInternal, "subscribe failed")
		}

	case FrameUnsubscribe:
		c.hub.Unsubscribe(c, frame.ChannelID)
		c.sendControl(NewAckFrame(FrameUnsubscribeOK, frame.ChannelID))

	case FramePresenceSet:
		status := models.UserStatus(frame.Status)
		if !status.IsValid() || status == models.UserStatusOffline {
			c.sendError(CodeInvalidStatus, "status must be one of online, away, busy")
			return
		}
		if err := c.hub.SetPresence(c.ctx, c.userID, status); err != nil {
			slog.Error("presence set failed", "clientID", c.id, "userID", c.userID, "error", err)
			c.sendError(CodeInternal, "presence update failed")
		}

	default:
		c.sendError(CodeInvalidFrame, "unknown frame type: "+frame.Type.String())
	}
}

// writePump flushes the outbound queue and keeps the heartbeat going.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("websocket write failed", "clientID", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("ping failed", "clientID", c.id, "error", err)
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// ServeWS upgrades an authenticated HTTP request to a websocket connection
// and registers it with the hub. userID comes from the auth middleware and
// is trusted from here on.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "userID", userID, "error", err)
		return
	}

	client := newClient(hub, conn, userID, hub.queueSize)
	hub.register(client)
	slog.Info("websocket connection established", "clientID", client.id, "userID", userID)

	client.sendControl(NewConnectedFrame(client.id))

	go client.writePump()
	go client.readPump()
}
