package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// Pencil strokes and image upserts make op messages much larger than
	// presence updates.
	maxMsgSize = 1 << 20
	sendBuffer = 256
)

// Client is one websocket connection in a room.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *slog.Logger
	UserID      string
	DisplayName string
	RoomID      string
	ClientID    string

	mu     sync.Mutex
	cancel context.CancelFunc
	kicked bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, roomID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		log:         slog.With("user", userID, "room", roomID, "client", clientID),
		UserID:      userID,
		DisplayName: displayName,
		RoomID:      roomID,
		ClientID:    clientID,
	}
}

// Serve registers the client and runs both pumps until the connection
// ends or the client is kicked.
func (c *Client) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.cancel = cancel
	kicked := c.kicked
	c.mu.Unlock()
	if kicked {
		return
	}

	c.hub.Register(c)
	go c.WritePump(ctx)
	c.ReadPump(ctx)
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.log.Debug("read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("invalid message", "error", err)
			c.Send(newMessage(TypeError, ErrorPayload{Message: "malformed message"}))
			continue
		}

		// Identity comes from the connection, never from the payload.
		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.RoomID = c.RoomID

		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the write pump. A client whose buffer is full has
// fallen behind the op stream and is disconnected; it resyncs from
// doc.sync when it reconnects.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.kick()
	}
}

func (c *Client) kick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kicked {
		return
	}
	c.kicked = true
	c.log.Warn("client too slow, disconnecting")
	if c.cancel != nil {
		c.cancel()
	}
}

// Kicked reports whether the client was disconnected for falling behind.
func (c *Client) Kicked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kicked
}
