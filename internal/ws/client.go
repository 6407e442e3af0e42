package ws

import (
	"context"
	"log/slog"
	"time"

	"taskmaster/internal/domain"
	"taskmaster/internal/logger"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 4096
	inboxSize      = 8
)

type Replier interface {
	Reply(ctx context.Context, userID uuid.UUID, message string) (string, error)
}

// Client is one chat session. Messages are answered in the order received.
type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	chat  Replier
	inbox chan string
	log   *slog.Logger
	done  chan struct{}
}

func NewClient(userID uuid.UUID, conn *websocket.Conn, chat Replier) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		chat:   chat,
		inbox:  make(chan string, inboxSize),
		log:    logger.With("component", "ws", "user_id", userID),
		done:   make(chan struct{}),
	}
}

// Run serves the session until the connection closes.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump()
	go c.serve(ctx)

	c.queue(mustMarshal(ReplyPayload{Type: MsgReady}))
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		close(c.inbox)
		close(c.done)
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("ws read error", "error", err)
			}
			return
		}

		var p ChatPayload
		if err := sonic.Unmarshal(msg, &p); err != nil {
			c.queue(mustMarshal(ErrorPayload{Type: MsgError, Message: "invalid message"}))
			continue
		}

		select {
		case c.inbox <- p.Message:
		default:
			c.queue(mustMarshal(ErrorPayload{Type: MsgError, Message: "too many pending messages"}))
		}
	}
}

// serve answers inbox messages one at a time. Closing Send stops the writer.
func (c *Client) serve(ctx context.Context) {
	defer close(c.Send)

	for msg := range c.inbox {
		reply, err := c.chat.Reply(ctx, c.UserID, msg)
		if err != nil {
			c.queue(mustMarshal(ErrorPayload{Type: MsgError, Message: domain.Detail(err)}))
			continue
		}
		c.queue(mustMarshal(ReplyPayload{Type: MsgReply, Response: reply}))
	}
}

func (c *Client) queue(msg []byte) {
	select {
	case c.Send <- msg:
	case <-c.done:
	case <-time.After(writeWait):
		c.log.Warn("ws send queue full, dropping message")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("ws write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func mustMarshal(v any) []byte {
	b, err := sonic.Marshal(v)
	if err != nil {
		return []byte(`{"type":"error","message":"internal error"}`)
	}
	return b
}
