package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
	pkglogger "github.com/McKadeW/COS498-FinalForum/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live websocket connection. It holds only the session id
// from the handshake; identity is re-read from the store on every
// inbound message and on an idle timer, so a logged-out or expired
// session loses the connection without waiting for the next send.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 64),
		sessionID: sessionID,
	}
}

// Start registers the client and launches its pumps.
func (c *Client) Start(ctx context.Context) {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.conn.Close()
		return
	}
	go c.writePump(ctx)
	go c.readPump(ctx)
}

type inboundFrame struct {
	Body string `json:"body"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// resolveSession re-reads the client's session. It returns the live
// record, or nil when the session is gone or no longer authenticated.
func (c *Client) resolveSession(ctx context.Context) *services.SessionData {
	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	record, err := c.hub.sessions.Read(readCtx, c.sessionID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			c.hub.logger.Warn("chat session recheck failed", slog.String("error", err.Error()))
		}
		return nil
	}
	if record.Data == nil || !record.Data.Authenticated {
		return nil
	}
	return record.Data
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("chat read error", slog.String("error", err.Error()))
			}
			return
		}

		data := c.resolveSession(ctx)
		if data == nil {
			c.closeUnauthorized()
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError("malformed message")
			continue
		}

		msg, err := c.hub.forum.PostMessage(ctx, data.UserID, frame.Body)
		if err != nil {
			if errors.Is(err, models.ErrBadRequest) {
				c.sendError("message body required")
				continue
			}
			c.sendError("message not saved")
			continue
		}

		msg.DisplayName = data.DisplayName
		c.hub.logger.Info("chat message",
			slog.String("user_id", data.UserID),
			slog.String("username", pkglogger.SanitizedUsername(data.Username)))
		c.hub.BroadcastMessage(msg)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	recheck := time.NewTicker(c.hub.recheckInterval)
	defer func() {
		ping.Stop()
		recheck.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-recheck.C:
			// Idle watchdog: a connection whose session has been
			// destroyed or expired gets dropped even if it never
			// sends another message.
			if c.resolveSession(ctx) == nil {
				c.closeUnauthorized()
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendError(message string) {
	frame, err := json.Marshal(errorFrame{Type: "error", Error: message})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// closeUnauthorized is called from both pumps, so it must not touch the
// data-message writer. WriteControl is safe concurrently with WriteMessage.
func (c *Client) closeUnauthorized() {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session expired"),
		time.Now().Add(writeWait))
	c.conn.Close()
}
