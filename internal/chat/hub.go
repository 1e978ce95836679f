package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
)

// SessionReader re-resolves a client's session between messages. A
// websocket outlives the login that opened it, so the hub polls the
// store rather than trusting the handshake forever.
type SessionReader interface {
	Read(ctx context.Context, sessionID string) (*services.SessionRecord, error)
}

// MessagePoster persists a chat message before it is broadcast.
type MessagePoster interface {
	PostMessage(ctx context.Context, userID, body string) (*models.Message, error)
}

// Hub manages the set of live chat connections and fans broadcast
// frames out to them. All client registration state is owned by the
// Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns so late (un)registrations
	// cannot block on a loop that is no longer receiving.
	done chan struct{}

	sessions SessionReader
	forum    MessagePoster
	logger   *slog.Logger

	// recheckInterval is how long a connection may idle before its
	// session is re-read from the store.
	recheckInterval time.Duration
}

func NewHub(sessions SessionReader, forum MessagePoster, recheckInterval time.Duration, logger *slog.Logger) *Hub {
	return &Hub{
		clients:         make(map[*Client]bool),
		broadcast:       make(chan []byte, 256),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		done:            make(chan struct{}),
		sessions:        sessions,
		forum:           forum,
		logger:          logger,
		recheckInterval: recheckInterval,
	}
}

// Run starts the hub's event loop. It returns when ctx is cancelled,
// closing every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case frame := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					// Slow consumer; drop the connection rather
					// than stalling the loop.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// wire frame sent to every connected client
type messageFrame struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// BroadcastMessage fans a persisted message out to all clients.
func (h *Hub) BroadcastMessage(msg *models.Message) {
	frame, err := json.Marshal(messageFrame{
		Type:        "message",
		ID:          msg.ID,
		DisplayName: msg.DisplayName,
		Body:        msg.Body,
		CreatedAt:   msg.CreatedAt,
	})
	if err != nil {
		h.logger.Error("marshaling chat frame", slog.String("error", err.Error()))
		return
	}
	h.broadcast <- frame
}
