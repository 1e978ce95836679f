package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/McKadeW/COS498-FinalForum/internal/auth"
	"github.com/McKadeW/COS498-FinalForum/internal/chat"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	pkghttp "github.com/McKadeW/COS498-FinalForum/pkg/http"
	"github.com/gorilla/websocket"
)

// ChatServiceInterface defines the interface for chat history
type ChatServiceInterface interface {
	ChatHistory(ctx context.Context, limit int) ([]*models.Message, error)
}

// ChatHandler handles chat history and websocket upgrades
type ChatHandler struct {
	service  ChatServiceInterface
	hub      *chat.Hub
	upgrader websocket.Upgrader
}

func NewChatHandler(service ChatServiceInterface, hub *chat.Hub, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts same-origin handshakes plus any explicitly
// configured extra origins.
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	}
}

// History returns persisted chat messages oldest first
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.service.ChatHistory(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// ServeWS upgrades an authenticated request to a websocket and hands the
// connection to the hub. The session middleware has already resolved the
// caller; only the session id travels with the client, identity is
// re-read from the store for every message.
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	record, ok := auth.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}

	client := chat.NewClient(h.hub, conn, record.SessionID)
	client.Start(context.WithoutCancel(r.Context()))
}
