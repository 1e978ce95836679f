package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/McKadeW/COS498-FinalForum/internal/auth"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	pkghttp "github.com/McKadeW/COS498-FinalForum/pkg/http"
)

// CommentServiceInterface defines the interface for comment operations
type CommentServiceInterface interface {
	CreateComment(ctx context.Context, userID, body string) (*models.Comment, error)
	ListComments(ctx context.Context, limit, offset int) ([]*models.Comment, error)
}

// CommentsHandler handles forum comment HTTP requests
type CommentsHandler struct {
	service CommentServiceInterface
}

func NewCommentsHandler(service CommentServiceInterface) *CommentsHandler {
	return &CommentsHandler{service: service}
}

// CreateCommentRequest represents the request body for posting a comment
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// List returns comments newest first
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	comments, err := h.service.ListComments(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// Create posts a comment as the session's user
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	record, ok := auth.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.service.CreateComment(r.Context(), record.Data.UserID, req.Body)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Comment body required")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	comment.DisplayName = record.Data.DisplayName
	pkghttp.WriteJSON(w, http.StatusCreated, comment)
}
