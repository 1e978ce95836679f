package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
)

// CommentRepository defines the comment persistence surface
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	List(ctx context.Context, limit, offset int) ([]*models.Comment, error)
}

// MessageRepository defines the chat message persistence surface
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	ListHistory(ctx context.Context, limit int) ([]*models.Message, error)
}

// ForumService handles comments and chat history
type ForumService struct {
	comments CommentRepository
	messages MessageRepository
	logger   *slog.Logger
}

// NewForumService creates a new ForumService
func NewForumService(comments CommentRepository, messages MessageRepository, logger *slog.Logger) *ForumService {
	return &ForumService{
		comments: comments,
		messages: messages,
		logger:   logger,
	}
}

func (s *ForumService) CreateComment(ctx context.Context, userID, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, models.ErrBadRequest
	}

	comment, err := s.comments.Create(ctx, &models.Comment{UserID: userID, Body: body})
	if err != nil {
		s.logger.Error("failed to create comment", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return comment, nil
}

func (s *ForumService) ListComments(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	comments, err := s.comments.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list comments", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return comments, nil
}

// PostMessage persists a chat message; the hub broadcasts it afterwards
func (s *ForumService) PostMessage(ctx context.Context, userID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, models.ErrBadRequest
	}

	message, err := s.messages.Create(ctx, &models.Message{UserID: &userID, Body: body})
	if err != nil {
		s.logger.Error("failed to save chat message", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return message, nil
}

func (s *ForumService) ChatHistory(ctx context.Context, limit int) ([]*models.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	messages, err := s.messages.ListHistory(ctx, limit)
	if err != nil {
		s.logger.Error("failed to load chat history", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return messages, nil
}
