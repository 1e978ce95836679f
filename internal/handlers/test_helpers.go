package handlers

import (
	"context"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
)

// mockAuthService implements AuthServiceInterface with overridable funcs
type mockAuthService struct {
	LoginFunc    func(ctx context.Context, username, password, ip string) (*services.LoginResult, error)
	LogoutFunc   func(ctx context.Context, sessionID string) error
	RegisterFunc func(ctx context.Context, username, password, email, displayName string) (*models.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password, ip string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, ip)
	}
	return nil, models.ErrUnauthorized
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) Register(ctx context.Context, username, password, email, displayName string) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, password, email, displayName)
	}
	return &models.User{ID: "u1", Username: username, DisplayName: displayName}, nil
}

// mockCommentService implements CommentServiceInterface
type mockCommentService struct {
	CreateCommentFunc func(ctx context.Context, userID, body string) (*models.Comment, error)
	ListCommentsFunc  func(ctx context.Context, limit, offset int) ([]*models.Comment, error)
}

func (m *mockCommentService) CreateComment(ctx context.Context, userID, body string) (*models.Comment, error) {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, userID, body)
	}
	return &models.Comment{ID: "c1", UserID: userID, Body: body}, nil
}

func (m *mockCommentService) ListComments(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, limit, offset)
	}
	return []*models.Comment{}, nil
}
