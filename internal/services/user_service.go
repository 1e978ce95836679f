package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
)

// UserRepository defines the user persistence surface for profile operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, displayName, profileColor string) error
}

// SessionToucher mutates session-bound state in place when profile fields
// change, so both front ends observe the change on their next read.
type SessionToucher interface {
	Touch(ctx context.Context, sessionID string, data *SessionData) error
}

// UserService handles profile business logic
type UserService struct {
	users    UserRepository
	sessions SessionToucher
	logger   *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserRepository, sessions SessionToucher, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// UpdateProfile changes the display name and profile color and writes the
// new values through to the caller's session payload.
func (s *UserService) UpdateProfile(ctx context.Context, userID, sessionID, displayName, profileColor string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user for profile update", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Display names must not shadow login names
	if displayName == user.Username {
		return nil, models.ErrBadRequest
	}

	if err := s.users.UpdateProfile(ctx, userID, displayName, profileColor); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update profile", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user.DisplayName = displayName
	user.ProfileColor = profileColor

	data := &SessionData{
		Authenticated: true,
		UserID:        user.ID,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		ProfileColor:  user.ProfileColor,
	}
	if err := s.sessions.Touch(ctx, sessionID, data); err != nil {
		// The session may have expired between the request's read and
		// now; the next request will force re-authentication anyway.
		s.logger.Warn("failed to write profile change to session", slog.Any("error", err))
	}

	return user, nil
}
