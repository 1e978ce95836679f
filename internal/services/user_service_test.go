package services

import (
	"context"
	"errors"
	"testing"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile_WritesThroughToSession(t *testing.T) {
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "alice", DisplayName: "Alice"}, nil
		},
	}
	var touched *SessionData
	sessions := &MockSessionToucher{
		TouchFunc: func(ctx context.Context, sessionID string, data *SessionData) error {
			if sessionID != "sess-abc" {
				t.Errorf("touched session %q", sessionID)
			}
			touched = data
			return nil
		},
	}
	service := NewUserService(users, sessions, testLogger())

	user, err := service.UpdateProfile(context.Background(), "u1", "sess-abc", "Ace", "#336699")
	require.NoError(t, err)
	assert.Equal(t, "Ace", user.DisplayName)
	assert.Equal(t, "#336699", user.ProfileColor)

	require.NotNil(t, touched, "session payload must be refreshed")
	assert.Equal(t, "Ace", touched.DisplayName)
	assert.Equal(t, "#336699", touched.ProfileColor)
	assert.True(t, touched.Authenticated)
}

func TestUserService_UpdateProfile_DisplayNameCannotShadowUsername(t *testing.T) {
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		},
		UpdateProfileFunc: func(ctx context.Context, id, displayName, profileColor string) error {
			t.Fatal("update must not run for a rejected display name")
			return nil
		},
	}
	service := NewUserService(users, &MockSessionToucher{}, testLogger())

	_, err := service.UpdateProfile(context.Background(), "u1", "sess-abc", "alice", "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserService_UpdateProfile_SessionTouchFailureDoesNotFailUpdate(t *testing.T) {
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		},
	}
	sessions := &MockSessionToucher{
		TouchFunc: func(ctx context.Context, sessionID string, data *SessionData) error {
			return errors.New("connection refused")
		},
	}
	service := NewUserService(users, sessions, testLogger())

	user, err := service.UpdateProfile(context.Background(), "u1", "sess-abc", "Ace", "")
	require.NoError(t, err, "profile row update already succeeded")
	assert.Equal(t, "Ace", user.DisplayName)
}

func TestUserService_UpdateProfile_UnknownUser(t *testing.T) {
	service := NewUserService(&MockUserRepository{}, &MockSessionToucher{}, testLogger())

	_, err := service.UpdateProfile(context.Background(), "ghost", "sess-abc", "Ace", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
