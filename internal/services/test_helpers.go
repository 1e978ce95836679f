package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockAttemptRepository implements AttemptRepository for testing
type MockAttemptRepository struct {
	RecordAttemptFunc        func(ctx context.Context, attempt *models.LoginAttempt) error
	ListRecentAttemptsFunc   func(ctx context.Context, ip, username string, since time.Time) ([]*models.LoginAttempt, error)
	DeleteAttemptsBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordAttemptFunc != nil {
		return m.RecordAttemptFunc(ctx, attempt)
	}
	return nil
}

func (m *MockAttemptRepository) ListRecentAttempts(ctx context.Context, ip, username string, since time.Time) ([]*models.LoginAttempt, error) {
	if m.ListRecentAttemptsFunc != nil {
		return m.ListRecentAttemptsFunc(ctx, ip, username, since)
	}
	return []*models.LoginAttempt{}, nil
}

func (m *MockAttemptRepository) DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteAttemptsBeforeFunc != nil {
		return m.DeleteAttemptsBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc        func(ctx context.Context, session *models.Session) error
	GetFunc           func(ctx context.Context, sessionID string) (*models.Session, error)
	TouchFunc         func(ctx context.Context, sessionID string, payload []byte, newExpiry time.Time) error
	DeleteFunc        func(ctx context.Context, sessionID string) error
	DeleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, sessionID)
	}
	return nil, models.ErrNotFound
}

func (m *MockSessionRepository) Touch(ctx context.Context, sessionID string, payload []byte, newExpiry time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, sessionID, payload, newExpiry)
	}
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockAuthUserRepository implements AuthUserRepository for testing
type MockAuthUserRepository struct {
	GetByUsernameFunc  func(ctx context.Context, username string) (*models.User, error)
	CreateFunc         func(ctx context.Context, user *models.User) (*models.User, error)
	TouchLastLoginFunc func(ctx context.Context, id string) error
}

func (m *MockAuthUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockAuthUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockAuthUserRepository) TouchLastLogin(ctx context.Context, id string) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id)
	}
	return nil
}

// MockAttemptTracker implements AttemptTracker for testing
type MockAttemptTracker struct {
	CheckLockoutFunc  func(ctx context.Context, ip, username string) (models.LockoutStatus, error)
	RecordAttemptFunc func(ctx context.Context, ip, username string, success bool)

	Recorded []bool
}

func (m *MockAttemptTracker) CheckLockout(ctx context.Context, ip, username string) (models.LockoutStatus, error) {
	if m.CheckLockoutFunc != nil {
		return m.CheckLockoutFunc(ctx, ip, username)
	}
	return models.LockoutStatus{}, nil
}

func (m *MockAttemptTracker) RecordAttempt(ctx context.Context, ip, username string, success bool) {
	m.Recorded = append(m.Recorded, success)
	if m.RecordAttemptFunc != nil {
		m.RecordAttemptFunc(ctx, ip, username, success)
	}
}

// MockSessionWriter implements SessionWriter for testing
type MockSessionWriter struct {
	CreateFunc  func(ctx context.Context, sessionID string, userID *string, data *SessionData) error
	DestroyFunc func(ctx context.Context, sessionID string) error

	CreatedIDs []string
}

func (m *MockSessionWriter) Create(ctx context.Context, sessionID string, userID *string, data *SessionData) error {
	m.CreatedIDs = append(m.CreatedIDs, sessionID)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sessionID, userID, data)
	}
	return nil
}

func (m *MockSessionWriter) Destroy(ctx context.Context, sessionID string) error {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, sessionID)
	}
	return nil
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, id, displayName, profileColor string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id, displayName, profileColor string) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, displayName, profileColor)
	}
	return nil
}

// MockSessionToucher implements SessionToucher for testing
type MockSessionToucher struct {
	TouchFunc func(ctx context.Context, sessionID string, data *SessionData) error
}

func (m *MockSessionToucher) Touch(ctx context.Context, sessionID string, data *SessionData) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, sessionID, data)
	}
	return nil
}

// MockCommentRepository implements CommentRepository for testing
type MockCommentRepository struct {
	CreateFunc func(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListFunc   func(ctx context.Context, limit, offset int) ([]*models.Comment, error)
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	return comment, nil
}

func (m *MockCommentRepository) List(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.Comment{}, nil
}

// MockMessageRepository implements MessageRepository for testing
type MockMessageRepository struct {
	CreateFunc      func(ctx context.Context, message *models.Message) (*models.Message, error)
	ListHistoryFunc func(ctx context.Context, limit int) ([]*models.Message, error)
}

func (m *MockMessageRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	return message, nil
}

func (m *MockMessageRepository) ListHistory(ctx context.Context, limit int) ([]*models.Message, error) {
	if m.ListHistoryFunc != nil {
		return m.ListHistoryFunc(ctx, limit)
	}
	return []*models.Message{}, nil
}
