package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	pkgauth "github.com/McKadeW/COS498-FinalForum/pkg/auth"
	pkglogger "github.com/McKadeW/COS498-FinalForum/pkg/logger"
)

// AuthUserRepository defines the user persistence surface the gate needs
type AuthUserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// AttemptTracker is the lockout side of the gate: consulted before any
// credential work, fed after every outcome.
type AttemptTracker interface {
	CheckLockout(ctx context.Context, ip, username string) (models.LockoutStatus, error)
	RecordAttempt(ctx context.Context, ip, username string, success bool)
}

// SessionWriter is the slice of the session store the gate uses: minting a
// session on success and destroying it on logout.
type SessionWriter interface {
	Create(ctx context.Context, sessionID string, userID *string, data *SessionData) error
	Destroy(ctx context.Context, sessionID string) error
}

// sessionCreateRetries bounds the regenerate-on-collision loop. A 256-bit
// random id colliding even once is already remarkable.
const sessionCreateRetries = 3

// dummyHash keeps the unknown-username path doing the same argon2id work as
// the wrong-password path, so the two are indistinguishable by timing as
// well as by response.
var dummyHash = sync.OnceValue(func() string {
	h, err := pkgauth.HashPassword("dummy-timing-equalizer")
	if err != nil {
		panic(err)
	}
	return h
})

// AuthService is the coordination point for login and logout. It owns no
// storage: lockout state lives in the tracker, session state in the store.
type AuthService struct {
	users       AuthUserRepository
	tracker     AttemptTracker
	sessions    SessionWriter
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(users AuthUserRepository, tracker AttemptTracker, sessions SessionWriter, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		users:       users,
		tracker:     tracker,
		sessions:    sessions,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginResult carries the minted session and its owner back to the handler
type LoginResult struct {
	SessionID string
	User      *models.User
}

// Login runs one login attempt end to end: lockout check, credential
// check, attempt recording, session creation. When the pair is locked no
// credential material is touched at all: no user lookup, no hashing.
// Unknown-username and wrong-password failures are indistinguishable to
// the caller even though the history records them distinguishably.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		if username != "" {
			s.tracker.RecordAttempt(ctx, ip, username, false)
		}
		return nil, models.ErrUnauthorized
	}

	status, err := s.tracker.CheckLockout(ctx, ip, username)
	if err != nil {
		// Fail-closed policy: surface the outage so the handler can
		// refuse logins instead of silently skipping the lockout.
		s.logger.Error("lockout check failed", slog.Any("error", err))
		return nil, err
	}
	if status.Locked {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_rejected",
			Username:      username,
			IPAddress:     ip,
			FailureReason: "locked_out",
			Success:       false,
		})
		return nil, models.ErrAccountLocked
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Burn the same hashing cost as a real comparison.
			_ = pkgauth.ComparePassword(dummyHash(), password)
			s.tracker.RecordAttempt(ctx, ip, username, false)
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Username:      username,
				IPAddress:     ip,
				FailureReason: "unknown_username",
				Success:       false,
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.tracker.RecordAttempt(ctx, ip, username, false)
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ip,
			FailureReason: "invalid_password",
			Success:       false,
		})
		return nil, models.ErrUnauthorized
	}

	s.tracker.RecordAttempt(ctx, ip, username, true)

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	sessionID, err := s.createSession(ctx, user)
	if err != nil {
		// No partial state: a login whose session did not persist is a
		// failed login.
		s.logger.Error("failed to create session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ip,
		Success:   true,
	})
	s.auditLogger.LogSessionEvent("session_created", user.ID, ip)

	return &LoginResult{SessionID: sessionID, User: user}, nil
}

// createSession mints a fresh id and persists the session, regenerating on
// the (vanishing) chance of an id collision.
func (s *AuthService) createSession(ctx context.Context, user *models.User) (string, error) {
	data := &SessionData{
		Authenticated: true,
		UserID:        user.ID,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		ProfileColor:  user.ProfileColor,
	}

	var lastErr error
	for i := 0; i < sessionCreateRetries; i++ {
		sessionID, err := pkgauth.GenerateSessionID()
		if err != nil {
			return "", err
		}

		err = s.sessions.Create(ctx, sessionID, &user.ID, data)
		if err == nil {
			return sessionID, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return "", err
		}
		lastErr = err
	}

	return "", lastErr
}

// Logout destroys the session. The error is returned so the handler can
// log it, but the handler clears the caller's cookie regardless.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.Destroy(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to destroy session on logout", slog.Any("error", err))
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "logout",
		Success:   err == nil,
	})
	if err == nil {
		s.auditLogger.LogSessionEvent("session_destroyed", "", "")
	}

	return err
}

// Register creates a new account. Username and email collisions surface as
// models.ErrConflict from the storage uniqueness constraints.
func (s *AuthService) Register(ctx context.Context, username, password, email, displayName string) (*models.User, error) {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		DisplayName:  displayName,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return created, nil
}
