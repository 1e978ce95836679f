package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
)

// SessionRepository defines the persistence surface the session store needs
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Touch(ctx context.Context, sessionID string, payload []byte, newExpiry time.Time) error
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionData is the session payload. It is serialized as JSON so fields
// added by newer code are simply ignored by older readers and vice versa;
// a stored payload with unknown fields never breaks a read.
type SessionData struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Username      string `json:"username,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	ProfileColor  string `json:"profile_color,omitempty"`
}

// SessionRecord is a live session as seen by readers: identity plus the
// deserialized payload. Expired and malformed rows never surface here.
type SessionRecord struct {
	SessionID string
	UserID    *string
	ExpiresAt time.Time
	Data      *SessionData
}

// SessionStore is the durable session store shared by the HTTP request
// path and the realtime connection path. No in-memory state is
// authoritative: every operation goes to the backing store, so state
// survives process restart by construction.
type SessionStore struct {
	repo   SessionRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(repo SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

// TTL returns the configured session lifetime, which is also the extension
// applied by Touch.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create persists a new session under sessionID. Returns models.ErrConflict
// when the id already denotes a live session; the conflict check is atomic
// with the insert (storage uniqueness constraint, not check-then-act).
func (s *SessionStore) Create(ctx context.Context, sessionID string, userID *string, data *SessionData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize session payload: %w", err)
	}

	session := &models.Session{
		SessionID: sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
		Payload:   payload,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.ErrConflict
		}
		return fmt.Errorf("%w: creating session: %v", models.ErrStorageUnavailable, err)
	}

	return nil
}

// Read returns the live session for sessionID, or models.ErrNotFound when
// no row exists, the row has expired (lazy expiry), or its payload is
// malformed. Expired and malformed rows are deleted best-effort; failing
// to delete them never fails the read.
func (s *SessionStore) Read(ctx context.Context, sessionID string) (*SessionRecord, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading session: %v", models.ErrStorageUnavailable, err)
	}

	if session.Expired(time.Now().UTC()) {
		s.deleteQuietly(ctx, sessionID, "expired")
		return nil, models.ErrNotFound
	}

	var data SessionData
	if err := json.Unmarshal(session.Payload, &data); err != nil {
		// Malformed payloads force re-authentication instead of
		// crashing every reader that touches the row.
		s.logger.Warn("session payload failed to deserialize",
			slog.Any("error", err))
		s.deleteQuietly(ctx, sessionID, "malformed")
		return nil, models.ErrNotFound
	}

	return &SessionRecord{
		SessionID: session.SessionID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		Data:      &data,
	}, nil
}

// Touch refreshes the session's expiry to now+TTL and, when data is
// non-nil, replaces the payload. Concurrent touches race last-writer-wins
// on the payload, but the expiry can only move forward. Returns
// models.ErrNotFound when the session is absent or already expired.
func (s *SessionStore) Touch(ctx context.Context, sessionID string, data *SessionData) error {
	var payload []byte
	if data != nil {
		var err error
		if payload, err = json.Marshal(data); err != nil {
			return fmt.Errorf("failed to serialize session payload: %w", err)
		}
	}

	newExpiry := time.Now().UTC().Add(s.ttl)

	if err := s.repo.Touch(ctx, sessionID, payload, newExpiry); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("%w: touching session: %v", models.ErrStorageUnavailable, err)
	}

	return nil
}

// Destroy removes the session. Destroying an absent session is success.
func (s *SessionStore) Destroy(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: destroying session: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

// SweepExpired eagerly deletes every expired row and returns the count.
// Lazy expiry keeps readers correct regardless of sweep cadence; this only
// reclaims storage.
func (s *SessionStore) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: sweeping sessions: %v", models.ErrStorageUnavailable, err)
	}
	return count, nil
}

func (s *SessionStore) deleteQuietly(ctx context.Context, sessionID, reason string) {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("best-effort session cleanup failed",
			slog.String("reason", reason),
			slog.Any("error", err))
	}
}
