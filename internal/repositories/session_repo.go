package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/database"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
)

// SessionRepository handles database operations for sessions. Atomicity
// guarantees live here: create conflicts are closed by the session_id
// primary key, and expiry extension is serialized by row-level GREATEST
// so a stale concurrent touch can never move expiry backward.
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session row. Returns models.ErrConflict when session_id
// already exists, via the primary key rather than a check-then-insert.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (session_id, user_id, expires_at, payload)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		session.SessionID,
		session.UserID,
		session.ExpiresAt,
		session.Payload,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

// Get returns the raw session row, expired or not. Lazy-expiry semantics
// belong to the session store, which also owns the opportunistic delete.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT session_id, user_id, expires_at, payload, created_at
		FROM sessions WHERE session_id = $1
	`

	var s models.Session
	err := r.db.Pool.QueryRow(ctx, query, sessionID).Scan(
		&s.SessionID, &s.UserID, &s.ExpiresAt, &s.Payload, &s.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &s, nil
}

// Touch refreshes expires_at to newExpiry (never moving it backward) and,
// when payload is non-nil, replaces the payload last-writer-wins. Rows that
// are already expired behave as absent.
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, payload []byte, newExpiry time.Time) error {
	query := `
		UPDATE sessions
		SET payload = COALESCE($2, payload),
		    expires_at = GREATEST(expires_at, $3)
		WHERE session_id = $1 AND expires_at > CURRENT_TIMESTAMP
	`

	tag, err := r.db.Pool.Exec(ctx, query, sessionID, payload, newExpiry)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes a session row. Deleting an absent row is not an error.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	query := `DELETE FROM sessions WHERE session_id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpired removes every row whose expiry has passed and returns the
// count. Safe to run concurrently with any other session operation.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP`

	tag, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
