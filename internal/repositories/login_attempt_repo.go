package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/database"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
)

// LoginAttemptRepository handles database operations for login attempts.
// Attempts are append-only; nothing here ever updates or deletes a row
// except the retention pruner.
type LoginAttemptRepository struct {
	db *database.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// RecordAttempt appends a login attempt
func (r *LoginAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (ip, username, occurred_at, success)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.IP,
		attempt.Username,
		attempt.OccurredAt,
		attempt.Success,
	)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}

	return nil
}

// ListRecentAttempts returns all attempts for an (ip, username) pair at or
// after since, newest first. The caller scans the list to derive lockout
// state, so ordering matters.
func (r *LoginAttemptRepository) ListRecentAttempts(ctx context.Context, ip, username string, since time.Time) ([]*models.LoginAttempt, error) {
	query := `
		SELECT id, ip, username, occurred_at, success
		FROM login_attempts
		WHERE ip = $1 AND username = $2 AND occurred_at >= $3
		ORDER BY occurred_at DESC, id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, ip, username, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query login attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*models.LoginAttempt, 0)
	for rows.Next() {
		var a models.LoginAttempt
		if err := rows.Scan(&a.ID, &a.IP, &a.Username, &a.OccurredAt, &a.Success); err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		attempts = append(attempts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating login attempts: %w", err)
	}

	return attempts, nil
}

// DeleteAttemptsBefore prunes attempts older than cutoff and returns the
// number of rows removed. Retention is operational only; lockout
// correctness relies on the trailing window, not on pruning.
func (r *LoginAttemptRepository) DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_attempts WHERE occurred_at < $1`

	tag, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune login attempts: %w", err)
	}

	return tag.RowsAffected(), nil
}
