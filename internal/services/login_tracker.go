package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
)

// AttemptRepository defines the persistence surface the tracker needs
type AttemptRepository interface {
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error
	ListRecentAttempts(ctx context.Context, ip, username string, since time.Time) ([]*models.LoginAttempt, error)
	DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LockoutConfig holds the lockout policy. Values come from configuration;
// the algorithm never hard-codes them.
type LockoutConfig struct {
	// MaxFailures locks a pair once this many consecutive failures land
	// inside the window.
	MaxFailures int
	// AttemptWindow is the trailing span over which failures count.
	AttemptWindow time.Duration
	// LockoutDuration anchors to the newest qualifying failure.
	LockoutDuration time.Duration
	// FailOpen selects the behavior of CheckLockout during a storage
	// outage: true reports "not locked" (login proceeds untracked),
	// false propagates ErrStorageUnavailable so the caller can refuse
	// logins outright. Default policy is fail-closed.
	FailOpen bool
}

// LoginTracker derives lockout state for (ip, username) pairs from their
// append-only attempt history. There is no cached counter and no cross-call
// locking: RecordAttempt is a pure append and CheckLockout is a
// point-in-time read, so decisions are valid as of their own read and
// interleavings resolve by definition.
type LoginTracker struct {
	repo   AttemptRepository
	config LockoutConfig
	logger *slog.Logger
}

// NewLoginTracker creates a new LoginTracker
func NewLoginTracker(repo AttemptRepository, config LockoutConfig, logger *slog.Logger) *LoginTracker {
	return &LoginTracker{
		repo:   repo,
		config: config,
		logger: logger,
	}
}

// RecordAttempt appends one attempt to the history. Storage errors are
// logged and swallowed: a tracker outage must degrade to "no lockout
// enforced", never to "no login possible".
func (t *LoginTracker) RecordAttempt(ctx context.Context, ip, username string, success bool) {
	attempt := &models.LoginAttempt{
		IP:         ip,
		Username:   username,
		OccurredAt: time.Now().UTC(),
		Success:    success,
	}

	if err := t.repo.RecordAttempt(ctx, attempt); err != nil {
		t.logger.Error("failed to record login attempt",
			slog.String("ip", ip),
			slog.Any("error", err))
	}
}

// CheckLockout computes the lockout state for an (ip, username) pair from
// its attempt history inside the trailing window. Failures are counted
// newest-first and the count stops at the first success, so a successful
// login resets the streak for every later check. The remaining time is the
// lockout duration anchored to the newest failure, clamped so it never goes
// negative and never exceeds the configured duration.
func (t *LoginTracker) CheckLockout(ctx context.Context, ip, username string) (models.LockoutStatus, error) {
	now := time.Now().UTC()
	since := now.Add(-t.config.AttemptWindow)

	attempts, err := t.repo.ListRecentAttempts(ctx, ip, username, since)
	if err != nil {
		if t.config.FailOpen {
			t.logger.Error("lockout check degraded to fail-open",
				slog.String("ip", ip),
				slog.Any("error", err))
			return models.LockoutStatus{}, nil
		}
		return models.LockoutStatus{}, fmt.Errorf("%w: listing login attempts: %v", models.ErrStorageUnavailable, err)
	}

	// attempts arrive newest-first
	consecutive := 0
	var newestFailure time.Time
	for _, a := range attempts {
		if a.Success {
			break
		}
		if consecutive == 0 {
			newestFailure = a.OccurredAt
		}
		consecutive++
	}

	if consecutive < t.config.MaxFailures {
		return models.LockoutStatus{}, nil
	}

	remaining := t.config.LockoutDuration - now.Sub(newestFailure)
	if remaining <= 0 {
		return models.LockoutStatus{}, nil
	}
	if remaining > t.config.LockoutDuration {
		remaining = t.config.LockoutDuration
	}

	return models.LockoutStatus{Locked: true, Remaining: remaining}, nil
}

// PruneOldAttempts removes attempts older than the retention horizon. This
// is housekeeping for table growth; the trailing window already excludes
// old rows from lockout decisions.
func (t *LoginTracker) PruneOldAttempts(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return t.repo.DeleteAttemptsBefore(ctx, cutoff)
}
