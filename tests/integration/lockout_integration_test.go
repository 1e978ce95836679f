package integration

import (
	"context"
	"testing"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/repositories"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
	pkglogger "github.com/McKadeW/COS498-FinalForum/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(users services.AuthUserRepository, tracker services.AttemptTracker, sessions services.SessionWriter) *services.AuthService {
	logger := discardLogger()
	return services.NewAuthService(users, tracker, sessions, logger, pkglogger.NewAuditLogger(logger))
}

func lockoutConfig() services.LockoutConfig {
	return services.LockoutConfig{
		MaxFailures:     5,
		AttemptWindow:   15 * time.Minute,
		LockoutDuration: 15 * time.Minute,
	}
}

func TestLockoutDerivedFromPersistedHistory(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := repositories.NewLoginAttemptRepository(db.DB)
	tracker := services.NewLoginTracker(repo, lockoutConfig(), discardLogger())

	for i := 0; i < 5; i++ {
		tracker.RecordAttempt(ctx, "203.0.113.7", "alice", false)
	}

	status, err := tracker.CheckLockout(ctx, "203.0.113.7", "alice")
	require.NoError(t, err)
	assert.True(t, status.Locked)
	assert.Greater(t, status.Remaining, 14*time.Minute)

	// Lockout state lives entirely in storage: a brand-new tracker over
	// the same rows reaches the same decision.
	fresh := services.NewLoginTracker(repositories.NewLoginAttemptRepository(db.DB), lockoutConfig(), discardLogger())
	status, err = fresh.CheckLockout(ctx, "203.0.113.7", "alice")
	require.NoError(t, err)
	assert.True(t, status.Locked)
}

func TestLockoutSuccessBreaksStreak(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	tracker := services.NewLoginTracker(repositories.NewLoginAttemptRepository(db.DB), lockoutConfig(), discardLogger())

	for i := 0; i < 4; i++ {
		tracker.RecordAttempt(ctx, "203.0.113.7", "alice", false)
	}
	tracker.RecordAttempt(ctx, "203.0.113.7", "alice", true)
	tracker.RecordAttempt(ctx, "203.0.113.7", "alice", false)

	status, err := tracker.CheckLockout(ctx, "203.0.113.7", "alice")
	require.NoError(t, err)
	assert.False(t, status.Locked, "only the single failure after the success counts")
}

func TestLockoutPairsIsolated(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	tracker := services.NewLoginTracker(repositories.NewLoginAttemptRepository(db.DB), lockoutConfig(), discardLogger())

	for i := 0; i < 5; i++ {
		tracker.RecordAttempt(ctx, "203.0.113.7", "alice", false)
	}

	sameIP, err := tracker.CheckLockout(ctx, "203.0.113.7", "bob")
	require.NoError(t, err)
	assert.False(t, sameIP.Locked)

	sameUser, err := tracker.CheckLockout(ctx, "198.51.100.4", "alice")
	require.NoError(t, err)
	assert.False(t, sameUser.Locked)
}

func TestAttemptPruneLeavesRecentRows(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := repositories.NewLoginAttemptRepository(db.DB)
	tracker := services.NewLoginTracker(repo, lockoutConfig(), discardLogger())

	// Two old rows and one recent row
	for _, age := range []time.Duration{48 * time.Hour, 30 * time.Hour, time.Minute} {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO login_attempts (ip, username, occurred_at, success) VALUES ($1, $2, $3, $4)`,
			"203.0.113.7", "alice", time.Now().UTC().Add(-age), false)
		require.NoError(t, err)
	}

	pruned, err := tracker.PruneOldAttempts(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)

	var remaining int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM login_attempts`).Scan(&remaining))
	assert.Equal(t, 1, remaining)
}

func TestEndToEndLoginLockout(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := SeedUser(ctx, db.Pool, "alice", "hunter2!")
	require.NoError(t, err)

	users := repositories.NewUserRepository(db.DB)
	tracker := services.NewLoginTracker(repositories.NewLoginAttemptRepository(db.DB), lockoutConfig(), discardLogger())
	store := services.NewSessionStore(repositories.NewSessionRepository(db.DB), time.Hour, discardLogger())
	authService := newTestAuthService(users, tracker, store)

	// Five wrong passwords lock the pair
	for i := 0; i < 5; i++ {
		_, err := authService.Login(ctx, "alice", "wrong", "203.0.113.7")
		require.Error(t, err)
	}

	// Even the right password is now rejected without credential work
	_, err = authService.Login(ctx, "alice", "hunter2!", "203.0.113.7")
	assert.Error(t, err)

	// A different IP is unaffected
	result, err := authService.Login(ctx, "alice", "hunter2!", "198.51.100.4")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)

	record, err := store.Read(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "alice", record.Data.Username)
}
