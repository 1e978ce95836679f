package background

import (
	"context"
	"log/slog"
	"time"
)

// SessionSweeper removes expired session rows.
type SessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// AttemptPruner removes login attempt rows older than the retention
// horizon. Pruning is an operational concern only; lockout decisions
// never depend on it.
type AttemptPruner interface {
	PruneOldAttempts(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupManager periodically sweeps expired sessions and prunes old
// login attempts. Expiry is enforced lazily on every read, so the
// sweeper only keeps table growth bounded.
type CleanupManager struct {
	sessions  SessionSweeper
	attempts  AttemptPruner
	retention time.Duration
	logger    *slog.Logger
	interval  time.Duration
	stopCh    chan struct{}
}

func NewCleanupManager(
	sessions SessionSweeper,
	attempts AttemptPruner,
	retention time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *CleanupManager {
	return &CleanupManager{
		sessions:  sessions,
		attempts:  attempts,
		retention: retention,
		logger:    logger,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	swept, err := cm.sessions.SweepExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired sessions", slog.Any("error", err))
	} else if swept > 0 {
		cm.logger.Info("expired session sweep completed", slog.Int64("rows_deleted", swept))
	}

	pruned, err := cm.attempts.PruneOldAttempts(cleanupCtx, cm.retention)
	if err != nil {
		cm.logger.Error("failed to prune login attempts", slog.Any("error", err))
	} else if pruned > 0 {
		cm.logger.Info("login attempt prune completed", slog.Int64("rows_deleted", pruned))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
