package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
	pkghttp "github.com/McKadeW/COS498-FinalForum/pkg/http"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionReader resolves a session identifier to a live session. Both
// front ends (HTTP and realtime) go through this same contract; the store
// is the sole source of truth for who a caller is.
type SessionReader interface {
	Read(ctx context.Context, sessionID string) (*services.SessionRecord, error)
}

// RequireSession resolves the caller's identity with a single store read
// and rejects requests without a live, authenticated session.
func RequireSession(sessions SessionReader, cookieConfig CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := GetSessionCookie(r)
			if err != nil || sessionID == "" {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			record, err := sessions.Read(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					// Expired, destroyed, or malformed: drop the
					// stale cookie and force re-authentication.
					ClearSessionCookie(w, cookieConfig)
					pkghttp.WriteUnauthorized(w, "Authentication required")
					return
				}
				pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
				return
			}

			if record.Data == nil || !record.Data.Authenticated {
				ClearSessionCookie(w, cookieConfig)
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), record)))
		})
	}
}

// ContextWithSession attaches a resolved session to a context
func ContextWithSession(ctx context.Context, record *services.SessionRecord) context.Context {
	return context.WithValue(ctx, sessionContextKey, record)
}

// SessionFromContext returns the session resolved by RequireSession
func SessionFromContext(ctx context.Context) (*services.SessionRecord, bool) {
	record, ok := ctx.Value(sessionContextKey).(*services.SessionRecord)
	return record, ok
}
