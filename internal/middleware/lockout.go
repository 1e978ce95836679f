package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/models"
	pkghttp "github.com/McKadeW/COS498-FinalForum/pkg/http"
	pkglogger "github.com/McKadeW/COS498-FinalForum/pkg/logger"
)

// maxLoginBodyBytes bounds how much of a login body the lockout check
// will buffer before handing it back to the handler.
const maxLoginBodyBytes = 1 << 20

// LockoutChecker reports whether an (ip, username) pair is currently
// locked out. Satisfied by services.LoginTracker.
type LockoutChecker interface {
	CheckLockout(ctx context.Context, ip, username string) (models.LockoutStatus, error)
}

// LoginLockout rejects login requests for (ip, username) pairs that are
// currently locked out, before any credential work happens downstream.
// The request body is buffered to peek at the username and then restored
// for the handler. Requests without a readable username pass through;
// the login handler records those as failures on its own.
func LoginLockout(tracker LockoutChecker, ipConfig *pkghttp.IPConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBodyBytes))
			if err != nil {
				pkghttp.WriteBadRequest(w, "Invalid request body")
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			var creds struct {
				Username string `json:"username"`
			}
			if err := json.Unmarshal(body, &creds); err != nil || strings.TrimSpace(creds.Username) == "" {
				next.ServeHTTP(w, r)
				return
			}
			username := strings.TrimSpace(creds.Username)

			ip := pkghttp.ExtractClientIP(r, ipConfig)
			status, err := tracker.CheckLockout(r.Context(), ip, username)
			if err != nil {
				logger.Error("lockout check failed",
					slog.String("ip", ip),
					slog.String("username", pkglogger.SanitizedUsername(username)),
					slog.String("error", err.Error()))
				pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
				return
			}

			if status.Locked {
				minutes := int((status.Remaining + time.Minute - 1) / time.Minute)
				if minutes < 1 {
					minutes = 1
				}
				logger.Warn("login blocked by lockout",
					slog.String("ip", ip),
					slog.String("username", pkglogger.SanitizedUsername(username)),
					slog.Int("retry_after_minutes", minutes))
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(status.Remaining/time.Second)+1))
				pkghttp.WriteTooManyRequests(w,
					fmt.Sprintf("Too many failed login attempts. Please try again in %d minute(s).", minutes))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
