package models

import "time"

// Session is a durable session row. The payload is an opaque serialized
// bag of session attributes owned by the session store; UserID is nullable
// because a session may outlive its account (ON DELETE SET NULL).
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    *string   `json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is logically absent at t. Rows whose
// expiry has passed behave as absent to every reader even before they are
// physically purged.
func (s *Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}
