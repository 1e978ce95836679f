package models

import "time"

// LoginAttempt is an immutable record of a single login attempt for an
// (ip, username) pair. Rows are append-only; lockout state is always
// derived from this history, never stored alongside it.
type LoginAttempt struct {
	ID         int64     `json:"id"`
	IP         string    `json:"ip"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
	Success    bool      `json:"success"`
}

// LockoutStatus is a point-in-time lockout decision for an (ip, username)
// pair. Remaining counts down to zero and is never negative; a decision is
// valid as of its own read and is not retroactively updated.
type LockoutStatus struct {
	Locked    bool
	Remaining time.Duration
}
