package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrStorageUnavailable means the persistence layer could not be
	// reached or a write against it failed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrAccountLocked means an (ip, username) pair is locked out after
	// repeated failed login attempts.
	ErrAccountLocked = errors.New("account is temporarily locked")
)
