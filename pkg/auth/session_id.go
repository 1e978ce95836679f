package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SessionIDLength is the entropy of a session identifier in bytes (256 bits)
const SessionIDLength = 32

// GenerateSessionID mints a fresh, unguessable session identifier. A new id
// is generated on every successful login; identifiers are never reused for
// a re-authenticating user, which is what forecloses session fixation.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
