package models

import (
	"time"
)

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never exposed
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	ProfileColor string     `json:"profile_color"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
