package models

import "time"

// Message is a persisted live-chat message. UserID is nullable so chat
// history survives account deletion.
type Message struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`

	// Joined from users for display; empty for deleted accounts.
	DisplayName string `json:"display_name"`
}
