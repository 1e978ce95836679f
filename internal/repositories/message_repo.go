package repositories

import (
	"context"
	"fmt"

	"github.com/McKadeW/COS498-FinalForum/internal/database"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/google/uuid"
)

type MessageRepository struct {
	db *database.DB
}

func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	query := `
		INSERT INTO messages (id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, message.ID, message.UserID, message.Body).Scan(&message.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return message, nil
}

// ListHistory returns the most recent messages, oldest first, the order
// the chat page renders them in
func (r *MessageRepository) ListHistory(ctx context.Context, limit int) ([]*models.Message, error) {
	query := `
		SELECT recent.id, recent.user_id, recent.body, recent.created_at, recent.display_name
		FROM (
			SELECT m.id, m.user_id, m.body, m.created_at,
				COALESCE(u.display_name, u.username, '') AS display_name
			FROM messages m
			LEFT JOIN users u ON m.user_id = u.id
			ORDER BY m.created_at DESC
			LIMIT $1
		) recent
		ORDER BY recent.created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Body, &m.CreatedAt, &m.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}
