package repositories

import (
	"context"
	"fmt"

	"github.com/McKadeW/COS498-FinalForum/internal/database"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/google/uuid"
)

type CommentRepository struct {
	db *database.DB
}

func NewCommentRepository(db *database.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	query := `
		INSERT INTO comments (id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, comment.ID, comment.UserID, comment.Body).Scan(&comment.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return comment, nil
}

// List returns comments newest first, with the author's display name joined in
func (r *CommentRepository) List(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	query := `
		SELECT c.id, c.user_id, c.body, c.created_at, COALESCE(u.display_name, u.username)
		FROM comments c
		JOIN users u ON c.user_id = u.id
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Body, &c.CreatedAt, &c.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}
