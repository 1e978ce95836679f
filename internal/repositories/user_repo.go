package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/McKadeW/COS498-FinalForum/internal/database"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var displayName, profileColor *string
	var lastLogin *time.Time

	err := scanner.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email,
		&displayName, &profileColor, &user.CreatedAt, &lastLogin,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if displayName != nil {
		user.DisplayName = *displayName
	}
	if profileColor != nil {
		user.ProfileColor = *profileColor
	}
	user.LastLogin = lastLogin

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, email, display_name, profile_color, created_at, last_login
		FROM users WHERE id = $1
	`

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, email, display_name, profile_color, created_at, last_login
		FROM users WHERE username = $1
	`

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, username))
}

// Create inserts a new user. Username and email uniqueness is enforced by
// the schema and surfaces as models.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, username, password_hash, email, display_name, profile_color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Email,
		nullable(user.DisplayName), nullable(user.ProfileColor),
	).Scan(&user.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return user, nil
}

// UpdateProfile changes the session-bound profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id, displayName, profileColor string) error {
	query := `
		UPDATE users SET display_name = $2, profile_color = $3 WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, displayName, nullable(profileColor))
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// TouchLastLogin stamps a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// nullable maps empty strings to NULL for optional text columns
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
