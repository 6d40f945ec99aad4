package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// UserRepository handles user rows.
type UserRepository struct {
	db Querier
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates or updates a user by Spotify id.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.DisplayName, user.Email).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// Get retrieves a user by Spotify id.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, display_name, email, created_at, updated_at, last_analyzed_at
		FROM users
		WHERE id = $1
	`
	var user User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastAnalyzedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// TouchAnalyzed records when a user's playlist analysis last ran.
func (r *UserRepository) TouchAnalyzed(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_analyzed_at = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("updating last_analyzed_at: %w", err)
	}
	return nil
}
