package db

import (
	"context"
	"fmt"

	"podcast-studio/internal/models"
)

// GetUser loads a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := s.db.GetContext(ctx, user, `
		SELECT id, email, password_digest, role, created_at, updated_at
		FROM users
		WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, notFound(err))
	}
	return user, nil
}
