package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (email, password_hash, created_at)
VALUES ($1, $2, $3)
`, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return domain.WrapError(domain.ErrConflict, "create user", fmt.Errorf("email already registered: %s", user.Email))
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUser(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, `
SELECT email, password_hash, created_at
FROM users
WHERE email = $1
`, email).Scan(&user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("email=%s", email))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
