package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/store"
)

const userEmailConstraint = "users_email_key"

// UsersRepository persists accounts.
type UsersRepository struct {
	store *store.Store
}

// UserCreateParams bundles the fields required to create a user.
type UserCreateParams struct {
	Email        string
	Name         string
	PasswordHash string
}

// Create inserts a user. A taken email yields ErrDuplicate.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	const query = `
        INSERT INTO users (id, email, password_hash, name)
        VALUES ($1,$2,$3,$4)
        RETURNING id, email, password_hash, name, created_at
    `

	var user domain.User
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, query, uuid.New(), params.Email, params.PasswordHash, params.Name).Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Name,
			&user.CreatedAt,
		)
	})
	if err != nil {
		if store.IsKind(err, store.KindUniqueViolation, userEmailConstraint) {
			return domain.User{}, ErrDuplicate
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByEmail loads a user including the password hash.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
        SELECT id, email, password_hash, name, created_at
        FROM users
        WHERE email = $1
    `

	var user domain.User
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, query, email).Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Name,
			&user.CreatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// EmailExists reports whether an account already uses email.
func (r *UsersRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}
