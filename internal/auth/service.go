// Package auth registers and authenticates users and issues the bearer
// tokens that gate write operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/repository"
)

const (
	msgUserExists         = "User already exists with this email"
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidToken       = "Invalid or expired token"
)

// UserStore is the persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, params repository.UserCreateParams) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Options configures the service.
type Options struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	Logger     zerolog.Logger
}

// Service handles signup, login and token verification.
type Service struct {
	users     UserStore
	tokens    *Tokens
	cost      int
	dummyHash string
	logger    zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(users UserStore, opts Options) (*Service, error) {
	// Compared against when the email is unknown so both login failures cost
	// one bcrypt comparison.
	dummy, err := HashPassword("book-reviews-dummy-password", opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{
		users:     users,
		tokens:    NewTokens(opts.Secret, opts.TokenTTL),
		cost:      opts.BcryptCost,
		dummyHash: dummy,
		logger:    opts.Logger,
	}, nil
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, email, password, name string) (domain.User, string, error) {
	email = NormalizeEmail(email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return domain.User{}, "", apperror.Conflict(msgUserExists)
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return domain.User{}, "", apperror.Validation([]string{`"password" length must be less than or equal to 72 bytes`})
		}
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, repository.UserCreateParams{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, "", apperror.Conflict(msgUserExists)
		}
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", err
	}
	s.logger.Info().Str("user_id", user.ID.String()).Msg("auth: user registered")
	return user, token, nil
}

// Authenticate checks credentials. An unknown email and a wrong password
// produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, "", fmt.Errorf("load user: %w", err)
		}
		_ = CheckPassword(password, s.dummyHash)
		return domain.User{}, "", apperror.Unauthorized(msgInvalidCredentials)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return domain.User{}, "", apperror.Unauthorized(msgInvalidCredentials)
		}
		return domain.User{}, "", fmt.Errorf("compare password: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// VerifyToken validates a bearer token.
func (s *Service) VerifyToken(token string) (Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("auth: token rejected")
		return Identity{}, apperror.Unauthorized(msgInvalidToken)
	}
	return id, nil
}
