package repository

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/Clark-Hu/book-reviews/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate")
)

// dialect renders postgres SQL with $n placeholders so the arguments travel
// separately to pgx.
var dialect = goqu.Dialect("postgres")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users   *UsersRepository
	Books   *BooksRepository
	Reviews *ReviewsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return &Repository{
		Users:   &UsersRepository{store: st},
		Books:   &BooksRepository{store: st},
		Reviews: &ReviewsRepository{store: st},
	}
}
