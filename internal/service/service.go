// Package service holds the catalog and review use cases. Errors returned to
// callers are *apperror.Error for expected failures; anything else is an
// internal failure.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Clark-Hu/book-reviews/internal/domain"
)

const (
	// MaxBooksPerPage caps list and search pages.
	MaxBooksPerPage = 50
	// MaxReviewsPerPage caps the review sub-list of a book detail.
	MaxReviewsPerPage = 20
)

const (
	msgBookNotFound       = "Book not found"
	msgSearchRequired     = "Search query is required"
	msgAlreadyReviewed    = "You have already reviewed this book"
	msgReviewUpdateDenied = "Review not found or you are not authorized to update it"
	msgReviewDeleteDenied = "Review not found or you are not authorized to delete it"
)

// BookStore is the book persistence both services rely on.
type BookStore interface {
	Create(ctx context.Context, params domain.NewBook, creatorID uuid.UUID) (domain.Book, error)
	List(ctx context.Context, filters domain.BookFilters, limit, offset int) ([]domain.RatedBook, error)
	Count(ctx context.Context, filters domain.BookFilters) (int64, error)
	GetRated(ctx context.Context, id uuid.UUID) (domain.RatedBook, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ReviewStore is the review persistence both services rely on.
type ReviewStore interface {
	Create(ctx context.Context, bookID, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error)
	ExistsFor(ctx context.Context, bookID, userID uuid.UUID) (bool, error)
	ListForBook(ctx context.Context, bookID uuid.UUID, limit, offset int) ([]domain.ReviewWithReviewer, error)
	CountForBook(ctx context.Context, bookID uuid.UUID) (int64, error)
	Update(ctx context.Context, id, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// capPage bounds p.Limit by maxLimit and normalizes non-positive values.
func capPage(p domain.Page, maxLimit int) domain.Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > domain.MaxPageNumber {
		p.Number = domain.MaxPageNumber
	}
	if p.Limit < 1 {
		p.Limit = domain.DefaultPageLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
