package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/repository"
)

// Reviews submits, updates and deletes reviews. Only the author of a review
// may change it.
type Reviews struct {
	books   BookStore
	reviews ReviewStore
	logger  zerolog.Logger
}

func NewReviews(books BookStore, reviews ReviewStore, logger zerolog.Logger) *Reviews {
	return &Reviews{books: books, reviews: reviews, logger: logger}
}

// SubmitReview records userID's review of bookID. Each user reviews a book
// at most once; the store constraint decides concurrent submissions.
func (s *Reviews) SubmitReview(ctx context.Context, bookID, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error) {
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return domain.Review{}, apperror.NotFound(msgBookNotFound)
	}

	reviewed, err := s.reviews.ExistsFor(ctx, bookID, userID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("check review: %w", err)
	}
	if reviewed {
		return domain.Review{}, apperror.Conflict(msgAlreadyReviewed)
	}

	review, err := s.reviews.Create(ctx, bookID, userID, in)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Review{}, apperror.Conflict(msgAlreadyReviewed)
		}
		return domain.Review{}, fmt.Errorf("submit review: %w", err)
	}
	s.logger.Info().
		Str("review_id", review.ID.String()).
		Str("book_id", bookID.String()).
		Int("rating", review.Rating).
		Msg("reviews: review submitted")
	return review, nil
}

// UpdateReview replaces rating and comment of a review userID owns.
func (s *Reviews) UpdateReview(ctx context.Context, reviewID, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error) {
	review, err := s.reviews.Update(ctx, reviewID, userID, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Review{}, apperror.NotFound(msgReviewUpdateDenied)
		}
		return domain.Review{}, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes a review userID owns.
func (s *Reviews) DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error {
	if err := s.reviews.Delete(ctx, reviewID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound(msgReviewDeleteDenied)
		}
		return fmt.Errorf("delete review: %w", err)
	}
	s.logger.Info().Str("review_id", reviewID.String()).Msg("reviews: review deleted")
	return nil
}
