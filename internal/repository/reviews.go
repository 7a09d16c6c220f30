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

const reviewBookUserConstraint = "reviews_book_user_key"

// ReviewsRepository provides helpers for book reviews.
type ReviewsRepository struct {
	store *store.Store
}

const reviewColumns = `id, book_id, user_id, rating, comment, created_at, updated_at`

// Create inserts a review. A second review of the same book by the same user
// yields ErrDuplicate, whether or not it raced the first.
func (r *ReviewsRepository) Create(ctx context.Context, bookID, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error) {
	query := `
        INSERT INTO reviews (id, book_id, user_id, rating, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING ` + reviewColumns

	var review domain.Review
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		var scanErr error
		review, scanErr = scanReview(q.QueryRow(ctx, query, uuid.New(), bookID, userID, in.Rating, in.Comment))
		return scanErr
	})
	if err != nil {
		if store.IsKind(err, store.KindUniqueViolation, reviewBookUserConstraint) {
			return domain.Review{}, ErrDuplicate
		}
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

// ExistsFor reports whether userID already reviewed bookID.
func (r *ReviewsRepository) ExistsFor(ctx context.Context, bookID, userID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE book_id = $1 AND user_id = $2)`

	var exists bool
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, query, bookID, userID).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return exists, nil
}

// ListForBook returns one page of a book's reviews, newest first, with the
// reviewer's display name.
func (r *ReviewsRepository) ListForBook(ctx context.Context, bookID uuid.UUID, limit, offset int) ([]domain.ReviewWithReviewer, error) {
	const query = `
        SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at, u.name
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        WHERE r.book_id = $1
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT $2 OFFSET $3
    `

	var reviews []domain.ReviewWithReviewer
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		rows, err := q.Query(ctx, query, bookID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var item domain.ReviewWithReviewer
			if err := rows.Scan(
				&item.ID,
				&item.BookID,
				&item.UserID,
				&item.Rating,
				&item.Comment,
				&item.CreatedAt,
				&item.UpdatedAt,
				&item.ReviewerName,
			); err != nil {
				return err
			}
			reviews = append(reviews, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// CountForBook returns how many reviews bookID has.
func (r *ReviewsRepository) CountForBook(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var total int64
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE book_id = $1`, bookID).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return total, nil
}

// Update rewrites rating and comment of a review owned by userID. A missing
// review and one owned by someone else both yield ErrNotFound.
func (r *ReviewsRepository) Update(ctx context.Context, id, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error) {
	query := `
        UPDATE reviews
        SET rating = $3, comment = $4, updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + reviewColumns

	var review domain.Review
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		var scanErr error
		review, scanErr = scanReview(q.QueryRow(ctx, query, id, userID, in.Rating, in.Comment))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Delete removes a review owned by userID, with the same not-found rule as Update.
func (r *ReviewsRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.BookID,
		&review.UserID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	return review, err
}
