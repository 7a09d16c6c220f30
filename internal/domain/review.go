package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review represents a single user's review of a book.
type Review struct {
	ID        uuid.UUID
	BookID    uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewInput is the mutable part of a review.
type ReviewInput struct {
	Rating  int
	Comment *string
}

// ReviewWithReviewer adds the reviewer's display name for book detail pages.
type ReviewWithReviewer struct {
	Review
	ReviewerName string
}
