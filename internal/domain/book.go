package domain

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Book represents the canonical book entity in the database/service.
type Book struct {
	ID            uuid.UUID
	Title         string
	Author        string
	Genre         string
	Description   *string
	PublishedYear *int
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
}

// NewBook carries the caller-supplied fields of a book.
type NewBook struct {
	Title         string
	Author        string
	Genre         string
	Description   *string
	PublishedYear *int
}

// RatingSummary provides average and count for a book's reviews.
type RatingSummary struct {
	Average float64
	Count   int64
}

// FormattedAverage renders the average with exactly one decimal, e.g. "4.0".
func (r RatingSummary) FormattedAverage() string {
	return strconv.FormatFloat(RoundToOneDecimal(r.Average), 'f', 1, 64)
}

// RoundToOneDecimal rounds half away from zero at the first decimal.
func RoundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10.0
}

// RatedBook is a book together with its derived rating summary.
type RatedBook struct {
	Book
	Rating RatingSummary
}

// BookFilters narrows list and search queries. Empty fields are ignored.
type BookFilters struct {
	Author string
	Genre  string
	// Query matches title or author.
	Query string
}
