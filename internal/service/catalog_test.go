package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/domain"
)

func newServices() (*memStore, *Catalog, *Reviews) {
	m := newMemStore()
	books, reviews := memBooks{m}, memReviews{m}
	return m, NewCatalog(books, reviews, zerolog.Nop()), NewReviews(books, reviews, zerolog.Nop())
}

func addBooks(t *testing.T, catalog *Catalog, n int, author, genre string) {
	t.Helper()
	creator := uuid.New()
	for i := 0; i < n; i++ {
		_, err := catalog.AddBook(context.Background(), domain.NewBook{
			Title:  fmt.Sprintf("Book %d", i),
			Author: author,
			Genre:  genre,
		}, creator)
		require.NoError(t, err)
	}
}

func TestListBooksPaginationProperty(t *testing.T) {
	ctx := context.Background()
	_, catalog, _ := newServices()
	addBooks(t, catalog, 23, "Author", "Genre")

	for limit := 1; limit <= 25; limit += 4 {
		wantPages := int(math.Ceil(23 / float64(limit)))
		seen := 0
		for page := 1; page <= wantPages; page++ {
			got, err := catalog.ListBooks(ctx, domain.Page{Number: page, Limit: limit}, domain.BookFilters{})
			require.NoError(t, err)

			p := got.Pagination
			assert.Equal(t, int64(23), p.Total)
			assert.Equal(t, wantPages, p.TotalPages)
			assert.Equal(t, page < wantPages, p.HasNext, "limit %d page %d", limit, page)
			assert.Equal(t, page > 1, p.HasPrev, "limit %d page %d", limit, page)
			seen += len(got.Books)
		}
		assert.Equal(t, 23, seen, "limit %d", limit)
	}
}

func TestListBooksCapsLimitAndFilters(t *testing.T) {
	ctx := context.Background()
	_, catalog, _ := newServices()
	addBooks(t, catalog, 60, "Leo Tolstoy", "Fiction")
	addBooks(t, catalog, 3, "Frank Herbert", "Science Fiction")

	got, err := catalog.ListBooks(ctx, domain.Page{Number: 1, Limit: 500}, domain.BookFilters{})
	require.NoError(t, err)
	assert.Len(t, got.Books, MaxBooksPerPage)
	assert.Equal(t, 2, got.Pagination.TotalPages)

	got, err = catalog.ListBooks(ctx, domain.Page{Number: 1, Limit: 10}, domain.BookFilters{Author: "herb"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Pagination.Total)

	got, err = catalog.ListBooks(ctx, domain.Page{Number: 1, Limit: 10}, domain.BookFilters{Genre: "fiction"})
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.Pagination.Total)

	got, err = catalog.ListBooks(ctx, domain.Page{Number: 1, Limit: 10}, domain.BookFilters{Query: "herb"})
	require.NoError(t, err)
	assert.Equal(t, int64(63), got.Pagination.Total, "list ignores the search query")
}

func TestListBooksBeyondLastPage(t *testing.T) {
	_, catalog, _ := newServices()
	addBooks(t, catalog, 3, "A", "G")

	got, err := catalog.ListBooks(context.Background(), domain.Page{Number: 9, Limit: 10}, domain.BookFilters{})
	require.NoError(t, err)
	assert.Empty(t, got.Books)
	assert.Equal(t, 1, got.Pagination.TotalPages)
	assert.False(t, got.Pagination.HasNext)
	assert.True(t, got.Pagination.HasPrev)
}

func TestGetBookAverages(t *testing.T) {
	ctx := context.Background()
	m, catalog, reviews := newServices()
	book, err := catalog.AddBook(ctx, domain.NewBook{Title: "Rated", Author: "A", Genre: "G"}, uuid.New())
	require.NoError(t, err)

	detail, err := catalog.GetBook(ctx, book.ID, domain.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "0.0", detail.Book.Rating.FormattedAverage())
	assert.Equal(t, int64(0), detail.Book.Rating.Count)
	assert.Empty(t, detail.Reviews)

	for i, rating := range []int{5, 4, 3} {
		user := uuid.New()
		m.names[user] = fmt.Sprintf("reader-%d", i)
		_, err := reviews.SubmitReview(ctx, book.ID, user, domain.ReviewInput{Rating: rating})
		require.NoError(t, err)
	}

	detail, err = catalog.GetBook(ctx, book.ID, domain.Page{Number: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "4.0", detail.Book.Rating.FormattedAverage())
	assert.Equal(t, int64(3), detail.Book.Rating.Count)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "reader-2", detail.Reviews[0].ReviewerName, "newest review first")
	assert.Equal(t, int64(3), detail.Pagination.Total)
	assert.True(t, detail.Pagination.HasNext)
}

func TestGetBookCapsReviewPage(t *testing.T) {
	ctx := context.Background()
	_, catalog, reviews := newServices()
	book, err := catalog.AddBook(ctx, domain.NewBook{Title: "Popular", Author: "A", Genre: "G"}, uuid.New())
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		_, err := reviews.SubmitReview(ctx, book.ID, uuid.New(), domain.ReviewInput{Rating: 3})
		require.NoError(t, err)
	}

	detail, err := catalog.GetBook(ctx, book.ID, domain.Page{Number: 1, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, detail.Reviews, MaxReviewsPerPage)
	assert.Equal(t, 2, detail.Pagination.TotalPages)
}

func TestGetBookNotFound(t *testing.T) {
	_, catalog, _ := newServices()

	_, err := catalog.GetBook(context.Background(), uuid.New(), domain.Page{Number: 1, Limit: 10})
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindNotFound, appErr.Kind)
	assert.Equal(t, "Book not found", appErr.Message)
}

func TestSearchBooks(t *testing.T) {
	ctx := context.Background()
	m, catalog, _ := newServices()
	addBooks(t, catalog, 2, "Leo Tolstoy", "Fiction")
	_, err := catalog.AddBook(ctx, domain.NewBook{Title: "Dune", Author: "Frank Herbert", Genre: "SF"}, uuid.New())
	require.NoError(t, err)

	got, err := catalog.SearchBooks(ctx, "  tolstoy ", domain.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "tolstoy", got.Query)
	assert.Equal(t, int64(2), got.Pagination.Total)

	got, err = catalog.SearchBooks(ctx, "DUNE", domain.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got.Books, 1)
	assert.Equal(t, "Dune", got.Books[0].Title)

	before := m.calls
	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err := catalog.SearchBooks(ctx, blank, domain.Page{Number: 1, Limit: 10})
		var appErr *apperror.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindBadRequest, appErr.Kind)
		assert.Equal(t, "Search query is required", appErr.Message)
	}
	assert.Equal(t, before, m.calls, "blank search must not touch the store")
}

func TestCapPage(t *testing.T) {
	assert.Equal(t, domain.Page{Number: 1, Limit: 10}, capPage(domain.Page{}, 50))
	assert.Equal(t, domain.Page{Number: 2, Limit: 20}, capPage(domain.Page{Number: 2, Limit: 40}, 20))
	assert.Equal(t, domain.MaxPageNumber, capPage(domain.Page{Number: math.MaxInt, Limit: 1}, 50).Number)
}
