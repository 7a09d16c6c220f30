package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/repository"
)

// BookPage is one page of rated books.
type BookPage struct {
	Books      []domain.RatedBook
	Pagination domain.Pagination
}

// BookDetail is a book with one page of its reviews.
type BookDetail struct {
	Book       domain.RatedBook
	Reviews    []domain.ReviewWithReviewer
	Pagination domain.Pagination
}

// SearchResult echoes the trimmed query next to the matching page.
type SearchResult struct {
	Query string
	BookPage
}

// Catalog adds, lists, fetches and searches books.
type Catalog struct {
	books   BookStore
	reviews ReviewStore
	logger  zerolog.Logger
}

func NewCatalog(books BookStore, reviews ReviewStore, logger zerolog.Logger) *Catalog {
	return &Catalog{books: books, reviews: reviews, logger: logger}
}

// AddBook stores a validated book on behalf of creatorID.
func (c *Catalog) AddBook(ctx context.Context, in domain.NewBook, creatorID uuid.UUID) (domain.Book, error) {
	book, err := c.books.Create(ctx, in, creatorID)
	if err != nil {
		return domain.Book{}, fmt.Errorf("add book: %w", err)
	}
	c.logger.Info().
		Str("book_id", book.ID.String()).
		Str("created_by", creatorID.String()).
		Msg("catalog: book added")
	return book, nil
}

// ListBooks returns a page of books, optionally filtered by author substring
// and exact genre, newest first.
func (c *Catalog) ListBooks(ctx context.Context, page domain.Page, filters domain.BookFilters) (BookPage, error) {
	filters.Query = ""
	return c.page(ctx, capPage(page, MaxBooksPerPage), filters)
}

// SearchBooks matches query against title or author. A blank query is
// rejected before any lookup.
func (c *Catalog) SearchBooks(ctx context.Context, query string, page domain.Page) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, apperror.BadRequest(msgSearchRequired)
	}
	result, err := c.page(ctx, capPage(page, MaxBooksPerPage), domain.BookFilters{Query: query})
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Query: query, BookPage: result}, nil
}

// GetBook loads a book with its rating summary and one page of reviews.
func (c *Catalog) GetBook(ctx context.Context, id uuid.UUID, page domain.Page) (BookDetail, error) {
	book, err := c.books.GetRated(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return BookDetail{}, apperror.NotFound(msgBookNotFound)
		}
		return BookDetail{}, fmt.Errorf("get book: %w", err)
	}

	page = capPage(page, MaxReviewsPerPage)
	reviews, err := c.reviews.ListForBook(ctx, id, page.Limit, page.Offset())
	if err != nil {
		return BookDetail{}, fmt.Errorf("list reviews: %w", err)
	}
	total, err := c.reviews.CountForBook(ctx, id)
	if err != nil {
		return BookDetail{}, fmt.Errorf("count reviews: %w", err)
	}

	return BookDetail{
		Book:       book,
		Reviews:    reviews,
		Pagination: domain.Paginate(page, total),
	}, nil
}

func (c *Catalog) page(ctx context.Context, page domain.Page, filters domain.BookFilters) (BookPage, error) {
	books, err := c.books.List(ctx, filters, page.Limit, page.Offset())
	if err != nil {
		return BookPage{}, fmt.Errorf("list books: %w", err)
	}
	total, err := c.books.Count(ctx, filters)
	if err != nil {
		return BookPage{}, fmt.Errorf("count books: %w", err)
	}
	return BookPage{Books: books, Pagination: domain.Paginate(page, total)}, nil
}
