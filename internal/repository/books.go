package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/store"
)

// BooksRepository provides persistence helpers for books and their rating
// summaries.
type BooksRepository struct {
	store *store.Store
}

// Create inserts a new book row and returns the stored entity.
func (r *BooksRepository) Create(ctx context.Context, params domain.NewBook, creatorID uuid.UUID) (domain.Book, error) {
	const query = `
        INSERT INTO books (id, title, author, genre, description, published_year, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, title, author, genre, description, published_year, created_by, created_at
    `

	var book domain.Book
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, query,
			uuid.New(),
			params.Title,
			params.Author,
			params.Genre,
			params.Description,
			params.PublishedYear,
			creatorID,
		).Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Genre,
			&book.Description,
			&book.PublishedYear,
			&book.CreatedBy,
			&book.CreatedAt,
		)
	})
	if err != nil {
		return domain.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return book, nil
}

// List returns one page of books matching filters, newest first, each with
// its rating summary.
func (r *BooksRepository) List(ctx context.Context, filters domain.BookFilters, limit, offset int) ([]domain.RatedBook, error) {
	query, args, err := listBooksQuery(filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var books []domain.RatedBook
	err = r.store.WithConn(ctx, func(q store.Querier) error {
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			book, err := scanRatedBook(rows)
			if err != nil {
				return err
			}
			books = append(books, book)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Count returns how many books match filters.
func (r *BooksRepository) Count(ctx context.Context, filters domain.BookFilters) (int64, error) {
	query, args, err := countBooksQuery(filters)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	err = r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}

// GetRated loads a single book with its rating summary.
func (r *BooksRepository) GetRated(ctx context.Context, id uuid.UUID) (domain.RatedBook, error) {
	query, args, err := ratedBooksDataset().Where(goqu.I("b.id").Eq(id)).ToSQL()
	if err != nil {
		return domain.RatedBook{}, fmt.Errorf("build get query: %w", err)
	}

	var book domain.RatedBook
	err = r.store.WithConn(ctx, func(q store.Querier) error {
		var scanErr error
		book, scanErr = scanRatedBook(q.QueryRow(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RatedBook{}, ErrNotFound
		}
		return domain.RatedBook{}, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Exists reports whether a book with id is stored.
func (r *BooksRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.store.WithConn(ctx, func(q store.Querier) error {
		return q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check book: %w", err)
	}
	return exists, nil
}

func ratedBooksDataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("books").As("b")).
		Prepared(true).
		Select(
			goqu.I("b.id"),
			goqu.I("b.title"),
			goqu.I("b.author"),
			goqu.I("b.genre"),
			goqu.I("b.description"),
			goqu.I("b.published_year"),
			goqu.I("b.created_by"),
			goqu.I("b.created_at"),
			goqu.L("COALESCE(AVG(r.rating), 0)::float8").As("average_rating"),
			goqu.L("COUNT(r.id)").As("review_count"),
		).
		LeftJoin(
			goqu.T("reviews").As("r"),
			goqu.On(goqu.I("r.book_id").Eq(goqu.I("b.id"))),
		).
		GroupBy(goqu.I("b.id"))
}

func listBooksQuery(filters domain.BookFilters, limit, offset int) (string, []any, error) {
	ds := ratedBooksDataset().
		Where(bookConditions(filters)...).
		Order(goqu.I("b.created_at").Desc(), goqu.I("b.id").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	return ds.ToSQL()
}

func countBooksQuery(filters domain.BookFilters) (string, []any, error) {
	return dialect.From(goqu.T("books").As("b")).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(bookConditions(filters)...).
		ToSQL()
}

// bookConditions builds the WHERE clause shared by the page and count
// queries so both always see the same rows.
func bookConditions(filters domain.BookFilters) []exp.Expression {
	var conds []exp.Expression
	if author := strings.TrimSpace(filters.Author); author != "" {
		conds = append(conds, goqu.I("b.author").ILike(containsPattern(author)))
	}
	if genre := strings.TrimSpace(filters.Genre); genre != "" {
		conds = append(conds, goqu.L("LOWER(b.genre) = LOWER(?)", genre))
	}
	if query := strings.TrimSpace(filters.Query); query != "" {
		pattern := containsPattern(query)
		conds = append(conds, goqu.Or(
			goqu.I("b.title").ILike(pattern),
			goqu.I("b.author").ILike(pattern),
		))
	}
	return conds
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user text into an ILIKE substring pattern with the
// wildcards in the text matched literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func scanRatedBook(row pgx.Row) (domain.RatedBook, error) {
	var book domain.RatedBook
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Description,
		&book.PublishedYear,
		&book.CreatedBy,
		&book.CreatedAt,
		&book.Rating.Average,
		&book.Rating.Count,
	)
	return book, err
}
