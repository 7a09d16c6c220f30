package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/repository"
)

// memStore is an in-memory BookStore and ReviewStore with the same
// uniqueness and ownership rules as the SQL repositories.
type memStore struct {
	mu      sync.Mutex
	clock   time.Time
	books   []domain.Book
	reviews []domain.Review
	names   map[uuid.UUID]string
	calls   int
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		names: map[uuid.UUID]string{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type memBooks struct{ *memStore }

type memReviews struct{ *memStore }

func (m memBooks) Create(_ context.Context, params domain.NewBook, creatorID uuid.UUID) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	b := domain.Book{
		ID:            uuid.New(),
		Title:         params.Title,
		Author:        params.Author,
		Genre:         params.Genre,
		Description:   params.Description,
		PublishedYear: params.PublishedYear,
		CreatedBy:     creatorID,
		CreatedAt:     m.tick(),
	}
	m.books = append(m.books, b)
	return b, nil
}

func (m memBooks) matching(f domain.BookFilters) []domain.RatedBook {
	var out []domain.RatedBook
	for _, b := range m.books {
		if f.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(f.Author)) {
			continue
		}
		if f.Genre != "" && !strings.EqualFold(b.Genre, f.Genre) {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			if !strings.Contains(strings.ToLower(b.Title), q) && !strings.Contains(strings.ToLower(b.Author), q) {
				continue
			}
		}
		out = append(out, m.rate(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m memBooks) rate(b domain.Book) domain.RatedBook {
	var sum, n int
	for _, r := range m.reviews {
		if r.BookID == b.ID {
			sum += r.Rating
			n++
		}
	}
	rb := domain.RatedBook{Book: b}
	if n > 0 {
		rb.Rating = domain.RatingSummary{Average: float64(sum) / float64(n), Count: int64(n)}
	}
	return rb
}

func (m memBooks) List(_ context.Context, f domain.BookFilters, limit, offset int) ([]domain.RatedBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	all := m.matching(f)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m memBooks) Count(_ context.Context, f domain.BookFilters) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return int64(len(m.matching(f))), nil
}

func (m memBooks) GetRated(_ context.Context, id uuid.UUID) (domain.RatedBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, b := range m.books {
		if b.ID == id {
			return m.rate(b), nil
		}
	}
	return domain.RatedBook{}, repository.ErrNotFound
}

func (m memBooks) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, b := range m.books {
		if b.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m memReviews) Create(_ context.Context, bookID, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, r := range m.reviews {
		if r.BookID == bookID && r.UserID == userID {
			return domain.Review{}, repository.ErrDuplicate
		}
	}
	now := m.tick()
	r := domain.Review{ID: uuid.New(), BookID: bookID, UserID: userID, Rating: in.Rating, Comment: in.Comment, CreatedAt: now, UpdatedAt: now}
	m.reviews = append(m.reviews, r)
	return r, nil
}

func (m memReviews) ExistsFor(_ context.Context, bookID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, r := range m.reviews {
		if r.BookID == bookID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m memReviews) ListForBook(_ context.Context, bookID uuid.UUID, limit, offset int) ([]domain.ReviewWithReviewer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var all []domain.ReviewWithReviewer
	for _, r := range m.reviews {
		if r.BookID == bookID {
			all = append(all, domain.ReviewWithReviewer{Review: r, ReviewerName: m.names[r.UserID]})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m memReviews) CountForBook(_ context.Context, bookID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var n int64
	for _, r := range m.reviews {
		if r.BookID == bookID {
			n++
		}
	}
	return n, nil
}

func (m memReviews) Update(_ context.Context, id, userID uuid.UUID, in domain.ReviewInput) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for i, r := range m.reviews {
		if r.ID == id && r.UserID == userID {
			r.Rating = in.Rating
			r.Comment = in.Comment
			r.UpdatedAt = m.tick()
			m.reviews[i] = r
			return r, nil
		}
	}
	return domain.Review{}, repository.ErrNotFound
}

func (m memReviews) Delete(_ context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for i, r := range m.reviews {
		if r.ID == id && r.UserID == userID {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// racingReviews reports "not yet reviewed" on the pre-check and then loses
// the insert, as the second of two concurrent submissions would.
type racingReviews struct{ memReviews }

func (racingReviews) ExistsFor(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (racingReviews) Create(context.Context, uuid.UUID, uuid.UUID, domain.ReviewInput) (domain.Review, error) {
	return domain.Review{}, repository.ErrDuplicate
}
