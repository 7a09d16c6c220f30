package httpserver

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/auth"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/service"
	"github.com/Clark-Hu/book-reviews/internal/validate"
)

type bookResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	Description   *string   `json:"description"`
	PublishedYear *int      `json:"published_year"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type ratedBookResponse struct {
	bookResponse
	AverageRating string `json:"average_rating"`
	ReviewCount   int64  `json:"review_count"`
}

type bookPagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalBooks  int64 `json:"total_books"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

type reviewPagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalReviews int64 `json:"total_reviews"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

type createBookResponse struct {
	Message string       `json:"message"`
	Book    bookResponse `json:"book"`
}

type bookListResponse struct {
	Books      []ratedBookResponse `json:"books"`
	Pagination bookPagination      `json:"pagination"`
}

type bookReviewResponse struct {
	ID           string    `json:"id"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ReviewerName string    `json:"reviewer_name"`
}

type bookDetailResponse struct {
	Book       ratedBookResponse    `json:"book"`
	Reviews    []bookReviewResponse `json:"reviews"`
	Pagination reviewPagination     `json:"pagination"`
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		s.writeError(w, r, apperror.Unauthorized(msgTokenRequired))
		return
	}

	var req validate.BookRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	book, err := s.catalog.AddBook(r.Context(), req.NewBook(), id.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, createBookResponse{
		Message: "Book added successfully",
		Book:    toBookResponse(book),
	})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := domain.NewPage(query.Get("page"), query.Get("limit"), service.MaxBooksPerPage)
	filters := domain.BookFilters{
		Author: query.Get("author"),
		Genre:  query.Get("genre"),
	}

	result, err := s.catalog.ListBooks(r.Context(), page, filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, bookListResponse{
		Books:      toRatedBookResponses(result.Books),
		Pagination: toBookPagination(result.Pagination),
	})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	page := domain.NewPage(query.Get("page"), query.Get("limit"), service.MaxReviewsPerPage)

	detail, err := s.catalog.GetBook(r.Context(), bookID, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reviews := make([]bookReviewResponse, 0, len(detail.Reviews))
	for _, rv := range detail.Reviews {
		reviews = append(reviews, bookReviewResponse{
			ID:           rv.ID.String(),
			Rating:       rv.Rating,
			Comment:      rv.Comment,
			CreatedAt:    rv.CreatedAt,
			UpdatedAt:    rv.UpdatedAt,
			ReviewerName: rv.ReviewerName,
		})
	}
	p := detail.Pagination
	s.respondJSON(w, http.StatusOK, bookDetailResponse{
		Book:    toRatedBookResponse(detail.Book),
		Reviews: reviews,
		Pagination: reviewPagination{
			CurrentPage:  p.CurrentPage,
			TotalPages:   p.TotalPages,
			TotalReviews: p.Total,
			HasNext:      p.HasNext,
			HasPrev:      p.HasPrev,
		},
	})
}

func toBookResponse(b domain.Book) bookResponse {
	return bookResponse{
		ID:            b.ID.String(),
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		Description:   b.Description,
		PublishedYear: b.PublishedYear,
		CreatedBy:     b.CreatedBy.String(),
		CreatedAt:     b.CreatedAt,
	}
}

func toRatedBookResponse(b domain.RatedBook) ratedBookResponse {
	return ratedBookResponse{
		bookResponse:  toBookResponse(b.Book),
		AverageRating: b.Rating.FormattedAverage(),
		ReviewCount:   b.Rating.Count,
	}
}

func toRatedBookResponses(books []domain.RatedBook) []ratedBookResponse {
	out := make([]ratedBookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toRatedBookResponse(b))
	}
	return out
}

func toBookPagination(p domain.Pagination) bookPagination {
	return bookPagination{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalBooks:  p.Total,
		HasNext:     p.HasNext,
		HasPrev:     p.HasPrev,
	}
}
