package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/service"
)

type searchResponse struct {
	Query      string              `json:"query"`
	Books      []ratedBookResponse `json:"books"`
	Pagination bookPagination      `json:"pagination"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := domain.NewPage(query.Get("page"), query.Get("limit"), service.MaxBooksPerPage)

	result, err := s.catalog.SearchBooks(r.Context(), query.Get("q"), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, searchResponse{
		Query:      result.Query,
		Books:      toRatedBookResponses(result.Books),
		Pagination: toBookPagination(result.Pagination),
	})
}
