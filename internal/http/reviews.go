package httpserver

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/auth"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/validate"
)

type reviewResponse struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id"`
	Rating    int        `json:"rating"`
	Comment   *string    `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type reviewEnvelope struct {
	Message string         `json:"message"`
	Review  reviewResponse `json:"review"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		s.writeError(w, r, apperror.Unauthorized(msgTokenRequired))
		return
	}
	bookID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req validate.ReviewRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	review, err := s.reviews.SubmitReview(r.Context(), bookID, id.UserID, req.Input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, reviewEnvelope{
		Message: "Review submitted successfully",
		Review:  toReviewResponse(review, false),
	})
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		s.writeError(w, r, apperror.Unauthorized(msgTokenRequired))
		return
	}
	reviewID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req validate.ReviewRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	review, err := s.reviews.UpdateReview(r.Context(), reviewID, id.UserID, req.Input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reviewEnvelope{
		Message: "Review updated successfully",
		Review:  toReviewResponse(review, true),
	})
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		s.writeError(w, r, apperror.Unauthorized(msgTokenRequired))
		return
	}
	reviewID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.reviews.DeleteReview(r.Context(), reviewID, id.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "Review deleted successfully"})
}

func toReviewResponse(rv domain.Review, withUpdated bool) reviewResponse {
	resp := reviewResponse{
		ID:        rv.ID.String(),
		BookID:    rv.BookID.String(),
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
	if withUpdated {
		updated := rv.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
