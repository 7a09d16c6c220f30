package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/store"
)

const (
	msgInternal          = "Internal server error"
	msgDatabase          = "Database error occurred"
	msgResourceExists    = "Resource already exists"
	msgReferenceNotFound = "Referenced resource does not exist"
)

// writeError is the single place failures become responses. Application
// errors keep their message and store errors map by kind. Anything else is
// logged and reported as a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		s.respondError(w, statusForKind(appErr.Kind), appErr.Message, appErr.Details)
		return
	}

	var stErr *store.Error
	if errors.As(err, &stErr) {
		switch stErr.Kind {
		case store.KindUniqueViolation:
			s.respondError(w, http.StatusConflict, msgResourceExists, nil)
		case store.KindForeignKeyViolation:
			s.respondError(w, http.StatusBadRequest, msgReferenceNotFound, nil)
		case store.KindInvalidInput:
			s.respondError(w, http.StatusBadRequest, msgInvalidFormat, nil)
		default:
			s.logFailure(r, err)
			s.respondError(w, http.StatusInternalServerError, msgDatabase, nil)
		}
		return
	}

	s.logFailure(r, err)
	s.respondError(w, http.StatusInternalServerError, msgInternal, nil)
}

func (s *Server) logFailure(r *http.Request, err error) {
	s.logger.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http: request failed")
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
