package validate

import (
	"strings"

	"github.com/Clark-Hu/book-reviews/internal/domain"
)

// SignupRequest is the payload for creating an account. Email and name are
// trimmed before the rules run; the password is kept verbatim.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
}

func (r *SignupRequest) Validate() Errors {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	return check(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() Errors { return check(r) }

// BookRequest is the payload for adding a book. Text fields are trimmed
// before the rules run.
type BookRequest struct {
	Title         string  `json:"title" validate:"required,min=1,max=200"`
	Author        string  `json:"author" validate:"required,min=1,max=100"`
	Genre         string  `json:"genre" validate:"required,min=1,max=50"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,min=1000,notfuture"`
}

func (r *BookRequest) Validate() Errors {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Genre = strings.TrimSpace(r.Genre)
	return check(r)
}

// NewBook converts a validated request.
func (r BookRequest) NewBook() domain.NewBook {
	return domain.NewBook{
		Title:         r.Title,
		Author:        r.Author,
		Genre:         r.Genre,
		Description:   r.Description,
		PublishedYear: r.PublishedYear,
	}
}

// ReviewRequest is shared by review submission and update. Rating is a float
// so fractional input can be reported instead of failing JSON decoding.
type ReviewRequest struct {
	Rating  *float64 `json:"rating" validate:"required,min=1,max=5,integral"`
	Comment *string  `json:"comment" validate:"omitempty,max=1000"`
}

func (r ReviewRequest) Validate() Errors { return check(r) }

// Input converts a validated request.
func (r ReviewRequest) Input() domain.ReviewInput {
	in := domain.ReviewInput{Comment: r.Comment}
	if r.Rating != nil {
		in.Rating = int(*r.Rating)
	}
	return in
}
