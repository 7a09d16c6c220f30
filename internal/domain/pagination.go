package domain

import "strconv"

// Page is a normalized page request.
type Page struct {
	Number int
	Limit  int
}

const (
	// DefaultPageLimit applies when the caller omits or garbles the limit.
	DefaultPageLimit = 10
	// MaxPageNumber keeps offsets well inside the int32 range.
	MaxPageNumber = 1_000_000
)

// NewPage parses raw page/limit values. Missing, unparsable or non-positive
// values fall back to page 1 and DefaultPageLimit; limit is capped at maxLimit.
func NewPage(rawPage, rawLimit string, maxLimit int) Page {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	if page > MaxPageNumber {
		page = MaxPageNumber
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: page, Limit: limit}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	Total       int64
	HasNext     bool
	HasPrev     bool
}

// Paginate computes page metadata for total matching rows.
func Paginate(p Page, total int64) Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		CurrentPage: p.Number,
		TotalPages:  totalPages,
		Total:       total,
		HasNext:     p.Number < totalPages,
		HasPrev:     p.Number > 1,
	}
}
