package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/validate"
)

type bookAdder interface {
	AddBook(ctx context.Context, in domain.NewBook, creatorID uuid.UUID) (domain.Book, error)
}

func readBooks(path string) ([]validate.BookRequest, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []validate.BookRequest
	if err := json.Unmarshal(file, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// seed validates and adds each entry. Invalid or failing entries are logged
// and skipped.
func seed(ctx context.Context, catalog bookAdder, creatorID uuid.UUID, entries []validate.BookRequest, logger zerolog.Logger) (added, rejected int) {
	for i := range entries {
		entry := &entries[i]
		if errs := entry.Validate(); len(errs) > 0 {
			logger.Warn().Int("index", i).Strs("details", errs.Messages()).Msg("skipping invalid book")
			rejected++
			continue
		}
		book, err := catalog.AddBook(ctx, entry.NewBook(), creatorID)
		if err != nil {
			logger.Error().Err(err).Int("index", i).Str("title", entry.Title).Msg("add book failed")
			rejected++
			continue
		}
		logger.Debug().Str("id", book.ID.String()).Str("title", book.Title).Msg("book added")
		added++
	}
	return added, rejected
}
