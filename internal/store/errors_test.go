package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code string
		want ErrorKind
	}{
		{"unique", "23505", KindUniqueViolation},
		{"foreign key", "23503", KindForeignKeyViolation},
		{"invalid text", "22P02", KindInvalidInput},
		{"out of range", "22003", KindInvalidInput},
		{"check", "23514", KindInvalidInput},
		{"deadlock", "40P01", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, ConstraintName: "c"}
			err := Classify(fmt.Errorf("insert: %w", pgErr))

			var stErr *Error
			require.True(t, errors.As(err, &stErr))
			assert.Equal(t, tt.want, stErr.Kind)
			assert.Equal(t, tt.code, stErr.Code)
			assert.Equal(t, "c", stErr.Constraint)
			assert.ErrorIs(t, err, pgErr)
		})
	}
}

func TestClassifyPassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, Classify(nil))
	assert.Same(t, pgx.ErrNoRows, Classify(pgx.ErrNoRows))

	plain := errors.New("boom")
	assert.Same(t, plain, Classify(plain))
}

func TestClassifyIsIdempotent(t *testing.T) {
	first := Classify(&pgconn.PgError{Code: "23505"})
	assert.Same(t, first, Classify(first))
}

func TestIsKind(t *testing.T) {
	err := Classify(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_book_user_key"})

	assert.True(t, IsKind(err, KindUniqueViolation, ""))
	assert.True(t, IsKind(err, KindUniqueViolation, "reviews_book_user_key"))
	assert.False(t, IsKind(err, KindUniqueViolation, "users_email_key"))
	assert.False(t, IsKind(err, KindForeignKeyViolation, ""))
	assert.False(t, IsKind(errors.New("x"), KindUniqueViolation, ""))
}
