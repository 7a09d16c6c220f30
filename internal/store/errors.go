package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind enumerates the store failures callers are allowed to react to.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUniqueViolation
	KindForeignKeyViolation
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindUniqueViolation:
		return "unique_violation"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Postgres SQLSTATE codes mapped by Classify.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeNumericOutOfRange   = "22003"
)

// Error is a classified database failure.
type Error struct {
	Kind       ErrorKind
	Code       string
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("store: %s (%s, constraint %s): %v", e.Kind, e.Code, e.Constraint, e.Err)
	}
	return fmt.Sprintf("store: %s (%s): %v", e.Kind, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify wraps postgres errors into *Error. Other errors, including
// pgx.ErrNoRows, are returned untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	kind := KindUnknown
	switch pgErr.Code {
	case codeUniqueViolation:
		kind = KindUniqueViolation
	case codeForeignKeyViolation:
		kind = KindForeignKeyViolation
	case codeInvalidText, codeNumericOutOfRange, codeCheckViolation:
		kind = KindInvalidInput
	}
	return &Error{Kind: kind, Code: pgErr.Code, Constraint: pgErr.ConstraintName, Err: err}
}

// IsKind reports whether err is a classified store error of the given kind.
// An empty constraint matches any constraint.
func IsKind(err error, kind ErrorKind, constraint string) bool {
	var stErr *Error
	if !errors.As(err, &stErr) {
		return false
	}
	if stErr.Kind != kind {
		return false
	}
	return constraint == "" || stErr.Constraint == constraint
}
