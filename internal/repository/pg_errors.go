package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/diarybot/diarybot/internal/errors"
)

// Postgres SQLSTATE codes for rejected input.
const (
	pgCheckViolation    = "23514"
	pgNumericOutOfRange = "22003"
	pgStringTooLong     = "22001"
)

// inputError converts a Postgres error caused by the row's values into a ValidationError so the
// API answers 400. Any other error is returned unchanged.
func inputError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgCheckViolation:
		return apperrors.NewValidationError(pgErr.ColumnName, "value violates constraint "+pgErr.ConstraintName)
	case pgNumericOutOfRange:
		return apperrors.NewValidationError(pgErr.ColumnName, "numeric value out of range")
	case pgStringTooLong:
		return apperrors.NewValidationError(pgErr.ColumnName, "value too long")
	default:
		return err
	}
}
