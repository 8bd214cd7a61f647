package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/diarybot/diarybot/internal/errors"
)

func TestInputError(t *testing.T) {
	check := &pgconn.PgError{Code: pgCheckViolation, ConstraintName: "finances_amount_check"}
	err := inputError(fmt.Errorf("insert: %w", check))
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "finances_amount_check")

	require.ErrorIs(t, inputError(&pgconn.PgError{Code: pgNumericOutOfRange}), apperrors.ErrValidation)

	unique := &pgconn.PgError{Code: "23505"}
	assert.Same(t, error(unique), inputError(unique))

	plain := errors.New("conn reset")
	assert.Equal(t, plain, inputError(plain))
}
