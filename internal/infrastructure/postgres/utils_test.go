package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, isUniqueViolation(wrap("23505")))
	assert.False(t, isUniqueViolation(wrap("23514")))
	assert.True(t, isCheckViolation(wrap("23514")))
	assert.True(t, isConcurrencyFailure(wrap("40001")))
	assert.True(t, isConcurrencyFailure(wrap("40P01")))
	assert.False(t, isConcurrencyFailure(errors.New("timeout")))
}
