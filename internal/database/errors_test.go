package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/budgetree/internal/database"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := fmt.Errorf("inserting category: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, database.IsUniqueViolation(unique))
	assert.False(t, database.IsUniqueViolation(fk))
	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
	assert.False(t, database.IsUniqueViolation(nil))
}

func TestIsConstraintViolation(t *testing.T) {
	for _, code := range []string{"23505", "23503", "23514"} {
		assert.True(t, database.IsConstraintViolation(&pgconn.PgError{Code: code}), code)
	}

	assert.False(t, database.IsConstraintViolation(&pgconn.PgError{Code: "40001"}))
}
