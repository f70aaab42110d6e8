package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetree/internal/matching"
	"github.com/MrJamesThe3rd/budgetree/internal/matching/store"
)

var ruleColumns = []string{"id", "user_id", "raw_pattern", "category_id", "created_at"}

func setupStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return store.New(db), mock
}

func TestStore_FindMatch(t *testing.T) {
	s, mock := setupStore(t)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`POSITION\(LOWER\(raw_pattern\) IN LOWER\(\$2\)\)`).
		WithArgs(int64(7), "COMPRA CONTINENTE").
		WillReturnRows(sqlmock.NewRows(ruleColumns).AddRow(1, 7, "continente", 3, created))

	r, err := s.FindMatch(context.Background(), 7, "COMPRA CONTINENTE")
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.CategoryID)
	assert.Equal(t, "continente", r.Pattern)
}

func TestStore_FindMatch_None(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("FROM category_rules").
		WithArgs(int64(7), "nothing").
		WillReturnRows(sqlmock.NewRows(ruleColumns))

	r, err := s.FindMatch(context.Background(), 7, "nothing")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestStore_CreateRule(t *testing.T) {
	s, mock := setupStore(t)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO category_rules").
		WithArgs(int64(7), "uber", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, created))

	r := &matching.Rule{UserID: 7, Pattern: "uber", CategoryID: 4}
	require.NoError(t, s.CreateRule(context.Background(), r))
	assert.Equal(t, int64(9), r.ID)
	assert.Equal(t, created, r.CreatedAt)
}

func TestStore_ListRules(t *testing.T) {
	s, mock := setupStore(t)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM category_rules WHERE user_id").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow(1, 7, "uber", 4, created).
			AddRow(2, 7, "lidl", 5, created))

	rules, err := s.ListRules(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "lidl", rules[1].Pattern)
}

func TestStore_DeleteRule(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectExec("DELETE FROM category_rules").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM category_rules").
		WithArgs(int64(2), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.DeleteRule(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteRule(context.Background(), 2, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}
