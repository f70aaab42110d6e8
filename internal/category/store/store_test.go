package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/category/store"
)

func setupStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return store.New(db), mock
}

var categoryColumns = []string{"id", "name", "parent_id", "user_id"}

func TestStore_GetCategory(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("SELECT id, name, parent_id, user_id FROM category WHERE id").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(2, "Groceries", 1, 10))

	c, err := s.GetCategory(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", c.Name)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, int64(1), *c.ParentID)
	assert.Equal(t, int64(10), c.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetCategory_TopLevel(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("FROM category WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(1, "Food", nil, 10))

	c, err := s.GetCategory(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, c.ParentID)
}

func TestStore_GetCategory_NotFound(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("FROM category WHERE id").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetCategory(context.Background(), 9)
	assert.ErrorIs(t, err, category.ErrCategoryDoesNotExist)
}

func TestStore_FindByName_NotFound(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("FROM category WHERE user_id").
		WithArgs(int64(10), "Rent").
		WillReturnRows(sqlmock.NewRows(categoryColumns))

	_, err := s.FindByName(context.Background(), 10, "Rent")
	assert.ErrorIs(t, err, category.ErrCategoryDoesNotExist)
}

func TestStore_NameTaken(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "Food", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := s.NameTaken(context.Background(), 10, "Food", 3)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestStore_CreateCategory(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("INSERT INTO category").
		WithArgs("Dairy", int64(2), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	c := &category.Category{Name: "Dairy", ParentID: new(int64(2)), UserID: 10}
	require.NoError(t, s.CreateCategory(context.Background(), c))
	assert.Equal(t, int64(3), c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateCategory_UniqueViolation(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("INSERT INTO category").
		WithArgs("Food", nil, int64(10)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.CreateCategory(context.Background(), &category.Category{Name: "Food", UserID: 10})
	assert.ErrorIs(t, err, category.ErrCreateConflict)
}

func TestStore_UpdateCategory(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectExec("UPDATE category SET name").
		WithArgs("Home", nil, int64(1), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE category SET name").
		WithArgs("Home", nil, int64(2), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.UpdateCategory(context.Background(), &category.Category{ID: 1, Name: "Home", UserID: 10})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpdateCategory(context.Background(), &category.Category{ID: 2, Name: "Home", UserID: 10})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Descendants(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("WITH RECURSIVE subtree").
		WithArgs(int64(1), int64(10), 64).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "A").
			AddRow(2, "B").
			AddRow(3, "C"))

	got, err := s.Descendants(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, []category.Node{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}, got)
}

func TestStore_Ancestors(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("WITH RECURSIVE chain").
		WithArgs(int64(3), int64(10), 64).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(3, "C").
			AddRow(2, "B").
			AddRow(1, "A"))

	got, err := s.Ancestors(context.Background(), 10, 3)
	require.NoError(t, err)
	assert.Equal(t, []category.Node{{ID: 3, Name: "C"}, {ID: 2, Name: "B"}, {ID: 1, Name: "A"}}, got)
}

func TestStore_DeleteTx(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE operation SET category_id = NULL").
		WithArgs(int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("UPDATE category SET parent_id = NULL").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM category").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()

	dtx, err := s.BeginDelete(ctx)
	require.NoError(t, err)

	require.NoError(t, dtx.ClearTransactionCategory(ctx, 10, 2))
	require.NoError(t, dtx.DetachChildren(ctx, 2))
	require.NoError(t, dtx.DeleteCategory(ctx, 2))
	require.NoError(t, dtx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteTx_RollbackOnFailure(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE operation SET category_id = NULL").
		WithArgs(int64(10), int64(2)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	ctx := context.Background()

	dtx, err := s.BeginDelete(ctx)
	require.NoError(t, err)

	assert.Error(t, dtx.ClearTransactionCategory(ctx, 10, 2))
	require.NoError(t, dtx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
