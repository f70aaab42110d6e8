package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newService(repo *transaction.MockRepository, cats *transaction.MockCategoryOwner) *transaction.Service {
	return transaction.NewService(repo, cats).WithClock(func() time.Time { return fixedNow })
}

func TestService_Add(t *testing.T) {
	type testCase struct {
		name      string
		params    transaction.AddParams
		setupMock func(m *transaction.MockRepository, c *transaction.MockCategoryOwner)
		wantErr   error
		check     func(t *testing.T, tx *transaction.Transaction)
	}

	tests := []testCase{
		{
			name: "SuccessRoundsUpAndDefaultsDate",
			params: transaction.AddParams{
				Type:   new(transaction.TypeExpense),
				Amount: new(decimal.RequireFromString("10.001")),
				UserID: 1,
			},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockCategoryOwner) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = 42
						return nil
					})
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, int64(42), tx.ID)
				assert.Equal(t, "10.01", tx.Amount.StringFixed(2))
				assert.Equal(t, fixedNow, tx.Date)
				assert.Nil(t, tx.CategoryID)
			},
		},
		{
			name: "SuccessWithCategory",
			params: transaction.AddParams{
				Type:       new(transaction.TypeIncome),
				Amount:     new(decimal.NewFromInt(100)),
				UserID:     1,
				CategoryID: new(int64(5)),
			},
			setupMock: func(m *transaction.MockRepository, c *transaction.MockCategoryOwner) {
				c.EXPECT().Owned(gomock.Any(), int64(5), int64(1)).Return(&category.Category{ID: 5, UserID: 1}, nil)
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				require.NotNil(t, tx.CategoryID)
				assert.Equal(t, int64(5), *tx.CategoryID)
				assert.Equal(t, transaction.TypeIncome, tx.Type)
			},
		},
		{
			name:    "MissingType",
			params:  transaction.AddParams{Amount: new(decimal.NewFromInt(1)), UserID: 1},
			wantErr: transaction.ErrMissingRequiredFields,
		},
		{
			name:    "MissingAmount",
			params:  transaction.AddParams{Type: new(transaction.TypeIncome), UserID: 1},
			wantErr: transaction.ErrMissingRequiredFields,
		},
		{
			name: "NegativeAmount",
			params: transaction.AddParams{
				Type:   new(transaction.TypeExpense),
				Amount: new(decimal.NewFromInt(-5)),
				UserID: 1,
			},
			wantErr: transaction.ErrNegativeValue,
		},
		{
			name: "ForeignCategory",
			params: transaction.AddParams{
				Type:       new(transaction.TypeExpense),
				Amount:     new(decimal.NewFromInt(5)),
				UserID:     1,
				CategoryID: new(int64(9)),
			},
			setupMock: func(_ *transaction.MockRepository, c *transaction.MockCategoryOwner) {
				c.EXPECT().Owned(gomock.Any(), int64(9), int64(1)).Return(nil, category.ErrCategoryAccessDenied)
			},
			wantErr: category.ErrCategoryAccessDenied,
		},
		{
			name: "InsertFails",
			params: transaction.AddParams{
				Type:   new(transaction.TypeExpense),
				Amount: new(decimal.NewFromInt(5)),
				UserID: 1,
			},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockCategoryOwner) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: transaction.ErrDataBaseConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			cats := transaction.NewMockCategoryOwner(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, cats)
			}

			got, err := newService(repo, cats).Add(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	repo.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(&transaction.Transaction{ID: 1, UserID: 7}, nil).Times(2)
	repo.EXPECT().GetTransaction(gomock.Any(), int64(2)).Return(nil, transaction.ErrTransactionDoesNotExist)

	svc := newService(repo, nil)

	got, err := svc.Get(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = svc.Get(context.Background(), 1, 8)
	assert.ErrorIs(t, err, transaction.ErrTransactionAccessDenied)

	_, err = svc.Get(context.Background(), 2, 7)
	assert.ErrorIs(t, err, transaction.ErrTransactionDoesNotExist)
}

func TestService_Patch(t *testing.T) {
	stored := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:         1,
			Type:       transaction.TypeExpense,
			Amount:     decimal.NewFromInt(10),
			Date:       fixedNow,
			UserID:     7,
			CategoryID: new(int64(3)),
		}
	}

	type testCase struct {
		name      string
		params    transaction.PatchParams
		setupMock func(m *transaction.MockRepository, c *transaction.MockCategoryOwner)
		wantErr   error
		check     func(t *testing.T, tx *transaction.Transaction)
	}

	tests := []testCase{
		{
			name:   "AmountRoundedUp",
			params: transaction.PatchParams{Amount: new(decimal.RequireFromString("12.341"))},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockCategoryOwner) {
				m.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(stored(), nil)
				m.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, "12.35", tx.Amount.StringFixed(2))
			},
		},
		{
			name:   "MoveToCategory",
			params: transaction.PatchParams{CategoryID: new(int64(4)), Type: new(transaction.TypeIncome)},
			setupMock: func(m *transaction.MockRepository, c *transaction.MockCategoryOwner) {
				m.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(stored(), nil)
				c.EXPECT().Owned(gomock.Any(), int64(4), int64(7)).Return(&category.Category{ID: 4, UserID: 7}, nil)
				m.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, int64(4), *tx.CategoryID)
				assert.Equal(t, transaction.TypeIncome, tx.Type)
			},
		},
		{
			name:   "ClearCategory",
			params: transaction.PatchParams{CategoryID: new(int64(0))},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockCategoryOwner) {
				m.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(stored(), nil)
				m.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Nil(t, tx.CategoryID)
			},
		},
		{
			name:   "Negative",
			params: transaction.PatchParams{Amount: new(decimal.NewFromInt(-1))},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockCategoryOwner) {
				m.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(stored(), nil)
			},
			wantErr: transaction.ErrNegativeValue,
		},
		{
			name:   "NotOwned",
			params: transaction.PatchParams{Amount: new(decimal.NewFromInt(1))},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockCategoryOwner) {
				m.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(&transaction.Transaction{ID: 1, UserID: 99}, nil)
			},
			wantErr: transaction.ErrTransactionAccessDenied,
		},
		{
			name:   "NoRowUpdated",
			params: transaction.PatchParams{Description: new("rent")},
			setupMock: func(m *transaction.MockRepository, _ *transaction.MockCategoryOwner) {
				m.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(stored(), nil)
				m.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr: transaction.ErrDataBaseConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			cats := transaction.NewMockCategoryOwner(ctrl)
			tt.setupMock(repo, cats)

			got, err := newService(repo, cats).Patch(context.Background(), 1, 7, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	repo.EXPECT().GetTransaction(gomock.Any(), int64(1)).Return(&transaction.Transaction{ID: 1, UserID: 7}, nil)
	repo.EXPECT().DeleteTransaction(gomock.Any(), int64(1)).Return(nil)
	repo.EXPECT().GetTransaction(gomock.Any(), int64(2)).Return(&transaction.Transaction{ID: 2, UserID: 8}, nil)

	svc := newService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 1, 7))
	assert.ErrorIs(t, svc.Delete(context.Background(), 2, 7), transaction.ErrTransactionAccessDenied)
}

func TestService_ImportBatch(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := []transaction.AddParams{
		{Type: new(transaction.TypeExpense), Amount: new(decimal.NewFromInt(40)), Description: new("Groceries"), Date: new(day)},
		{Type: new(transaction.TypeIncome), Amount: new(decimal.NewFromInt(100)), Description: new("Salary"), Date: new(day)},
	}

	t.Run("SkipsRecordedRows", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)
		itx := transaction.NewMockImportTx(ctrl)

		recorded := &transaction.Transaction{
			ID:          9,
			Type:        transaction.TypeIncome,
			Amount:      decimal.RequireFromString("100.00"),
			Description: new("Salary"),
			Date:        day.Add(8 * time.Hour),
			UserID:      7,
		}

		repo.EXPECT().BeginImport(gomock.Any(), int64(7)).Return(itx, nil)
		itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Len(2)).Return([]*transaction.Transaction{recorded}, nil)
		itx.EXPECT().
			CreateTransactions(gomock.Any(), gomock.Len(1)).
			DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
				assert.Equal(t, "Groceries", *txs[0].Description)
				assert.Equal(t, int64(7), txs[0].UserID)

				txs[0].ID = 10

				return nil
			})
		itx.EXPECT().Commit().Return(nil)
		itx.EXPECT().Rollback().Return(nil)

		res, err := newService(repo, nil).ImportBatch(context.Background(), 7, rows)
		require.NoError(t, err)
		require.Len(t, res.Imported, 1)
		assert.Equal(t, int64(10), res.Imported[0].ID)
		assert.Equal(t, []*transaction.Transaction{recorded}, res.Skipped)
	})

	t.Run("InvalidRowAbortsBeforeStorage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		bad := append([]transaction.AddParams{}, rows...)
		bad = append(bad, transaction.AddParams{Type: new(transaction.TypeExpense)})

		_, err := newService(repo, nil).ImportBatch(context.Background(), 7, bad)
		assert.ErrorIs(t, err, transaction.ErrMissingRequiredFields)
		assert.ErrorContains(t, err, "row 3")
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)
		itx := transaction.NewMockImportTx(ctrl)

		repo.EXPECT().BeginImport(gomock.Any(), int64(7)).Return(itx, nil)
		itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
		itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(2)).Return(errors.New("db error"))
		itx.EXPECT().Rollback().Return(nil)

		_, err := newService(repo, nil).ImportBatch(context.Background(), 7, rows)
		assert.ErrorIs(t, err, transaction.ErrDataBaseConflict)
	})

	t.Run("Empty", func(t *testing.T) {
		res, err := newService(nil, nil).ImportBatch(context.Background(), 7, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Imported)
	})
}

func TestTransaction_Signed(t *testing.T) {
	income := &transaction.Transaction{Type: transaction.TypeIncome, Amount: decimal.NewFromInt(10)}
	expense := &transaction.Transaction{Type: transaction.TypeExpense, Amount: decimal.NewFromInt(10)}

	assert.True(t, income.Signed().Equal(decimal.NewFromInt(10)))
	assert.True(t, expense.Signed().Equal(decimal.NewFromInt(-10)))
}
