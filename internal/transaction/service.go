package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) (bool, error)
	DeleteTransaction(ctx context.Context, id int64) error

	Summarize(ctx context.Context, q Query) (Summary, error)
	Page(ctx context.Context, q Query, limit, offset int) ([]*Transaction, error)

	BeginImport(ctx context.Context, userID int64) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, txs []*Transaction) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// CategoryOwner checks that a category exists and belongs to a user.
type CategoryOwner interface {
	Owned(ctx context.Context, id, userID int64) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryOwner
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryOwner) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to default transaction dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type AddParams struct {
	Type        *Type
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
	UserID      int64
	CategoryID  *int64
}

// PatchParams carries the optional fields of a patch. A CategoryID pointing at 0 clears the category.
type PatchParams struct {
	Type        *Type
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
	CategoryID  *int64
}

func (s *Service) Add(ctx context.Context, params AddParams) (*Transaction, error) {
	tx, err := s.build(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataBaseConflict, err)
	}

	return tx, nil
}

// build validates params and turns them into an unsaved transaction.
func (s *Service) build(ctx context.Context, params AddParams) (*Transaction, error) {
	if params.Type == nil || params.Amount == nil {
		return nil, ErrMissingRequiredFields
	}

	if params.Amount.IsNegative() {
		return nil, ErrNegativeValue
	}

	if params.CategoryID != nil {
		if _, err := s.categories.Owned(ctx, *params.CategoryID, params.UserID); err != nil {
			return nil, err
		}
	}

	date := s.now().UTC()
	if params.Date != nil {
		date = params.Date.UTC()
	}

	return &Transaction{
		Type:        *params.Type,
		Amount:      roundAmount(*params.Amount),
		Description: params.Description,
		Date:        date.Truncate(time.Second),
		UserID:      params.UserID,
		CategoryID:  params.CategoryID,
	}, nil
}

// Get loads a transaction. Absence is reported before ownership.
func (s *Service) Get(ctx context.Context, id, userID int64) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.UserID != userID {
		return nil, ErrTransactionAccessDenied
	}

	return tx, nil
}

func (s *Service) Patch(ctx context.Context, id, userID int64, params PatchParams) (*Transaction, error) {
	tx, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.Amount != nil {
		if params.Amount.IsNegative() {
			return nil, ErrNegativeValue
		}

		tx.Amount = roundAmount(*params.Amount)
	}

	if params.CategoryID != nil {
		if *params.CategoryID > 0 {
			if _, err := s.categories.Owned(ctx, *params.CategoryID, userID); err != nil {
				return nil, err
			}

			tx.CategoryID = new(*params.CategoryID)
		} else {
			tx.CategoryID = nil
		}
	}

	if params.Type != nil {
		tx.Type = *params.Type
	}

	if params.Description != nil {
		tx.Description = params.Description
	}

	if params.Date != nil {
		tx.Date = params.Date.UTC().Truncate(time.Second)
	}

	updated, err := s.repo.UpdateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataBaseConflict, err)
	}

	if !updated {
		return nil, ErrDataBaseConflict
	}

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.DeleteTransaction(ctx, id)
}

func (s *Service) Summarize(ctx context.Context, q Query) (Summary, error) {
	return s.repo.Summarize(ctx, q)
}

func (s *Service) Page(ctx context.Context, q Query, limit, offset int) ([]*Transaction, error) {
	return s.repo.Page(ctx, q, limit, offset)
}

type ImportResult struct {
	Imported []*Transaction
	// Skipped holds the stored rows that matched an incoming row.
	Skipped []*Transaction
}

// ImportBatch validates every row like Add, then stores the rows that are not already
// recorded in a single database transaction. A row is already recorded when a stored
// operation has the same day, amount, type and description.
func (s *Service) ImportBatch(ctx context.Context, userID int64, params []AddParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	txs := make([]*Transaction, 0, len(params))

	for i, p := range params {
		p.UserID = userID

		tx, err := s.build(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txs = append(txs, tx)
	}

	itx, err := s.repo.BeginImport(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d)] = d
	}

	result := &ImportResult{}

	var fresh []*Transaction

	for _, tx := range txs {
		if existing, found := lookup[keyOf(tx)]; found {
			result.Skipped = append(result.Skipped, existing)
			continue
		}

		fresh = append(fresh, tx)
	}

	if len(fresh) > 0 {
		if err := itx.CreateTransactions(ctx, fresh); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataBaseConflict, err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	result.Imported = fresh

	slog.InfoContext(ctx, "transactions imported",
		"user_id", userID, "imported", len(fresh), "skipped", len(result.Skipped))

	return result, nil
}

type dupKey struct {
	Date        string
	Amount      string
	Type        Type
	Description string
}

func keyOf(tx *Transaction) dupKey {
	k := dupKey{
		Date:   tx.Date.UTC().Format(time.DateOnly),
		Amount: tx.Amount.StringFixed(2),
		Type:   tx.Type,
	}

	if tx.Description != nil {
		k.Description = *tx.Description
	}

	return k
}

// DateSpan returns the earliest and latest date of txs.
func DateSpan(txs []*Transaction) (time.Time, time.Time) {
	minDate := txs[0].Date
	maxDate := txs[0].Date

	for _, tx := range txs[1:] {
		if tx.Date.Before(minDate) {
			minDate = tx.Date
		}

		if tx.Date.After(maxDate) {
			maxDate = tx.Date
		}
	}

	return minDate, maxDate
}
