package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads an operation row.
// Expected column order: id, type, amount, description, date, user_id, category_id
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var (
		income     bool
		desc       sql.NullString
		date       int64
		categoryID sql.NullInt64
	)

	if err := s.Scan(&tx.ID, &income, &tx.Amount, &desc, &date, &tx.UserID, &categoryID); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(income)
	tx.Date = time.Unix(date, 0).UTC()

	if desc.Valid {
		tx.Description = new(desc.String)
	}

	if categoryID.Valid {
		tx.CategoryID = new(categoryID.Int64)
	}

	return &tx, nil
}

const selectTransactionColumns = `id, type, amount, description, date, user_id, category_id`

const insertTransaction = `
	INSERT INTO operation (type, amount, description, date, user_id, category_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q querier, tx *transaction.Transaction) error {
	err := q.QueryRowContext(ctx, insertTransaction,
		bool(tx.Type),
		tx.Amount,
		tx.Description,
		tx.Date.Unix(),
		tx.UserID,
		tx.CategoryID,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	return insert(ctx, s.db, tx)
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM operation WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrTransactionDoesNotExist
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) (bool, error) {
	query := `
		UPDATE operation
		SET type = $1, amount = $2, description = $3, date = $4, category_id = $5
		WHERE id = $6 AND user_id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		bool(tx.Type),
		tx.Amount,
		tx.Description,
		tx.Date.Unix(),
		tx.CategoryID,
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("updating transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating transaction: %w", err)
	}

	return n > 0, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	query := `DELETE FROM operation WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transaction.ErrTransactionDoesNotExist
	}

	return nil
}

// where renders the report predicate shared by Summarize and Page.
func where(q transaction.Query) (string, []any) {
	args := []any{q.UserID}
	clauses := []string{"user_id = $1"}

	argIdx := 2

	categories := []string{}

	if len(q.CategoryIDs) > 0 {
		categories = append(categories, "category_id = ANY($"+strconv.Itoa(argIdx)+")")
		args = append(args, q.CategoryIDs)
		argIdx++
	}

	if q.IncludeUncategorized {
		categories = append(categories, "category_id IS NULL")
	}

	switch len(categories) {
	case 0:
		// Nothing can match an empty category set.
		clauses = append(clauses, "FALSE")
	default:
		clauses = append(clauses, "("+strings.Join(categories, " OR ")+")")
	}

	if q.From != nil {
		clauses = append(clauses, "date >= $"+strconv.Itoa(argIdx))
		args = append(args, *q.From)
		argIdx++
	}

	if q.To != nil {
		clauses = append(clauses, "date < $"+strconv.Itoa(argIdx))
		args = append(args, *q.To)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) Summarize(ctx context.Context, q transaction.Query) (transaction.Summary, error) {
	cond, args := where(q)

	query := `
		SELECT COALESCE(SUM(CASE WHEN type THEN amount ELSE -amount END), 0), COUNT(*)
		FROM operation` + cond

	var sum transaction.Summary
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum.Total, &sum.Count); err != nil {
		return transaction.Summary{}, fmt.Errorf("summarizing transactions: %w", err)
	}

	return sum, nil
}

func (s *Store) Page(ctx context.Context, q transaction.Query, limit, offset int) ([]*transaction.Transaction, error) {
	cond, args := where(q)

	n := len(args)
	query := `SELECT ` + selectTransactionColumns + ` FROM operation` + cond +
		` ORDER BY date ASC, id ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

type importTx struct {
	tx     *sql.Tx
	userID int64
}

// BeginImport opens the import transaction and serializes concurrent imports of the same user.
func (s *Store) BeginImport(ctx context.Context, userID int64) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(userID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, userID: userID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

// FindDuplicates returns the stored operations of the user that fall on the days spanned by txs.
// The caller compares them row by row.
func (itx *importTx) FindDuplicates(ctx context.Context, txs []*transaction.Transaction) ([]*transaction.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	minDate, maxDate := transaction.DateSpan(txs)

	from := minDate.UTC().Truncate(24 * time.Hour)
	to := maxDate.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)

	query := `SELECT ` + selectTransactionColumns + `
		FROM operation
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC, id ASC`

	rows, err := itx.tx.QueryContext(ctx, query, itx.userID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var existing []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		existing = append(existing, tx)
	}

	return existing, rows.Err()
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		if err := insert(ctx, itx.tx, tx); err != nil {
			return err
		}
	}

	return nil
}

func importLockKey(userID int64) int64 {
	h := fnv.New64a()
	h.Write([]byte("operation-import"))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(userID, 10)))

	return int64(h.Sum64())
}
