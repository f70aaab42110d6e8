package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/database"
)

// maxDepth bounds the recursive walks so a corrupted parent chain cannot loop forever.
const maxDepth = 64

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

// Expected column order: id, name, parent_id, user_id
func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	var parentID sql.NullInt64

	if err := s.Scan(&c.ID, &c.Name, &parentID, &c.UserID); err != nil {
		return nil, err
	}

	if parentID.Valid {
		c.ParentID = new(parentID.Int64)
	}

	return &c, nil
}

const selectCategoryColumns = `id, name, parent_id, user_id`

func (s *Store) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM category WHERE id = $1`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrCategoryDoesNotExist
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return c, nil
}

func (s *Store) FindByName(ctx context.Context, userID int64, name string) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM category WHERE user_id = $1 AND name = $2`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrCategoryDoesNotExist
		}

		return nil, fmt.Errorf("finding category by name: %w", err)
	}

	return c, nil
}

func (s *Store) NameTaken(ctx context.Context, userID int64, name string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM category WHERE user_id = $1 AND name = $2 AND id <> $3)`

	var taken bool
	if err := s.db.QueryRowContext(ctx, query, userID, name, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking category name: %w", err)
	}

	return taken, nil
}

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM category WHERE user_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, c)
	}

	return cats, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO category (name, parent_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.ParentID, c.UserID).Scan(&c.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return category.ErrCreateConflict
		}

		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) (bool, error) {
	query := `UPDATE category SET name = $1, parent_id = $2 WHERE id = $3 AND user_id = $4`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.ParentID, c.ID, c.UserID)
	if err != nil {
		return false, fmt.Errorf("updating category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating category: %w", err)
	}

	return n > 0, nil
}

// Descendants returns id and its transitive children ordered by depth, then id.
func (s *Store) Descendants(ctx context.Context, userID, id int64) ([]category.Node, error) {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id, name, 0 AS depth
			FROM category
			WHERE id = $1 AND user_id = $2
			UNION ALL
			SELECT c.id, c.name, t.depth + 1
			FROM category c
			JOIN subtree t ON c.parent_id = t.id
			WHERE c.user_id = $2 AND t.depth < $3
		)
		SELECT id, name FROM subtree ORDER BY depth, id
	`

	return s.walk(ctx, "loading descendants", query, id, userID, maxDepth)
}

// Ancestors returns id followed by its parents up to the root.
func (s *Store) Ancestors(ctx context.Context, userID, id int64) ([]category.Node, error) {
	query := `
		WITH RECURSIVE chain AS (
			SELECT id, name, parent_id, 0 AS depth
			FROM category
			WHERE id = $1 AND user_id = $2
			UNION ALL
			SELECT c.id, c.name, c.parent_id, ch.depth + 1
			FROM category c
			JOIN chain ch ON c.id = ch.parent_id
			WHERE c.user_id = $2 AND ch.depth < $3
		)
		SELECT id, name FROM chain ORDER BY depth
	`

	return s.walk(ctx, "loading ancestors", query, id, userID, maxDepth)
}

func (s *Store) walk(ctx context.Context, op, query string, args ...any) ([]category.Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var nodes []category.Node

	for rows.Next() {
		var n category.Node
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		nodes = append(nodes, n)
	}

	return nodes, rows.Err()
}

type deleteTx struct {
	tx *sql.Tx
}

func (s *Store) BeginDelete(ctx context.Context) (category.DeleteTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning delete tx: %w", err)
	}

	return &deleteTx{tx: dbTx}, nil
}

func (dtx *deleteTx) Commit() error   { return dtx.tx.Commit() }
func (dtx *deleteTx) Rollback() error { return dtx.tx.Rollback() }

func (dtx *deleteTx) ClearTransactionCategory(ctx context.Context, userID, categoryID int64) error {
	query := `UPDATE operation SET category_id = NULL WHERE user_id = $1 AND category_id = $2`

	if _, err := dtx.tx.ExecContext(ctx, query, userID, categoryID); err != nil {
		return fmt.Errorf("clearing operation category: %w", err)
	}

	return nil
}

func (dtx *deleteTx) DetachChildren(ctx context.Context, categoryID int64) error {
	query := `UPDATE category SET parent_id = NULL WHERE parent_id = $1`

	if _, err := dtx.tx.ExecContext(ctx, query, categoryID); err != nil {
		return fmt.Errorf("detaching child categories: %w", err)
	}

	return nil
}

func (dtx *deleteTx) DeleteCategory(ctx context.Context, categoryID int64) error {
	query := `DELETE FROM category WHERE id = $1`

	res, err := dtx.tx.ExecContext(ctx, query, categoryID)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return category.ErrCategoryDoesNotExist
	}

	return nil
}
