package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/period"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

var ErrPageNotExist = errors.New("page does not exist")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=report
type Tree interface {
	ResolveSubtree(ctx context.Context, userID int64, id *int64, dir category.Direction) ([]category.Node, error)
}

type Ledger interface {
	Summarize(ctx context.Context, q transaction.Query) (transaction.Summary, error)
	Page(ctx context.Context, q transaction.Query, limit, offset int) ([]*transaction.Transaction, error)
}

// Line is one transaction of a report with its category breadcrumb, child first.
type Line struct {
	Transaction *transaction.Transaction
	Categories  []category.Node
}

type Report struct {
	Lines      []Line
	Total      decimal.Decimal
	TotalItems int
	TotalPages int
	Page       int
	PageSize   int
	// PrevPage and NextPage are encoded query strings, empty at the boundaries.
	PrevPage string
	NextPage string
}

type Service struct {
	tree   Tree
	ledger Ledger
	now    func() time.Time
}

func NewService(tree Tree, ledger Ledger) *Service {
	return &Service{
		tree:   tree,
		ledger: ledger,
		now:    time.Now,
	}
}

// WithClock replaces the clock periods are resolved against.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Build(ctx context.Context, f Filters, userID int64) (*Report, error) {
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}

	if f.Page < 1 {
		return nil, fmt.Errorf("%w: page must be a positive integer", ErrInvalidFilter)
	}

	q := transaction.Query{
		UserID: userID,
		From:   f.From,
		To:     f.To,
	}

	if f.Period != nil {
		r, err := period.Resolve(*f.Period, s.now())
		if err != nil {
			return nil, err
		}

		q.From, q.To = &r.From, &r.To
	}

	nodes, err := s.tree.ResolveSubtree(ctx, userID, f.CategoryID, category.Down)
	if err != nil {
		return nil, err
	}

	q.CategoryIDs = make([]int64, len(nodes))
	for i, n := range nodes {
		q.CategoryIDs[i] = n.ID
	}

	q.IncludeUncategorized = f.CategoryID == nil

	sum, err := s.ledger.Summarize(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("summarizing report: %w", err)
	}

	totalPages := (sum.Count + f.PageSize - 1) / f.PageSize

	// With no matching rows there are no pages, so even page 1 is out of range.
	if f.Page > totalPages {
		return nil, ErrPageNotExist
	}

	rows, err := s.ledger.Page(ctx, q, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return nil, fmt.Errorf("loading report page: %w", err)
	}

	lines, err := s.breadcrumbs(ctx, userID, rows)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Lines:      lines,
		Total:      sum.Total,
		TotalItems: sum.Count,
		TotalPages: totalPages,
		Page:       f.Page,
		PageSize:   f.PageSize,
	}

	if f.Page > 1 {
		rep.PrevPage = f.Values(f.Page - 1).Encode()
	}

	if f.Page < totalPages {
		rep.NextPage = f.Values(f.Page + 1).Encode()
	}

	return rep, nil
}

// breadcrumbs walks each distinct category of the page upward once.
func (s *Service) breadcrumbs(ctx context.Context, userID int64, rows []*transaction.Transaction) ([]Line, error) {
	paths := make(map[int64][]category.Node)
	lines := make([]Line, len(rows))

	for i, tx := range rows {
		lines[i] = Line{Transaction: tx, Categories: []category.Node{}}

		if tx.CategoryID == nil {
			continue
		}

		path, ok := paths[*tx.CategoryID]
		if !ok {
			var err error

			path, err = s.tree.ResolveSubtree(ctx, userID, tx.CategoryID, category.Up)
			if err != nil {
				return nil, fmt.Errorf("resolving breadcrumb of category %d: %w", *tx.CategoryID, err)
			}

			paths[*tx.CategoryID] = path
		}

		lines[i].Categories = path
	}

	return lines, nil
}
