package report_test

import (
	"context"
	"errors"
	"math"
	"net/url"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/period"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

// memLedger answers ledger queries over an in-memory slice the way the SQL store does.
type memLedger struct {
	rows []*transaction.Transaction
}

func (l *memLedger) match(q transaction.Query) []*transaction.Transaction {
	var out []*transaction.Transaction

	for _, tx := range l.rows {
		if tx.UserID != q.UserID {
			continue
		}

		inSet := tx.CategoryID != nil && slices.Contains(q.CategoryIDs, *tx.CategoryID)
		if !inSet && !(q.IncludeUncategorized && tx.CategoryID == nil) {
			continue
		}

		window := period.Range{From: math.MinInt64, To: math.MaxInt64}
		if q.From != nil {
			window.From = *q.From
		}

		if q.To != nil {
			window.To = *q.To
		}

		if !window.Contains(tx.Date.Unix()) {
			continue
		}

		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}

		return out[i].ID < out[j].ID
	})

	return out
}

func (l *memLedger) Summarize(_ context.Context, q transaction.Query) (transaction.Summary, error) {
	rows := l.match(q)

	sum := transaction.Summary{Total: decimal.Zero, Count: len(rows)}
	for _, tx := range rows {
		sum.Total = sum.Total.Add(tx.Signed())
	}

	return sum, nil
}

func (l *memLedger) Page(_ context.Context, q transaction.Query, limit, offset int) ([]*transaction.Transaction, error) {
	rows := l.match(q)
	if offset >= len(rows) {
		return nil, nil
	}

	return rows[offset:min(offset+limit, len(rows))], nil
}

// memTree serves traversals from an in-memory forest.
type memTree struct {
	forest *category.Forest
}

func (t *memTree) ResolveSubtree(_ context.Context, _ int64, id *int64, dir category.Direction) ([]category.Node, error) {
	if id == nil {
		var nodes []category.Node

		t.forest.Walk(func(c *category.Category, _ int) {
			nodes = append(nodes, category.Node{ID: c.ID, Name: c.Name})
		})

		return nodes, nil
	}

	if _, ok := t.forest.Get(*id); !ok {
		return nil, category.ErrCategoryDoesNotExist
	}

	if dir == category.Up {
		return t.forest.Ancestors(*id), nil
	}

	return t.forest.Descendants(*id), nil
}

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// A(1) -> B(2) -> C(3), plus D(4) on its own.
func fixture() (*memTree, *memLedger) {
	tree := &memTree{forest: category.NewForest([]*category.Category{
		{ID: 1, Name: "A", UserID: 1},
		{ID: 2, Name: "B", ParentID: new(int64(1)), UserID: 1},
		{ID: 3, Name: "C", ParentID: new(int64(2)), UserID: 1},
		{ID: 4, Name: "D", UserID: 1},
	})}

	ledger := &memLedger{rows: []*transaction.Transaction{
		{ID: 1, Type: transaction.TypeIncome, Amount: decimal.NewFromInt(100), Date: base, UserID: 1, CategoryID: new(int64(3))},
		{ID: 2, Type: transaction.TypeExpense, Amount: decimal.NewFromInt(40), Date: base.Add(time.Hour), UserID: 1, CategoryID: new(int64(2))},
		{ID: 3, Type: transaction.TypeIncome, Amount: decimal.NewFromInt(10), Date: base.Add(2 * time.Hour), UserID: 1},
		{ID: 4, Type: transaction.TypeExpense, Amount: decimal.NewFromInt(999), Date: base, UserID: 2},
	}}

	return tree, ledger
}

func TestService_Build_TotalIndependentOfPageSize(t *testing.T) {
	tree, ledger := fixture()
	svc := report.NewService(tree, ledger)

	for _, size := range []int{1, 2, 20} {
		rep, err := svc.Build(context.Background(), report.Filters{PageSize: size, Page: 1}, 1)
		require.NoError(t, err)

		assert.Equal(t, "70", rep.Total.String(), "page size %d", size)
		assert.Equal(t, 3, rep.TotalItems)
	}
}

func TestService_Build_CategoryFilterExcludesUncategorized(t *testing.T) {
	tree, ledger := fixture()

	rep, err := report.NewService(tree, ledger).Build(context.Background(), report.Filters{CategoryID: new(int64(1)), Page: 1}, 1)
	require.NoError(t, err)

	assert.Equal(t, "60", rep.Total.String())
	require.Len(t, rep.Lines, 2)

	assert.Equal(t, []category.Node{{ID: 3, Name: "C"}, {ID: 2, Name: "B"}, {ID: 1, Name: "A"}}, rep.Lines[0].Categories)
	assert.Equal(t, []category.Node{{ID: 2, Name: "B"}, {ID: 1, Name: "A"}}, rep.Lines[1].Categories)
}

func TestService_Build_OrderedWithEmptyBreadcrumbs(t *testing.T) {
	tree, ledger := fixture()

	rep, err := report.NewService(tree, ledger).Build(context.Background(), report.Filters{Page: 1}, 1)
	require.NoError(t, err)

	require.Len(t, rep.Lines, 3)

	var ids []int64
	for _, l := range rep.Lines {
		ids = append(ids, l.Transaction.ID)
	}

	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.NotNil(t, rep.Lines[2].Categories)
	assert.Empty(t, rep.Lines[2].Categories)
}

func TestService_Build_Pagination(t *testing.T) {
	tree, _ := fixture()

	ledger := &memLedger{}
	for i := range 25 {
		ledger.rows = append(ledger.rows, &transaction.Transaction{
			ID:     int64(i + 1),
			Type:   transaction.TypeExpense,
			Amount: decimal.NewFromInt(1),
			Date:   base.Add(time.Duration(i) * time.Minute),
			UserID: 1,
		})
	}

	svc := report.NewService(tree, ledger)
	ctx := context.Background()

	first, err := svc.Build(ctx, report.Filters{PageSize: 20, Page: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalPages)
	assert.Len(t, first.Lines, 20)
	assert.Empty(t, first.PrevPage)
	assert.Equal(t, "page=2&page_size=20", first.NextPage)

	second, err := svc.Build(ctx, report.Filters{PageSize: 20, Page: 2}, 1)
	require.NoError(t, err)
	assert.Len(t, second.Lines, 5)
	assert.Empty(t, second.NextPage)
	assert.Equal(t, "page=1&page_size=20", second.PrevPage)
	assert.Equal(t, int64(21), second.Lines[0].Transaction.ID)

	_, err = svc.Build(ctx, report.Filters{PageSize: 20, Page: 3}, 1)
	assert.ErrorIs(t, err, report.ErrPageNotExist)
}

func TestService_Build_NoMatchesHasNoPages(t *testing.T) {
	tree, _ := fixture()
	svc := report.NewService(tree, &memLedger{})

	for _, page := range []int{1, 2} {
		rep, err := svc.Build(context.Background(), report.Filters{PageSize: 20, Page: page}, 1)
		assert.ErrorIs(t, err, report.ErrPageNotExist)
		assert.Nil(t, rep)
	}
}

func TestService_Build_PeriodOverridesRange(t *testing.T) {
	tree, ledger := fixture()

	// June has no rows; the explicit range would match all of them.
	today := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	svc := report.NewService(tree, ledger).WithClock(func() time.Time { return today })

	f := report.Filters{
		From:   new(int64(0)),
		To:     new(base.Add(24 * time.Hour).Unix()),
		Period: new("last_month"),
		Page:   1,
	}

	rep, err := svc.Build(context.Background(), f, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TotalItems)

	f.Period = new("month")

	rep, err = svc.Build(context.Background(), f, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.TotalItems)
}

func TestService_Build_HalfOpenRange(t *testing.T) {
	tree, ledger := fixture()

	// Row 3 sits exactly on the upper bound and is excluded.
	f := report.Filters{
		From: new(base.Unix()),
		To:   new(base.Add(2 * time.Hour).Unix()),
		Page: 1,
	}

	rep, err := report.NewService(tree, ledger).Build(context.Background(), f, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.TotalItems)
	assert.Equal(t, "60", rep.Total.String())
}

func TestService_Build_LinksKeepFilters(t *testing.T) {
	tree, ledger := fixture()

	f := report.Filters{CategoryID: new(int64(1)), Period: new("year"), PageSize: 1, Page: 1}
	svc := report.NewService(tree, ledger).WithClock(func() time.Time { return base })

	rep, err := svc.Build(context.Background(), f, 1)
	require.NoError(t, err)

	next, err := url.ParseQuery(rep.NextPage)
	require.NoError(t, err)
	assert.Equal(t, "1", next.Get("category_id"))
	assert.Equal(t, "year", next.Get("period"))
	assert.Equal(t, "1", next.Get("page_size"))
	assert.Equal(t, "2", next.Get("page"))
}

func TestService_Build_Errors(t *testing.T) {
	type testCase struct {
		name      string
		filters   report.Filters
		setupMock func(tree *report.MockTree, ledger *report.MockLedger)
		wantErr   error
	}

	tests := []testCase{
		{
			name:    "InvalidPeriod",
			filters: report.Filters{Period: new("fortnight"), Page: 1},
			wantErr: period.ErrInvalidPeriod,
		},
		{
			name:    "EmptyPeriod",
			filters: report.Filters{Period: new(""), Page: 1},
			wantErr: period.ErrInvalidPeriod,
		},
		{
			name:    "ZeroPage",
			filters: report.Filters{Page: 0},
			wantErr: report.ErrInvalidFilter,
		},
		{
			name:    "ForeignCategory",
			filters: report.Filters{CategoryID: new(int64(9)), Page: 1},
			setupMock: func(tree *report.MockTree, _ *report.MockLedger) {
				tree.EXPECT().
					ResolveSubtree(gomock.Any(), int64(1), gomock.Any(), category.Down).
					Return(nil, category.ErrCategoryAccessDenied)
			},
			wantErr: category.ErrCategoryAccessDenied,
		},
		{
			name:    "SummaryFails",
			filters: report.Filters{Page: 1},
			setupMock: func(tree *report.MockTree, ledger *report.MockLedger) {
				tree.EXPECT().ResolveSubtree(gomock.Any(), int64(1), nil, category.Down).Return(nil, nil)
				ledger.EXPECT().Summarize(gomock.Any(), gomock.Any()).Return(transaction.Summary{}, errors.New("db error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			tree := report.NewMockTree(ctrl)
			ledger := report.NewMockLedger(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(tree, ledger)
			}

			rep, err := report.NewService(tree, ledger).Build(context.Background(), tt.filters, 1)
			assert.Nil(t, rep)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseFilters(t *testing.T) {
	f, err := report.ParseFilters(url.Values{
		"category_id": {"3"},
		"period":      {"week"},
		"page":        {"2"},
	}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), *f.CategoryID)
	assert.Equal(t, "week", *f.Period)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, 2, f.Page)
	assert.Nil(t, f.From)

	f, err = report.ParseFilters(url.Values{"period": {""}}, 20, 100)
	require.NoError(t, err)
	require.NotNil(t, f.Period)
	assert.Empty(t, *f.Period)

	for _, bad := range []url.Values{
		{"category_id": {"x"}},
		{"page": {"0"}},
		{"page_size": {"101"}},
		{"from": {"yesterday"}},
	} {
		_, err := report.ParseFilters(bad, 20, 100)
		assert.ErrorIs(t, err, report.ErrInvalidFilter, bad.Encode())
	}
}
