package view_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetree/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/period"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

type recordingBuilder struct {
	calls []report.Filters
	rep   *report.Report
}

func (b *recordingBuilder) Build(_ context.Context, f report.Filters, _ int64) (*report.Report, error) {
	b.calls = append(b.calls, f)
	return b.rep, nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPeriodCycle(t *testing.T) {
	assert.Equal(t, "all time", view.PeriodLabel(0))
	assert.Equal(t, string(period.Week), view.PeriodLabel(1))

	idx := 0
	for range period.Names {
		idx = view.NextPeriod(idx)
	}

	assert.Equal(t, string(period.LastYear), view.PeriodLabel(idx))
	assert.Equal(t, 0, view.NextPeriod(idx))
}

func TestBreadcrumb(t *testing.T) {
	path := []category.Node{{ID: 3, Name: "Groceries"}, {ID: 1, Name: "Food"}}

	assert.Equal(t, "Food > Groceries", view.Breadcrumb(path))
	assert.Empty(t, view.Breadcrumb(nil))
}

func TestCustomRange(t *testing.T) {
	from, to, err := view.CustomRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix(), from)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Unix(), to)

	_, _, err = view.CustomRange("2024-03-31", "2024-03-01")
	assert.Error(t, err)

	_, _, err = view.CustomRange("March", "2024-03-01")
	assert.Error(t, err)
}

func TestFlattenForest(t *testing.T) {
	forest := category.NewForest([]*category.Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Groceries", ParentID: new(int64(1))},
		{ID: 3, Name: "Bills"},
	})

	lines := view.FlattenForest(forest)
	require.Len(t, lines, 3)

	got := make([]string, len(lines))
	depths := make([]int, len(lines))

	for i, l := range lines {
		got[i] = l.Category.Name
		depths[i] = l.Depth
	}

	assert.Equal(t, []string{"Bills", "Food", "Groceries"}, got)
	assert.Equal(t, []int{0, 0, 1}, depths)
}

func treeForest() *category.Forest {
	return category.NewForest([]*category.Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Groceries", ParentID: new(int64(1))},
		{ID: 3, Name: "Dairy", ParentID: new(int64(2))},
		{ID: 4, Name: "Restaurants", ParentID: new(int64(1))},
		{ID: 5, Name: "Bills"},
	})
}

func TestSelectionInfo(t *testing.T) {
	forest := treeForest()

	tests := []struct {
		name string
		id   int64
		want string
	}{
		{name: "Root", id: 1, want: "Path: Food | 3 subcategories"},
		{name: "Middle", id: 2, want: "Path: Food > Groceries | 1 subcategory"},
		{name: "Leaf", id: 3, want: "Path: Food > Groceries > Dairy"},
		{name: "Unknown", id: 99, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, view.SelectionInfo(forest, tt.id))
		})
	}
}

func TestDeleteDescription(t *testing.T) {
	forest := treeForest()

	assert.Equal(t, "2 subcategories move to the top level and its transactions lose their category.",
		view.DeleteDescription(forest, 1))
	assert.Equal(t, "1 subcategory moves to the top level and its transactions lose their category.",
		view.DeleteDescription(forest, 2))
	assert.Equal(t, "Its transactions lose their category.", view.DeleteDescription(forest, 5))
}

type staticCategories struct {
	forest *category.Forest
}

func (c staticCategories) Forest(context.Context, int64) (*category.Forest, error) {
	return c.forest, nil
}

func (c staticCategories) Create(context.Context, category.CreateParams) (*category.Category, error) {
	return nil, nil
}

func (c staticCategories) Delete(context.Context, int64, int64) error { return nil }

func TestTreeModel(t *testing.T) {
	m := view.NewTreeModel(staticCategories{forest: treeForest()}, 1)

	next, _ := m.Update(m.Init()())
	out := next.View()

	assert.Contains(t, out, "Categories (5)")
	assert.Contains(t, out, "Path: Bills")

	// Bills, Food, Groceries
	next, _ = next.Update(key("j"))
	next, _ = next.Update(key("j"))
	out = next.View()

	assert.Contains(t, out, "Path: Food > Groceries | 1 subcategory")

	// A reload keeps the cursor on the same category.
	next, _ = next.Update(m.Init()())
	assert.Contains(t, next.View(), "Path: Food > Groceries | 1 subcategory")
}

func TestReportModel(t *testing.T) {
	builder := &recordingBuilder{rep: &report.Report{
		Lines: []report.Line{{
			Transaction: &transaction.Transaction{
				Amount:      decimal.RequireFromString("12.50"),
				Description: new("Lunch"),
				Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			},
		}},
		Total:      decimal.RequireFromString("-12.50"),
		TotalItems: 1,
		TotalPages: 1,
		Page:       1,
		PageSize:   20,
	}}

	var m tea.Model = view.NewReportModel(builder, 7, 20)

	m, _ = m.Update(m.Init()())
	assert.Contains(t, m.View(), "Page 1 of 1")

	m, cmd := m.Update(key("p"))
	require.NotNil(t, cmd)
	cmd()

	// No next page, so n is ignored.
	m, cmd = m.Update(key("n"))
	assert.Nil(t, cmd)

	_, cmd = m.Update(key("b"))
	assert.Nil(t, cmd)

	require.Len(t, builder.calls, 2)
	assert.Nil(t, builder.calls[0].Period)
	require.NotNil(t, builder.calls[1].Period)
	assert.Equal(t, string(period.Week), *builder.calls[1].Period)
	assert.Equal(t, 1, builder.calls[1].Page)
}

type emptyBuilder struct{}

func (emptyBuilder) Build(context.Context, report.Filters, int64) (*report.Report, error) {
	return nil, report.ErrPageNotExist
}

func TestReportModel_NoMatches(t *testing.T) {
	var m tea.Model = view.NewReportModel(emptyBuilder{}, 7, 20)

	m, _ = m.Update(m.Init()())
	assert.Contains(t, m.View(), "0 transactions")
	assert.NotContains(t, m.View(), "Error")
}
