package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

// maxPages bounds a single export.
const maxPages = 1000

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type Reports interface {
	Build(ctx context.Context, f report.Filters, userID int64) (*report.Report, error)
}

// Service exports every line matching a report filter, across pages.
type Service struct {
	reports  Reports
	pageSize int
}

func NewService(reports Reports, pageSize int) *Service {
	if pageSize < 1 {
		pageSize = report.DefaultPageSize
	}

	return &Service{reports: reports, pageSize: pageSize}
}

// Export is the flattened content of a report.
type Export struct {
	Lines []report.Line
	Total decimal.Decimal
}

// Collect builds the report page by page until the last one. The page and page size of f are ignored.
func (s *Service) Collect(ctx context.Context, userID int64, f report.Filters) (*Export, error) {
	f.PageSize = s.pageSize

	out := &Export{}

	for page := 1; page <= maxPages; page++ {
		f.Page = page

		rep, err := s.reports.Build(ctx, f, userID)
		if page == 1 && errors.Is(err, report.ErrPageNotExist) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		out.Lines = append(out.Lines, rep.Lines...)
		out.Total = rep.Total

		if rep.NextPage == "" {
			return out, nil
		}
	}

	return nil, fmt.Errorf("export exceeds %d pages of %d rows", maxPages, s.pageSize)
}

// WriteCSV writes lines in the comma separated layout the statement importer reads back.
func WriteCSV(w io.Writer, lines []report.Line) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "description", "amount", "category"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, l := range lines {
		tx := l.Transaction

		record := []string{
			tx.Date.UTC().Format("2006-01-02"),
			description(tx),
			tx.Signed().StringFixed(2),
			breadcrumb(l.Categories),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %d: %w", tx.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders one line per transaction followed by the total.
func Summary(e *Export) string {
	var sb strings.Builder

	for _, l := range e.Lines {
		tx := l.Transaction

		where := "Uncategorized"
		if len(l.Categories) > 0 {
			where = breadcrumb(l.Categories)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s\n",
			tx.Date.UTC().Format("2006-01-02"), description(tx), tx.Signed().StringFixed(2), where)
	}

	fmt.Fprintf(&sb, "Total: %s\n", e.Total.StringFixed(2))

	return sb.String()
}

func description(tx *transaction.Transaction) string {
	if tx.Description == nil {
		return ""
	}

	return *tx.Description
}

// breadcrumb joins a child-first path root first, e.g. "Food > Groceries".
func breadcrumb(path []category.Node) string {
	names := make([]string, len(path))
	for i, n := range path {
		names[len(path)-1-i] = n.Name
	}

	return strings.Join(names, " > ")
}
