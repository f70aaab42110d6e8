package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

var ErrUnknownFormat = errors.New("no known statement format found")

// separators are tried in order when locating the header row.
var separators = []rune{';', ','}

// Parser reads bank statement CSV exports and produces transaction params. The format is
// detected by matching header rows against the known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.AddParams, error) {
	utf8r, err := NewUTF8Reader(r)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	for _, sep := range separators {
		rows, err := readRows(raw, sep)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
	}

	return nil, ErrUnknownFormat
}

func readRows(raw []byte, sep rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	return rows, nil
}

// detectProfile scans rows for a header that matches a known profile and returns the
// profile, its column index and the header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.ToLower(strings.TrimSpace(cell)); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if cols.matches(&profiles[i]) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// parseRows skips rows without a parsable date or a non-zero amount, which covers footers
// and balance lines.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerIdx int) ([]transaction.AddParams, error) {
	dateIdx := cols.of(p.DateCol)
	descIdx := cols.of(p.DescCol)

	var params []transaction.AddParams

	for i, row := range rows {
		rowNum := headerIdx + i + 2

		date, ok := parseDate(cellValue(row, dateIdx), p.DateLayout)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, txType, ok := rowAmount(p, cols, row)
		if !ok {
			continue
		}

		params = append(params, transaction.AddParams{
			Type:        new(txType),
			Amount:      new(amount),
			Description: new(desc),
			Date:        new(date),
		})
	}

	return params, nil
}

func parseDate(s, layout string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		d, ok := nonZero(cellValue(row, cols.of(p.AmountCol)), p.Numbers)
		if !ok {
			return decimal.Zero, transaction.TypeExpense, false
		}

		if d.IsNegative() {
			return d.Neg(), transaction.TypeExpense, true
		}

		return d, transaction.TypeIncome, true
	case amountSplit:
		if d, ok := nonZero(cellValue(row, cols.of(p.DebitCol)), p.Numbers); ok {
			return d.Abs(), transaction.TypeExpense, true
		}

		if d, ok := nonZero(cellValue(row, cols.of(p.CreditCol)), p.Numbers); ok {
			return d.Abs(), transaction.TypeIncome, true
		}
	}

	return decimal.Zero, transaction.TypeExpense, false
}

func nonZero(s string, style numberStyle) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s, style)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
