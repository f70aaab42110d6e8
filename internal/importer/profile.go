package importer

import "strings"

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Montante" with value "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of one statement export format.
type Profile struct {
	Name       string
	DateCol    string
	DateLayout string
	DescCol    string
	AmountMode amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string
	Numbers    numberStyle
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "cgd-cartao",
		DateCol:    "Data",
		DateLayout: "02-01-2006",
		DescCol:    "Descrição",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
		Numbers:    european,
	},
	{
		Name:       "cgd-extrato",
		DateCol:    "Data mov.",
		DateLayout: "02-01-2006",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Movimento",
		Numbers:    european,
	},
	{
		Name:       "cgd-conta",
		DateCol:    "Data mov.",
		DateLayout: "02-01-2006",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Montante",
		Numbers:    european,
	},
	{
		Name:       "generic-split",
		DateCol:    "date",
		DateLayout: "2006-01-02",
		DescCol:    "description",
		AmountMode: amountSplit,
		DebitCol:   "debit",
		CreditCol:  "credit",
		Numbers:    dotted,
	},
	{
		Name:       "generic",
		DateCol:    "date",
		DateLayout: "2006-01-02",
		DescCol:    "description",
		AmountMode: amountSingle,
		AmountCol:  "amount",
		Numbers:    dotted,
	},
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) of(name string) int {
	idx, ok := c[strings.ToLower(name)]
	if !ok {
		return -1
	}

	return idx
}

func (c colIndex) matches(p *Profile) bool {
	for _, name := range p.requiredCols() {
		if c.of(name) < 0 {
			return false
		}
	}

	return true
}
