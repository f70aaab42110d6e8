package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingRequiredFields   = errors.New("type and amount are required")
	ErrNegativeValue           = errors.New("amount must not be negative")
	ErrDataBaseConflict        = errors.New("transaction could not be stored")
	ErrTransactionDoesNotExist = errors.New("transaction does not exist")
	ErrTransactionAccessDenied = errors.New("transaction belongs to another user")
)

// Type tells income from expense. It is stored as a boolean.
type Type bool

const (
	TypeIncome  Type = true
	TypeExpense Type = false
)

func (t Type) String() string {
	if t == TypeIncome {
		return "income"
	}

	return "expense"
}

// Transaction is one recorded operation. Amount is never negative; Type carries the sign.
type Transaction struct {
	ID          int64
	Type        Type
	Amount      decimal.Decimal
	Description *string
	Date        time.Time
	UserID      int64
	CategoryID  *int64
}

// Signed returns the amount with the sign implied by the type.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TypeIncome {
		return t.Amount
	}

	return t.Amount.Neg()
}

// Query selects the operations of one user for reporting. CategoryIDs restricts the
// categories; IncludeUncategorized adds rows without one. From is inclusive and To
// exclusive, both unix seconds.
type Query struct {
	UserID               int64
	CategoryIDs          []int64
	IncludeUncategorized bool
	From                 *int64
	To                   *int64
}

// Summary aggregates a Query over every matching row.
type Summary struct {
	Total decimal.Decimal
	Count int
}

// roundAmount rounds up to cents.
func roundAmount(d decimal.Decimal) decimal.Decimal {
	return d.RoundCeil(2)
}
