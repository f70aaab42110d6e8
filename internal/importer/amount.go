package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// numberStyle is how a statement writes decimals.
type numberStyle int

const (
	// european writes "1.234,56".
	european numberStyle = iota
	// dotted writes "1,234.56" or "1234.56".
	dotted
)

// parseAmount parses a signed amount written in style. Currency suffixes such as "EUR" and
// surrounding spaces are ignored.
func parseAmount(s string, style numberStyle) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimSuffix(clean, "EUR")
	clean = strings.TrimSuffix(clean, "€")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, " ", "")

	switch style {
	case european:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case dotted:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
