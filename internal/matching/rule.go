package matching

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	ErrEmptyPattern     = errors.New("pattern must not be empty")
	ErrRuleDoesNotExist = errors.New("rule does not exist")
)

// Rule assigns CategoryID to any description containing Pattern, case-insensitively.
type Rule struct {
	ID         int64
	UserID     int64
	Pattern    string
	CategoryID int64
	CreatedAt  time.Time
}

// Matcher suggests categories from a fixed set of rules without touching storage.
type Matcher struct {
	rules []*Rule
}

// NewMatcher orders rules longest pattern first, newest first on ties.
func NewMatcher(rules []*Rule) *Matcher {
	sorted := slices.Clone(rules)

	slices.SortStableFunc(sorted, func(a, b *Rule) int {
		if c := cmp.Compare(len(b.Pattern), len(a.Pattern)); c != 0 {
			return c
		}

		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return &Matcher{rules: sorted}
}

// Suggest returns the category of the first rule matching description, or nil.
func (m *Matcher) Suggest(description string) *int64 {
	lower := strings.ToLower(description)

	for _, r := range m.rules {
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return new(r.CategoryID)
		}
	}

	return nil
}
