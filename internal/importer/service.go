package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/budgetree/internal/matching"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

var ErrInvalidStatement = errors.New("invalid statement")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Rules interface {
	Matcher(ctx context.Context, userID int64) (*matching.Matcher, error)
}

type Ledger interface {
	ImportBatch(ctx context.Context, userID int64, params []transaction.AddParams) (*transaction.ImportResult, error)
}

type Service struct {
	parser *Parser
	rules  Rules
	ledger Ledger
}

func NewService(rules Rules, ledger Ledger) *Service {
	return &Service{
		parser: NewParser(),
		rules:  rules,
		ledger: ledger,
	}
}

// Import parses a statement and records its rows for userID. Rows get the category suggested
// by the user's rules, else defaultCategory.
func (s *Service) Import(ctx context.Context, userID int64, r io.Reader, defaultCategory *int64) (*transaction.ImportResult, error) {
	params, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatement, err)
	}

	if len(params) == 0 {
		return &transaction.ImportResult{}, nil
	}

	matcher, err := s.rules.Matcher(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range params {
		params[i].UserID = userID

		if params[i].Description != nil {
			params[i].CategoryID = matcher.Suggest(*params[i].Description)
		}

		if params[i].CategoryID == nil {
			params[i].CategoryID = defaultCategory
		}
	}

	return s.ledger.ImportBatch(ctx, userID, params)
}
