package matching

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, userID int64, description string) (*Rule, error)
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context, userID int64) ([]*Rule, error)
	DeleteRule(ctx context.Context, id, userID int64) (bool, error)
}

type CategoryOwner interface {
	Owned(ctx context.Context, id, userID int64) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryOwner
}

func NewService(repo Repository, categories CategoryOwner) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
	}
}

// Suggest returns the category suggested for description, or nil when no rule matches.
func (s *Service) Suggest(ctx context.Context, userID int64, description string) (*int64, error) {
	r, err := s.repo.FindMatch(ctx, userID, description)
	if err != nil {
		return nil, err
	}

	if r == nil {
		return nil, nil
	}

	return new(r.CategoryID), nil
}

// Learn remembers that descriptions containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, userID int64, pattern string, categoryID int64) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	if _, err := s.categories.Owned(ctx, categoryID, userID); err != nil {
		return nil, err
	}

	r := &Rule{
		UserID:     userID,
		Pattern:    pattern,
		CategoryID: categoryID,
	}

	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "learned category rule", "rule_id", r.ID, "user_id", userID, "category_id", categoryID)

	return r, nil
}

func (s *Service) Rules(ctx context.Context, userID int64) ([]*Rule, error) {
	return s.repo.ListRules(ctx, userID)
}

func (s *Service) Forget(ctx context.Context, id, userID int64) error {
	ok, err := s.repo.DeleteRule(ctx, id, userID)
	if err != nil {
		return err
	}

	if !ok {
		return ErrRuleDoesNotExist
	}

	return nil
}

// Matcher loads every rule of the user for repeated in-memory suggestions.
func (s *Service) Matcher(ctx context.Context, userID int64) (*Matcher, error) {
	rules, err := s.repo.ListRules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	return NewMatcher(rules), nil
}
