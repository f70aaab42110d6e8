package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	GetCategory(ctx context.Context, id int64) (*Category, error)
	FindByName(ctx context.Context, userID int64, name string) (*Category, error)
	NameTaken(ctx context.Context, userID int64, name string, excludeID int64) (bool, error)
	ListCategories(ctx context.Context, userID int64) ([]*Category, error)

	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) (bool, error)

	Descendants(ctx context.Context, userID, id int64) ([]Node, error)
	Ancestors(ctx context.Context, userID, id int64) ([]Node, error)

	BeginDelete(ctx context.Context) (DeleteTx, error)
}

// DeleteTx runs the cascade of a category delete inside one database transaction.
type DeleteTx interface {
	ClearTransactionCategory(ctx context.Context, userID, categoryID int64) error
	DetachChildren(ctx context.Context, categoryID int64) error
	DeleteCategory(ctx context.Context, categoryID int64) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name     string
	ParentID *int64
	UserID   int64
}

// PatchParams carries the optional fields of a patch. A ParentID pointing at 0 promotes
// the category to top level.
type PatchParams struct {
	Name     *string
	ParentID *int64
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	if params.ParentID != nil {
		if _, err := s.Owned(ctx, *params.ParentID, params.UserID); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.FindByName(ctx, params.UserID, params.Name)

	switch {
	case err == nil:
		if sameParent(existing.ParentID, params.ParentID) {
			return nil, &FullCopyError{Existing: existing}
		}

		return nil, ErrCreateConflict
	case !errors.Is(err, ErrCategoryDoesNotExist):
		return nil, fmt.Errorf("looking up category name: %w", err)
	}

	c := &Category{
		Name:     params.Name,
		ParentID: params.ParentID,
		UserID:   params.UserID,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if !errors.Is(err, ErrCreateConflict) {
			return nil, err
		}

		// A concurrent create won the unique index; report its row like any other copy.
		winner, findErr := s.repo.FindByName(ctx, params.UserID, params.Name)
		if findErr == nil && sameParent(winner.ParentID, params.ParentID) {
			return nil, &FullCopyError{Existing: winner}
		}

		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, name string, userID int64) (*Category, error) {
	c, err := s.repo.FindByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	if c.UserID != userID {
		return nil, ErrCategoryAccessDenied
	}

	return c, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

// Forest loads every category of the user and indexes it in memory.
func (s *Service) Forest(ctx context.Context, userID int64) (*Forest, error) {
	cats, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	return NewForest(cats), nil
}

func (s *Service) Patch(ctx context.Context, id, userID int64, params PatchParams) (*Category, error) {
	c, err := s.Owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.ParentID != nil {
		if *params.ParentID > 0 {
			if err := s.checkNewParent(ctx, c, *params.ParentID); err != nil {
				return nil, err
			}

			c.ParentID = new(*params.ParentID)
		} else {
			c.ParentID = nil
		}
	}

	if params.Name != nil {
		taken, err := s.repo.NameTaken(ctx, userID, *params.Name, id)
		if err != nil {
			return nil, fmt.Errorf("checking category name: %w", err)
		}

		if taken {
			return nil, ErrPatchConflict
		}

		c.Name = *params.Name
	}

	updated, err := s.repo.UpdateCategory(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatchConflict, err)
	}

	if !updated {
		return nil, ErrPatchConflict
	}

	return c, nil
}

// checkNewParent verifies ownership of the new parent and that it does not sit inside
// the subtree being moved, which would close a cycle.
func (s *Service) checkNewParent(ctx context.Context, c *Category, parentID int64) error {
	if _, err := s.Owned(ctx, parentID, c.UserID); err != nil {
		return err
	}

	subtree, err := s.repo.Descendants(ctx, c.UserID, c.ID)
	if err != nil {
		return fmt.Errorf("loading subtree: %w", err)
	}

	for _, n := range subtree {
		if n.ID == parentID {
			return ErrPatchConflict
		}
	}

	return nil
}

// Delete removes a category. Operations pointing at it lose their category and its
// children become top-level; the three steps commit together or not at all.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.Owned(ctx, id, userID); err != nil {
		return err
	}

	dtx, err := s.repo.BeginDelete(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteConflict, err)
	}
	defer dtx.Rollback()

	if err := dtx.ClearTransactionCategory(ctx, userID, id); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteConflict, err)
	}

	if err := dtx.DetachChildren(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteConflict, err)
	}

	if err := dtx.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteConflict, err)
	}

	if err := dtx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteConflict, err)
	}

	slog.InfoContext(ctx, "category deleted", "category_id", id, "user_id", userID)

	return nil
}

// ResolveSubtree walks the user's forest. Down with a nil id returns every category of the
// user; Up requires a starting category. Up results are ordered child to root.
func (s *Service) ResolveSubtree(ctx context.Context, userID int64, id *int64, dir Direction) ([]Node, error) {
	if id == nil {
		if dir == Up {
			return nil, ErrInvalidTraversal
		}

		cats, err := s.repo.ListCategories(ctx, userID)
		if err != nil {
			return nil, err
		}

		nodes := make([]Node, len(cats))
		for i, c := range cats {
			nodes[i] = Node{ID: c.ID, Name: c.Name}
		}

		return nodes, nil
	}

	if _, err := s.Owned(ctx, *id, userID); err != nil {
		return nil, err
	}

	if dir == Up {
		return s.repo.Ancestors(ctx, userID, *id)
	}

	return s.repo.Descendants(ctx, userID, *id)
}

// Owned loads a category and checks it belongs to userID. Absence is reported before ownership.
func (s *Service) Owned(ctx context.Context, id, userID int64) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.UserID != userID {
		return nil, ErrCategoryAccessDenied
	}

	return c, nil
}
