package category

import (
	"errors"
)

var (
	ErrCategoryDoesNotExist = errors.New("category does not exist")
	ErrCategoryAccessDenied = errors.New("category belongs to another user")
	ErrCreateConflict       = errors.New("category name already used under another parent")
	ErrFullCopy             = errors.New("category already exists")
	ErrPatchConflict        = errors.New("category patch conflict")
	ErrDeleteConflict       = errors.New("category delete failed")
	ErrInvalidTraversal     = errors.New("upward traversal needs a starting category")
)

// Category is a node of a user's category forest. A nil ParentID marks a top-level category.
type Category struct {
	ID       int64
	Name     string
	ParentID *int64
	UserID   int64
}

// Node is the id/name pair returned by tree walks.
type Node struct {
	ID   int64
	Name string
}

// Direction selects the traversal mode of ResolveSubtree.
type Direction int

const (
	// Down walks from a category to all of its transitive children.
	Down Direction = iota
	// Up walks from a category to the root, child first.
	Up
)

// FullCopyError is returned by Create when an identical category already exists.
// Callers treat it as success and answer with Existing.
type FullCopyError struct {
	Existing *Category
}

func (e *FullCopyError) Error() string {
	return ErrFullCopy.Error()
}

func (e *FullCopyError) Is(target error) bool {
	return target == ErrFullCopy
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}
