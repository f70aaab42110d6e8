package category

import (
	"sort"
)

// Forest is an in-memory parent -> children index over one user's categories.
// It answers the same walks as the recursive store queries without a round trip.
type Forest struct {
	byID     map[int64]*Category
	children map[int64][]*Category
	roots    []*Category
}

// TreeNode is a category with its nested children, used for rendering.
type TreeNode struct {
	Category *Category
	Children []*TreeNode
}

// NewForest indexes cats. Categories whose parent is not in cats are treated as roots.
func NewForest(cats []*Category) *Forest {
	f := &Forest{
		byID:     make(map[int64]*Category, len(cats)),
		children: make(map[int64][]*Category),
	}

	for _, c := range cats {
		f.byID[c.ID] = c
	}

	for _, c := range cats {
		if c.ParentID == nil {
			f.roots = append(f.roots, c)
			continue
		}

		if _, ok := f.byID[*c.ParentID]; !ok {
			f.roots = append(f.roots, c)
			continue
		}

		f.children[*c.ParentID] = append(f.children[*c.ParentID], c)
	}

	byName := func(list []*Category) {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}

	byName(f.roots)

	for _, list := range f.children {
		byName(list)
	}

	return f
}

func (f *Forest) Len() int { return len(f.byID) }

func (f *Forest) Get(id int64) (*Category, bool) {
	c, ok := f.byID[id]
	return c, ok
}

// Children returns the direct children of id sorted by name.
func (f *Forest) Children(id int64) []*Category { return f.children[id] }

// Descendants returns id followed by every transitive child, breadth first.
func (f *Forest) Descendants(id int64) []Node {
	start, ok := f.byID[id]
	if !ok {
		return nil
	}

	nodes := []Node{{ID: start.ID, Name: start.Name}}
	seen := map[int64]bool{start.ID: true}
	queue := []int64{start.ID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range f.children[current] {
			if seen[child.ID] {
				continue
			}

			seen[child.ID] = true
			nodes = append(nodes, Node{ID: child.ID, Name: child.Name})
			queue = append(queue, child.ID)
		}
	}

	return nodes
}

// Ancestors returns the breadcrumb of id: the category itself, then its parent, up to the root.
func (f *Forest) Ancestors(id int64) []Node {
	var nodes []Node

	seen := map[int64]bool{}

	for c, ok := f.byID[id]; ok && !seen[c.ID]; {
		seen[c.ID] = true
		nodes = append(nodes, Node{ID: c.ID, Name: c.Name})

		if c.ParentID == nil {
			break
		}

		c, ok = f.byID[*c.ParentID]
	}

	return nodes
}

// Tree returns the nested representation of the whole forest.
func (f *Forest) Tree() []*TreeNode {
	nodes := make([]*TreeNode, 0, len(f.roots))
	for _, r := range f.roots {
		nodes = append(nodes, f.subtree(r, map[int64]bool{}))
	}

	return nodes
}

func (f *Forest) subtree(c *Category, seen map[int64]bool) *TreeNode {
	seen[c.ID] = true
	node := &TreeNode{Category: c}

	for _, child := range f.children[c.ID] {
		if seen[child.ID] {
			continue
		}

		node.Children = append(node.Children, f.subtree(child, seen))
	}

	return node
}

// Walk visits every category depth first, passing its depth (0 for roots).
func (f *Forest) Walk(fn func(c *Category, depth int)) {
	var visit func(n *TreeNode, depth int)

	visit = func(n *TreeNode, depth int) {
		fn(n.Category, depth)

		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}

	for _, root := range f.Tree() {
		visit(root, 0)
	}
}
