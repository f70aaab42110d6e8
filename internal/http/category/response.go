package category

import (
	"github.com/MrJamesThe3rd/budgetree/internal/category"
)

type categoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

type nodeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type treeResponse struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Children []*treeResponse `json:"children"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: c.ParentID,
	}
}

func toResponseList(cats []*category.Category) []categoryResponse {
	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = toResponse(c)
	}

	return resp
}

func toNodes(nodes []category.Node) []nodeResponse {
	resp := make([]nodeResponse, len(nodes))
	for i, n := range nodes {
		resp[i] = nodeResponse{ID: n.ID, Name: n.Name}
	}

	return resp
}

func toTree(nodes []*category.TreeNode) []*treeResponse {
	resp := make([]*treeResponse, len(nodes))
	for i, n := range nodes {
		resp[i] = &treeResponse{
			ID:       n.Category.ID,
			Name:     n.Category.Name,
			Children: toTree(n.Children),
		}
	}

	return resp
}
