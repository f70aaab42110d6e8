package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

type transactionResponse struct {
	ID          int64   `json:"id"`
	Type        bool    `json:"type"`
	Amount      string  `json:"amount"`
	Description *string `json:"description"`
	Date        int64   `json:"date"`
	CategoryID  *int64  `json:"category_id"`
}

type nodeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type lineResponse struct {
	transactionResponse
	Categories []nodeResponse `json:"categories"`
}

type reportResponse struct {
	Transactions []lineResponse `json:"transactions"`
	Total        string         `json:"total"`
	TotalItems   int            `json:"total_items"`
	TotalPages   int            `json:"total_pages"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	PrevPage     string         `json:"prev_page"`
	NextPage     string         `json:"next_page"`
}

// money renders an amount as a decimal string with two places.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        bool(tx.Type),
		Amount:      money(tx.Amount),
		Description: tx.Description,
		Date:        tx.Date.Unix(),
		CategoryID:  tx.CategoryID,
	}
}

func toNodes(nodes []category.Node) []nodeResponse {
	resp := make([]nodeResponse, len(nodes))
	for i, n := range nodes {
		resp[i] = nodeResponse{ID: n.ID, Name: n.Name}
	}

	return resp
}

// toReportResponse prefixes non-empty page links with path.
func toReportResponse(rep *report.Report, path string) reportResponse {
	lines := make([]lineResponse, len(rep.Lines))
	for i, l := range rep.Lines {
		lines[i] = lineResponse{
			transactionResponse: toResponse(l.Transaction),
			Categories:          toNodes(l.Categories),
		}
	}

	resp := reportResponse{
		Transactions: lines,
		Total:        money(rep.Total),
		TotalItems:   rep.TotalItems,
		TotalPages:   rep.TotalPages,
		Page:         rep.Page,
		PageSize:     rep.PageSize,
	}

	if rep.PrevPage != "" {
		resp.PrevPage = path + "?" + rep.PrevPage
	}

	if rep.NextPage != "" {
		resp.NextPage = path + "?" + rep.NextPage
	}

	return resp
}
