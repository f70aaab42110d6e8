package importcsv

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetree/internal/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/importer"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

const maxUploadSize = 10 << 20

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=importcsv
type Importer interface {
	Import(ctx context.Context, userID int64, r io.Reader, defaultCategory *int64) (*transaction.ImportResult, error)
}

type Handler struct {
	importer Importer
}

func NewHandler(importer Importer) *Handler {
	return &Handler{importer: importer}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type transactionResponse struct {
	ID          int64   `json:"id"`
	Type        bool    `json:"type"`
	Amount      string  `json:"amount"`
	Description *string `json:"description"`
	Date        int64   `json:"date"`
	CategoryID  *int64  `json:"category_id"`
}

type importResponse struct {
	Imported []transactionResponse `json:"imported"`
	Skipped  int                   `json:"skipped"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	var defaultCategory *int64

	if v := r.FormValue("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			http.Error(w, "invalid category_id", http.StatusBadRequest)
			return
		}

		defaultCategory = &id
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.importer.Import(r.Context(), p.UserID, file, defaultCategory)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := importResponse{
		Imported: make([]transactionResponse, 0, len(result.Imported)),
		Skipped:  len(result.Skipped),
	}

	for _, tx := range result.Imported {
		resp.Imported = append(resp.Imported, transactionResponse{
			ID:          tx.ID,
			Type:        bool(tx.Type),
			Amount:      tx.Amount.StringFixed(2),
			Description: tx.Description,
			Date:        tx.Date.Unix(),
			CategoryID:  tx.CategoryID,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, importer.ErrInvalidStatement),
		errors.Is(err, transaction.ErrMissingRequiredFields),
		errors.Is(err, transaction.ErrNegativeValue):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, category.ErrCategoryDoesNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, category.ErrCategoryAccessDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, transaction.ErrDataBaseConflict):
		http.Error(w, transaction.ErrDataBaseConflict.Error(), http.StatusConflict)
	default:
		slog.ErrorContext(r.Context(), "importing statement", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
