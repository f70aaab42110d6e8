package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetree/internal/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/period"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=transaction
type Ledger interface {
	Add(ctx context.Context, params transaction.AddParams) (*transaction.Transaction, error)
	Get(ctx context.Context, id, userID int64) (*transaction.Transaction, error)
	Patch(ctx context.Context, id, userID int64, params transaction.PatchParams) (*transaction.Transaction, error)
	Delete(ctx context.Context, id, userID int64) error
}

type Reports interface {
	Build(ctx context.Context, f report.Filters, userID int64) (*report.Report, error)
}

type Handler struct {
	ledger          Ledger
	reports         Reports
	defaultPageSize int
	maxPageSize     int
}

func NewHandler(ledger Ledger, reports Reports, defaultPageSize, maxPageSize int) *Handler {
	return &Handler{
		ledger:          ledger,
		reports:         reports,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.report)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.patch)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Type        *bool            `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *int64           `json:"date"`
	CategoryID  *int64           `json:"category_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.ledger.Add(r.Context(), transaction.AddParams{
		Type:        toType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		Date:        toTime(req.Date),
		UserID:      p.UserID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(w, r, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	f, err := report.ParseFilters(r.URL.Query(), h.defaultPageSize, h.maxPageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rep, err := h.reports.Build(r.Context(), f, p.UserID)
	if err != nil {
		writeError(w, r, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(rep, r.URL.Path))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tx, err := h.ledger.Get(r.Context(), id, p.UserID)
	if err != nil {
		writeError(w, r, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

type patchTransactionRequest struct {
	Type        *bool            `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *int64           `json:"date,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req patchTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.ledger.Patch(r.Context(), id, p.UserID, transaction.PatchParams{
		Type:        toType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		Date:        toTime(req.Date),
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.ledger.Delete(r.Context(), id, p.UserID); err != nil {
		writeError(w, r, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Deleted: id})
}

func toType(b *bool) *transaction.Type {
	if b == nil {
		return nil
	}

	return new(transaction.Type(*b))
}

func toTime(unix *int64) *time.Time {
	if unix == nil {
		return nil
	}

	return new(time.Unix(*unix, 0).UTC())
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

// writeError maps domain errors to status codes. A storage conflict answers conflictStatus,
// which differs between create and patch.
func writeError(w http.ResponseWriter, r *http.Request, err error, conflictStatus int) {
	switch {
	case errors.Is(err, transaction.ErrMissingRequiredFields),
		errors.Is(err, transaction.ErrNegativeValue),
		errors.Is(err, period.ErrInvalidPeriod),
		errors.Is(err, report.ErrInvalidFilter):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, transaction.ErrTransactionDoesNotExist),
		errors.Is(err, category.ErrCategoryDoesNotExist),
		errors.Is(err, report.ErrPageNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, transaction.ErrTransactionAccessDenied),
		errors.Is(err, category.ErrCategoryAccessDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, transaction.ErrDataBaseConflict):
		slog.ErrorContext(r.Context(), "storing transaction", "error", err)
		http.Error(w, transaction.ErrDataBaseConflict.Error(), conflictStatus)
	default:
		slog.ErrorContext(r.Context(), "transaction request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
