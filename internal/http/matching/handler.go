package matching

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetree/internal/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/matching"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=matching
type Service interface {
	Suggest(ctx context.Context, userID int64, description string) (*int64, error)
	Learn(ctx context.Context, userID int64, pattern string, categoryID int64) (*matching.Rule, error)
	Rules(ctx context.Context, userID int64) ([]*matching.Rule, error)
	Forget(ctx context.Context, id, userID int64) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Get("/rules", h.list)
	r.Post("/rules", h.learn)
	r.Delete("/rules/{id}", h.forget)
}

type suggestResponse struct {
	Description string `json:"description"`
	CategoryID  *int64 `json:"category_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	desc := r.URL.Query().Get("description")
	if desc == "" {
		http.Error(w, "description query parameter is required", http.StatusBadRequest)
		return
	}

	categoryID, err := h.svc.Suggest(r.Context(), p.UserID, desc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestResponse{Description: desc, CategoryID: categoryID})
}

type ruleResponse struct {
	ID         int64     `json:"id"`
	Pattern    string    `json:"pattern"`
	CategoryID int64     `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(rule *matching.Rule) ruleResponse {
	return ruleResponse{
		ID:         rule.ID,
		Pattern:    rule.Pattern,
		CategoryID: rule.CategoryID,
		CreatedAt:  rule.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	rules, err := h.svc.Rules(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		resp[i] = toResponse(rule)
	}

	writeJSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	Pattern    string `json:"pattern"`
	CategoryID int64  `json:"category_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.CategoryID < 1 {
		http.Error(w, "category_id is required", http.StatusBadRequest)
		return
	}

	rule, err := h.svc.Learn(r.Context(), p.UserID, req.Pattern, req.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(rule))
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Forget(r.Context(), id, p.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, matching.ErrEmptyPattern):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, matching.ErrRuleDoesNotExist), errors.Is(err, category.ErrCategoryDoesNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, category.ErrCategoryAccessDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		slog.ErrorContext(r.Context(), "matching request failed", "error", err)
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
