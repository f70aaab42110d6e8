package category

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetree/internal/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
)

var errSelfParent = errors.New("category cannot be its own parent")

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=category
type Service interface {
	Create(ctx context.Context, params category.CreateParams) (*category.Category, error)
	Get(ctx context.Context, name string, userID int64) (*category.Category, error)
	List(ctx context.Context, userID int64) ([]*category.Category, error)
	Forest(ctx context.Context, userID int64) (*category.Forest, error)
	Patch(ctx context.Context, id, userID int64, params category.PatchParams) (*category.Category, error)
	Delete(ctx context.Context, id, userID int64) error
	ResolveSubtree(ctx context.Context, userID int64, id *int64, dir category.Direction) ([]category.Node, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.get)
	r.Get("/tree", h.tree)
	r.Get("/{id}/path", h.path)
	r.Patch("/{id}", h.patch)
	r.Delete("/{id}", h.delete)
}

type createCategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		Name:     name,
		ParentID: req.ParentID,
		UserID:   p.UserID,
	})
	if err != nil {
		var dup *category.FullCopyError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusOK, toResponse(dup.Existing))
			return
		}

		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(c))
}

// get answers a lookup by name, or the full list without one.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	if !r.URL.Query().Has("name") {
		cats, err := h.svc.List(r.Context(), p.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toResponseList(cats))

		return
	}

	c, err := h.svc.Get(r.Context(), r.URL.Query().Get("name"), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	forest, err := h.svc.Forest(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTree(forest.Tree()))
}

func (h *Handler) path(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	nodes, err := h.svc.ResolveSubtree(r.Context(), p.UserID, &id, category.Up)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNodes(nodes))
}

type patchCategoryRequest struct {
	Name     *string `json:"name,omitempty"`
	ParentID *int64  `json:"parent_id,omitempty"`
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

	var req patchCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ParentID != nil && *req.ParentID == id {
		http.Error(w, errSelfParent.Error(), http.StatusConflict)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			http.Error(w, "name must not be empty", http.StatusBadRequest)
			return
		}

		req.Name = &name
	}

	c, err := h.svc.Patch(r.Context(), id, p.UserID, category.PatchParams{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
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

	if err := h.svc.Delete(r.Context(), id, p.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Deleted: id})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, category.ErrCategoryDoesNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, category.ErrCategoryAccessDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, category.ErrCreateConflict),
		errors.Is(err, category.ErrPatchConflict),
		errors.Is(err, category.ErrDeleteConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, category.ErrInvalidTraversal):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "category request failed", "error", err)
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
