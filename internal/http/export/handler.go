package export

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetree/internal/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/export"
	"github.com/MrJamesThe3rd/budgetree/internal/period"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=export
type Collector interface {
	Collect(ctx context.Context, userID int64, f report.Filters) (*export.Export, error)
}

type Handler struct {
	svc         Collector
	maxPageSize int
	now         func() time.Time
}

func NewHandler(svc Collector, maxPageSize int) *Handler {
	return &Handler{
		svc:         svc,
		maxPageSize: maxPageSize,
		now:         time.Now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download answers the filtered transactions as CSV, or with format=zip as an archive
// holding the CSV and a plain-text summary.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}

	f, err := report.ParseFilters(r.URL.Query(), report.DefaultPageSize, h.maxPageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "zip" {
		http.Error(w, "format must be csv or zip", http.StatusBadRequest)
		return
	}

	exp, err := h.svc.Collect(r.Context(), p.UserID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stamp := h.now().UTC().Format("20060102")

	if format != "zip" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"", stamp))

		if err := export.WriteCSV(w, exp.Lines); err != nil {
			slog.ErrorContext(r.Context(), "failed to write csv", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"export_%s.zip\"", stamp))

	if err := writeZip(w, exp); err != nil {
		slog.ErrorContext(r.Context(), "failed to create zip", "error", err)
	}
}

func writeZip(w http.ResponseWriter, exp *export.Export) error {
	zw := zip.NewWriter(w)

	csvFile, err := zw.Create("transactions.csv")
	if err != nil {
		return err
	}

	if err := export.WriteCSV(csvFile, exp.Lines); err != nil {
		return err
	}

	summary, err := zw.Create("summary.txt")
	if err != nil {
		return err
	}

	if _, err := summary.Write([]byte(export.Summary(exp))); err != nil {
		return err
	}

	return zw.Close()
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, period.ErrInvalidPeriod), errors.Is(err, report.ErrInvalidFilter):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, category.ErrCategoryDoesNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, category.ErrCategoryAccessDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		slog.ErrorContext(r.Context(), "export failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
