package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budgetree/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/http/category"
	"github.com/MrJamesThe3rd/budgetree/internal/http/export"
	"github.com/MrJamesThe3rd/budgetree/internal/http/importcsv"
	"github.com/MrJamesThe3rd/budgetree/internal/http/matching"
	"github.com/MrJamesThe3rd/budgetree/internal/http/transaction"
)

type Handlers struct {
	Auth         *auth.Handler
	Categories   *category.Handler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Export       *export.Handler
	Matching     *matching.Handler
}

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// Authenticate guards every route except registration and login.
	Authenticate func(http.Handler) http.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticate)

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Categories.Routes(r)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Route("/import", h.Import.Routes)
				r.Route("/export", h.Export.Routes)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					h.Transactions.Routes(r)
				})
			})

			r.Route("/matching", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Matching.Routes(r)
			})
		})
	})

	return router
}
