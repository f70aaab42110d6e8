package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetree/internal/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budgetree/internal/category/store"
	"github.com/MrJamesThe3rd/budgetree/internal/config"
	"github.com/MrJamesThe3rd/budgetree/internal/database"
	"github.com/MrJamesThe3rd/budgetree/internal/export"
	budgetreeHttp "github.com/MrJamesThe3rd/budgetree/internal/http"
	authHandler "github.com/MrJamesThe3rd/budgetree/internal/http/auth"
	categoryHandler "github.com/MrJamesThe3rd/budgetree/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/budgetree/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/budgetree/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/budgetree/internal/http/matching"
	txHandler "github.com/MrJamesThe3rd/budgetree/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetree/internal/importer"
	"github.com/MrJamesThe3rd/budgetree/internal/logging"
	"github.com/MrJamesThe3rd/budgetree/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/budgetree/internal/matching/store"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budgetree/internal/transaction/store"
	"github.com/MrJamesThe3rd/budgetree/internal/user"
	userStore "github.com/MrJamesThe3rd/budgetree/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(cfg.ConnectionString(), database.PoolConfig{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		userService        = user.NewService(userStore.New(db), cfg.Auth.BcryptCost)
		categoryService    = category.NewService(categoryStore.New(db))
		transactionService = transaction.NewService(txStore.New(db), categoryService)
		reportService      = report.NewService(categoryService, transactionService)
		matchingService    = matching.NewService(matchingStore.New(db), categoryService)
		importService      = importer.NewService(matchingService, transactionService)
		exportService      = export.NewService(reportService, cfg.Report.MaxPageSize)
		issuer             = auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	)

	router := budgetreeHttp.New(budgetreeHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Authenticate:   auth.Middleware(issuer, userService),
	}, budgetreeHttp.Handlers{
		Auth:         authHandler.NewHandler(userService, issuer, cfg.Auth.SecureCookie),
		Categories:   categoryHandler.NewHandler(categoryService),
		Transactions: txHandler.NewHandler(transactionService, reportService, cfg.Report.DefaultPageSize, cfg.Report.MaxPageSize),
		Import:       importHandler.NewHandler(importService),
		Export:       exportHandler.NewHandler(exportService, cfg.Report.MaxPageSize),
		Matching:     matchingHandler.NewHandler(matchingService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		logger.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}

	logger.Info("server stopped")
}
