package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetree/internal/auth"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	apphttp "github.com/MrJamesThe3rd/budgetree/internal/http"
	authhttp "github.com/MrJamesThe3rd/budgetree/internal/http/auth"
	categoryhttp "github.com/MrJamesThe3rd/budgetree/internal/http/category"
	"github.com/MrJamesThe3rd/budgetree/internal/http/export"
	"github.com/MrJamesThe3rd/budgetree/internal/http/importcsv"
	"github.com/MrJamesThe3rd/budgetree/internal/http/matching"
	"github.com/MrJamesThe3rd/budgetree/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetree/internal/user"
)

type usersByID map[int64]*user.User

func (u usersByID) Get(_ context.Context, id int64) (*user.User, error) {
	if found, ok := u[id]; ok {
		return found, nil
	}

	return nil, user.ErrUserDoesNotExist
}

func setup(t *testing.T) (http.Handler, *categoryhttp.MockService, *auth.Issuer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	categories := categoryhttp.NewMockService(ctrl)
	issuer := auth.NewIssuer("secret", 0)
	users := usersByID{1: {ID: 1, Username: "ana"}}

	router := apphttp.New(apphttp.Options{
		AllowedOrigins: []string{"https://app.example"},
		Authenticate:   auth.Middleware(issuer, users),
	}, apphttp.Handlers{
		Auth:         authhttp.NewHandler(authhttp.NewMockUsers(ctrl), authhttp.NewMockTokens(ctrl), false),
		Categories:   categoryhttp.NewHandler(categories),
		Transactions: transaction.NewHandler(transaction.NewMockLedger(ctrl), transaction.NewMockReports(ctrl), 20, 100),
		Import:       importcsv.NewHandler(importcsv.NewMockImporter(ctrl)),
		Export:       export.NewHandler(export.NewMockCollector(ctrl), 100),
		Matching:     matching.NewHandler(matching.NewMockService(ctrl)),
	})

	return router, categories, issuer
}

func TestRouter_RequiresToken(t *testing.T) {
	router, _, _ := setup(t)

	for _, path := range []string{"/api/v1/categories", "/api/v1/transactions", "/api/v1/transactions/export", "/api/v1/matching/rules"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	router, categories, issuer := setup(t)

	token, _, err := issuer.Issue(1, "ana")
	assert.NoError(t, err)

	categories.EXPECT().List(gomock.Any(), int64(1)).Return([]*category.Category{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	router, _, _ := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader("name=ana"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _, _ := setup(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/categories", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
