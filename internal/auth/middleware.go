package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/budgetree/internal/user"
)

// CookieName is the cookie carrying the session token for browser clients.
const CookieName = "session"

type UserGetter interface {
	Get(ctx context.Context, id int64) (*user.User, error)
}

// Middleware authenticates requests from a Bearer token or the session cookie and stores
// the Principal in the request context. A token for a user that no longer exists is forbidden.
func Middleware(issuer *Issuer, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := issuer.Parse(token)
			if err != nil {
				http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			u, err := users.Get(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, user.ErrUserDoesNotExist) {
					http.Error(w, "user does not exist", http.StatusForbidden)
					return
				}

				slog.ErrorContext(r.Context(), "loading principal", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)

				return
			}

			ctx := WithPrincipal(r.Context(), Principal{UserID: u.ID, Username: u.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}

	return ""
}
