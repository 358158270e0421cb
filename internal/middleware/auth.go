package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TokenValidator checks the bearer token against both its signature and the
// persisted token store, so revoked tokens are rejected here.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

type contextKey string

const (
	accountNumberKey contextKey = "account_number"
	bearerTokenKey   contextKey = "bearer_token"
)

func AccountNumberFromContext(ctx context.Context) (string, bool) {
	accountNumber, ok := ctx.Value(accountNumberKey).(string)
	return accountNumber, ok
}

func BearerTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey).(string)
	return token, ok
}

func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			accountNumber, err := tokens.Validate(r.Context(), parts[1])
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), accountNumberKey, accountNumber)
			ctx = context.WithValue(ctx, bearerTokenKey, parts[1])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
