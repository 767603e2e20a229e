package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const identityKey contextKey = "userorg_identity"

// Identity is the authenticated caller, as carried by the request context.
type Identity struct {
	UserID string
	Email  string
}

// Middleware authenticates requests via the Authorization: Bearer header
// and places the verified identity on the request context.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeUnauthorized(w)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token == "" {
				writeUnauthorized(w)
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ident := Identity{UserID: claims.Subject, Email: claims.Email}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok
}
