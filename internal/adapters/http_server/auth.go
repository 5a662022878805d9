package httpserver

import (
	"context"
	"net/http"
	"strings"

	"stayloft/internal/domain"
)

type ctxKey int

const principalKey ctxKey = iota

// Principal returns the verified token claims of the caller, if any.
func Principal(ctx context.Context) (domain.TokenClaims, bool) {
	p, ok := ctx.Value(principalKey).(domain.TokenClaims)
	return p, ok
}

// Authenticate verifies the Bearer token and injects the principal into
// the request context. Downstream handlers trust the embedded subject
// id and role; no token logic lives past this point.
func Authenticate(codec domain.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authorization header missing")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || scheme != "Bearer" || token == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid authorization header format")
				return
			}
			claims, err := codec.Verify(token)
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, claims)))
		})
	}
}

// RequireRole gates a route to the given roles. Must sit behind
// Authenticate.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := Principal(r.Context())
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeProblem(w, http.StatusForbidden, "Forbidden", "insufficient privileges")
		})
	}
}
