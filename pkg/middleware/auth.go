package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/dukaan/pkg/auth"
	"github.com/shashiranjanraj/dukaan/pkg/response"
)

// claimsKey is the unexported context key holding the verified JWT claims.
type claimsKey struct{}

// Auth verifies the Bearer token and stores the claims in the request
// context. Requests without a valid token are rejected with 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(w)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromCtx returns the verified claims stored by Auth.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// RoleFromCtx returns the authenticated role, if any.
func RoleFromCtx(ctx context.Context) (string, bool) {
	if c, ok := ClaimsFromCtx(ctx); ok {
		return c.Role, true
	}
	return "", false
}

// UserIDFromCtx returns the authenticated user id, if any.
func UserIDFromCtx(ctx context.Context) (uint, bool) {
	if c, ok := ClaimsFromCtx(ctx); ok {
		return c.UserID, true
	}
	return 0, false
}
