// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/knowdistrict/knowdistrict/internal/auth"
)

type ctxKey string

const (
	roleKey ctxKey = "role"
	userKey ctxKey = "user"
)

// BearerAuth returns a middleware that validates an HS256 bearer token
// and stores the caller's role and user ID in the request context.
//
// A request without an Authorization header passes through with no
// identity: handlers then answer 401 via the service layer, which keeps
// "not authenticated" distinct from "forbidden". A present but invalid
// token is rejected here with 401.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid claims", http.StatusUnauthorized)
				return
			}
			roleClaim, _ := claims["role"].(string)
			role, err := auth.ParseRole(roleClaim)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), roleKey, role)
			if sub, ok := claims["sub"].(float64); ok {
				ctx = context.WithValue(ctx, userKey, int64(sub))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRoleFromContext extracts the caller's role from the request context.
// Returns auth.RoleNone when no identity is present.
func GetRoleFromContext(ctx context.Context) auth.Role {
	if role, ok := ctx.Value(roleKey).(auth.Role); ok {
		return role
	}
	return auth.RoleNone
}

// GetUserIDFromContext extracts the caller's user ID from the request
// context. Returns 0 when no identity is present.
func GetUserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userKey).(int64); ok {
		return id
	}
	return 0
}

// WithIdentity returns a context carrying the given role and user ID.
// Handler tests use it in place of BearerAuth.
func WithIdentity(ctx context.Context, role auth.Role, userID int64) context.Context {
	ctx = context.WithValue(ctx, roleKey, role)
	return context.WithValue(ctx, userKey, userID)
}
