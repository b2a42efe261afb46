package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func identityProbe(role *auth.Role, userID *int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*role = GetRoleFromContext(r.Context())
		*userID = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_NoHeaderPassesThroughAnonymously(t *testing.T) {
	var role auth.Role
	var userID int64
	handler := BearerAuth(testSecret)(identityProbe(&role, &userID))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auth.RoleNone, role)
	assert.Equal(t, int64(0), userID)
}

func TestBearerAuth_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(42),
		"role": "editor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	var role auth.Role
	var userID int64
	handler := BearerAuth(testSecret)(identityProbe(&role, &userID))

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auth.RoleEditor, role)
	assert.Equal(t, int64(42), userID)
}

func TestBearerAuth_RejectsBadTokens(t *testing.T) {
	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(1),
		"role": "reader",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{
		"sub":  float64(1),
		"role": "reader",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	unknownRole := signToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(1),
		"role": "superuser",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
	}{
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"expired", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
		{"unknown role claim", "Bearer " + unknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := BearerAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called, "rejected requests must not reach the handler")
		})
	}
}
