package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/knowdistrict/knowdistrict/internal/models"
)

// AuthService defines the operations required by the registration and
// login handlers.
type AuthService interface {
	// Register creates a new user with a hashed credential.
	Register(ctx context.Context, username, password, role string) (*models.User, error)
	// Authenticate verifies a username/password pair.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	// Users performs the underlying account operations.
	Users AuthService
	// JWTSecret signs issued access tokens.
	JWTSecret string
	// TokenTTL is the access-token lifetime.
	TokenTTL time.Duration
}

// credentialsRequest represents the JSON payload for register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// authResponse carries the issued token and the user record.
type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// newAccessToken builds and signs an HS256 JWT carrying the user's ID
// and role.
func newAccessToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Register handles POST /api/register. It creates the account and
// returns a signed token so the client is logged in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.Users.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := newAccessToken(h.JWTSecret, user, h.TokenTTL)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := newAccessToken(h.JWTSecret, user, h.TokenTTL)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
