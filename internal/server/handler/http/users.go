package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/knowdistrict/knowdistrict/internal/middleware"
	"github.com/knowdistrict/knowdistrict/internal/models"
)

// UserAdminService defines the operations required by the user
// management handlers.
type UserAdminService interface {
	// List returns all users; requires ManageUsers.
	List(ctx context.Context, role auth.Role) ([]models.User, error)
	// SetRole assigns a new role; requires ManageUsers.
	SetRole(ctx context.Context, role auth.Role, id int64, newRole string) (*models.User, error)
}

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	Users UserAdminService
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	users, err := h.Users.List(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// SetRole handles PATCH /api/users/{id}/role with a JSON {"role": ...}
// body.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.Users.SetRole(r.Context(), role, id, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
