package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/knowdistrict/knowdistrict/internal/middleware"
	"github.com/knowdistrict/knowdistrict/internal/models"
)

// CategoryService defines the operations required by the category
// handlers.
type CategoryService interface {
	List(ctx context.Context, role auth.Role) ([]models.Category, error)
	Get(ctx context.Context, role auth.Role, id int64) (*models.Category, error)
	Create(ctx context.Context, role auth.Role, cat models.InsertCategory) (*models.Category, error)
	Update(ctx context.Context, role auth.Role, id int64, patch models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, role auth.Role, id int64) error
}

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	Categories CategoryService
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	cats, err := h.Categories.List(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// Get handles GET /api/categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}

	cat, err := h.Categories.Get(r.Context(), role, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	var req models.InsertCategory
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid category data")
		return
	}

	cat, err := h.Categories.Create(r.Context(), role, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// categoryPatchRequest distinguishes an absent description from an
// explicit null, which clears it.
type categoryPatchRequest struct {
	Name        *string         `json:"name"`
	Description json.RawMessage `json:"description"`
}

func (req *categoryPatchRequest) toPatch() (models.CategoryPatch, error) {
	patch := models.CategoryPatch{Name: req.Name}
	if len(req.Description) == 0 {
		return patch, nil
	}
	if bytes.Equal(req.Description, []byte("null")) {
		patch.ClearDescription = true
		return patch, nil
	}
	var description string
	if err := json.Unmarshal(req.Description, &description); err != nil {
		return patch, err
	}
	patch.Description = &description
	return patch, nil
}

// Update handles PATCH /api/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var body categoryPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid category data")
		return
	}
	patch, err := body.toPatch()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid category data")
		return
	}

	cat, err := h.Categories.Update(r.Context(), role, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Delete handles DELETE /api/categories/{id}. Documents referencing the
// category have the reference cleared atomically.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.Categories.Delete(r.Context(), role, id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "deleted")
}
