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

// DocumentService defines the operations required by the document
// handlers.
type DocumentService interface {
	List(ctx context.Context, role auth.Role, categoryID *int64) ([]models.Document, error)
	Get(ctx context.Context, role auth.Role, id int64) (*models.Document, error)
	Create(ctx context.Context, role auth.Role, doc models.InsertDocument) (*models.Document, error)
	Update(ctx context.Context, role auth.Role, id int64, patch models.DocumentPatch) (*models.Document, error)
	Delete(ctx context.Context, role auth.Role, id int64) error
	Search(ctx context.Context, role auth.Role, query string) ([]models.Document, error)
}

// DocumentHandler handles HTTP requests for documents.
type DocumentHandler struct {
	Documents DocumentService
}

// List handles GET /api/documents with an optional categoryId filter.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	var categoryID *int64
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		categoryID = &id
	}

	docs, err := h.Documents.List(r.Context(), role, categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Get handles GET /api/documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.Documents.Get(r.Context(), role, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Create handles POST /api/documents. The author is taken from the
// authenticated caller.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	var req models.InsertDocument
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid document data")
		return
	}
	if userID := middleware.GetUserIDFromContext(r.Context()); userID != 0 {
		req.AuthorID = &userID
	}

	doc, err := h.Documents.Create(r.Context(), role, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// documentPatchRequest distinguishes an absent categoryId from an
// explicit null, which clears the reference.
type documentPatchRequest struct {
	Title      *string         `json:"title"`
	Content    *string         `json:"content"`
	CategoryID json.RawMessage `json:"categoryId"`
}

func (req *documentPatchRequest) toPatch() (models.DocumentPatch, error) {
	patch := models.DocumentPatch{Title: req.Title, Content: req.Content}
	if len(req.CategoryID) == 0 {
		return patch, nil
	}
	if bytes.Equal(req.CategoryID, []byte("null")) {
		patch.ClearCategory = true
		return patch, nil
	}
	var id int64
	if err := json.Unmarshal(req.CategoryID, &id); err != nil {
		return patch, err
	}
	patch.CategoryID = &id
	return patch, nil
}

// Update handles PATCH /api/documents/{id}. Only supplied fields change.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid document id")
		return
	}

	var req documentPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid document data")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid document data")
		return
	}

	doc, err := h.Documents.Update(r.Context(), role, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.Documents.Delete(r.Context(), role, id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "deleted")
}

// Search handles POST /api/documents/search. An empty result set is a
// 200 with an empty array; only an empty query is a 400.
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid search query")
		return
	}

	docs, err := h.Documents.Search(r.Context(), role, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}
