package service

import (
	"context"
	"strings"

	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/knowdistrict/knowdistrict/internal/models"
)

// DocumentRepository defines the persistence operations needed by the
// DocumentService.
type DocumentRepository interface {
	// GetDocuments fetches all documents newest first, optionally
	// filtered to one category.
	GetDocuments(ctx context.Context, categoryID *int64) ([]models.Document, error)
	// GetDocument fetches one document, or repository.ErrNotFound.
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	// CreateDocument inserts a document, assigning ID and timestamp.
	CreateDocument(ctx context.Context, doc models.InsertDocument) (*models.Document, error)
	// UpdateDocument applies a partial update and re-stamps the timestamp.
	UpdateDocument(ctx context.Context, id int64, patch models.DocumentPatch) (*models.Document, error)
	// DeleteDocument removes a document permanently.
	DeleteDocument(ctx context.Context, id int64) error
}

// Searcher runs a tiered search over the document corpus.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Document, error)
}

// DocumentService implements document operations gated by the
// authorization guard.
type DocumentService struct {
	repo     DocumentRepository
	searcher Searcher
}

// NewDocumentService constructs a DocumentService with the provided
// repository and searcher.
func NewDocumentService(repo DocumentRepository, searcher Searcher) *DocumentService {
	return &DocumentService{repo: repo, searcher: searcher}
}

// List returns all documents visible to the role, newest first,
// optionally filtered to one category.
func (s *DocumentService) List(ctx context.Context, role auth.Role, categoryID *int64) ([]models.Document, error) {
	if err := authorize(role, auth.ViewDocuments); err != nil {
		return nil, err
	}
	return s.repo.GetDocuments(ctx, categoryID)
}

// Get returns one document by ID.
func (s *DocumentService) Get(ctx context.Context, role auth.Role, id int64) (*models.Document, error) {
	if err := authorize(role, auth.ViewDocuments); err != nil {
		return nil, err
	}
	return s.repo.GetDocument(ctx, id)
}

// Create stores a new document. The title must be non-empty.
func (s *DocumentService) Create(ctx context.Context, role auth.Role, doc models.InsertDocument) (*models.Document, error) {
	if err := authorize(role, auth.CreateDocument); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Title) == "" {
		return nil, validationError("title must not be empty")
	}
	return s.repo.CreateDocument(ctx, doc)
}

// Update applies a partial update. Only supplied fields change; the
// timestamp is re-stamped by the store.
func (s *DocumentService) Update(ctx context.Context, role auth.Role, id int64, patch models.DocumentPatch) (*models.Document, error) {
	if err := authorize(role, auth.EditDocument); err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, validationError("title must not be empty")
	}
	return s.repo.UpdateDocument(ctx, id, patch)
}

// Delete removes a document permanently.
func (s *DocumentService) Delete(ctx context.Context, role auth.Role, id int64) error {
	if err := authorize(role, auth.DeleteDocument); err != nil {
		return err
	}
	return s.repo.DeleteDocument(ctx, id)
}

// Search delegates to the search engine. An empty or whitespace-only
// query yields search.ErrInvalidQuery; an empty result set is a valid
// success.
func (s *DocumentService) Search(ctx context.Context, role auth.Role, query string) ([]models.Document, error) {
	if err := authorize(role, auth.SearchDocuments); err != nil {
		return nil, err
	}
	return s.searcher.Search(ctx, query)
}
