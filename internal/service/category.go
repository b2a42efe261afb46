package service

import (
	"context"
	"strings"

	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/knowdistrict/knowdistrict/internal/models"
)

// CategoryRepository defines the persistence operations needed by the
// CategoryService.
type CategoryRepository interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, cat models.InsertCategory) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error)
	// DeleteCategory removes a category and atomically clears the
	// reference on documents that pointed at it.
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryService implements category operations. Reads require
// ViewDocuments; mutations require ManageCategories.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService constructs a CategoryService with the provided
// repository.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context, role auth.Role) ([]models.Category, error) {
	if err := authorize(role, auth.ViewDocuments); err != nil {
		return nil, err
	}
	return s.repo.GetCategories(ctx)
}

// Get returns one category by ID.
func (s *CategoryService) Get(ctx context.Context, role auth.Role, id int64) (*models.Category, error) {
	if err := authorize(role, auth.ViewDocuments); err != nil {
		return nil, err
	}
	return s.repo.GetCategory(ctx, id)
}

// Create stores a new category. The name must be non-empty.
func (s *CategoryService) Create(ctx context.Context, role auth.Role, cat models.InsertCategory) (*models.Category, error) {
	if err := authorize(role, auth.ManageCategories); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cat.Name) == "" {
		return nil, validationError("name must not be empty")
	}
	return s.repo.CreateCategory(ctx, cat)
}

// Update applies a partial update.
func (s *CategoryService) Update(ctx context.Context, role auth.Role, id int64, patch models.CategoryPatch) (*models.Category, error) {
	if err := authorize(role, auth.ManageCategories); err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, validationError("name must not be empty")
	}
	return s.repo.UpdateCategory(ctx, id, patch)
}

// Delete removes a category. Documents referencing it have the reference
// cleared in the same transaction; they are never left dangling.
func (s *CategoryService) Delete(ctx context.Context, role auth.Role, id int64) error {
	if err := authorize(role, auth.ManageCategories); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}
