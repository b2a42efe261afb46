package service

import (
	"context"
	"testing"

	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/knowdistrict/knowdistrict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	cats    []models.Category
	cat     *models.Category
	err     error
	touched bool
	deleted int64
}

func (f *fakeCategoryRepo) GetCategories(ctx context.Context) ([]models.Category, error) {
	f.touched = true
	return f.cats, f.err
}

func (f *fakeCategoryRepo) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	f.touched = true
	return f.cat, f.err
}

func (f *fakeCategoryRepo) CreateCategory(ctx context.Context, cat models.InsertCategory) (*models.Category, error) {
	f.touched = true
	return f.cat, f.err
}

func (f *fakeCategoryRepo) UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	f.touched = true
	return f.cat, f.err
}

func (f *fakeCategoryRepo) DeleteCategory(ctx context.Context, id int64) error {
	f.touched = true
	f.deleted = id
	return f.err
}

func TestCategoryService_ReaderCanListButNotMutate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeCategoryRepo{cats: []models.Category{{ID: 1, Name: "HR"}}}
	svc := NewCategoryService(repo)

	cats, err := svc.List(ctx, auth.RoleReader)
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	repo.touched = false
	_, err = svc.Create(ctx, auth.RoleReader, models.InsertCategory{Name: "Finance"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, auth.RoleReader, 1, models.CategoryPatch{Name: strptr("People")})
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(ctx, auth.RoleReader, 1)
	require.ErrorIs(t, err, ErrForbidden)
	assert.False(t, repo.touched, "denied calls must not touch storage")
}

func TestCategoryService_EditorCanMutate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeCategoryRepo{cat: &models.Category{ID: 2, Name: "Finance"}}
	svc := NewCategoryService(repo)

	cat, err := svc.Create(ctx, auth.RoleEditor, models.InsertCategory{Name: "Finance"})
	require.NoError(t, err)
	assert.Equal(t, "Finance", cat.Name)

	require.NoError(t, svc.Delete(ctx, auth.RoleEditor, 2))
	assert.Equal(t, int64(2), repo.deleted)
}

func TestCategoryService_NameValidation(t *testing.T) {
	ctx := context.Background()
	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo)

	_, err := svc.Create(ctx, auth.RoleAdmin, models.InsertCategory{Name: " "})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, auth.RoleAdmin, 1, models.CategoryPatch{Name: strptr("")})
	require.ErrorIs(t, err, ErrValidation)
	assert.False(t, repo.touched)
}

func TestCategoryService_NoRole(t *testing.T) {
	svc := NewCategoryService(&fakeCategoryRepo{})

	_, err := svc.List(context.Background(), auth.RoleNone)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
