package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/knowdistrict/knowdistrict/internal/models"
)

// PostgresCategoryRepository implements category persistence against a
// PostgreSQL database.
type PostgresCategoryRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresCategoryRepository creates a new PostgresCategoryRepository
// using the provided *sql.DB.
func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{DB: db}
}

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var cat models.Category
	var description sql.NullString
	if err := row.Scan(&cat.ID, &cat.Name, &description); err != nil {
		return nil, err
	}
	if description.Valid {
		cat.Description = &description.String
	}
	return &cat, nil
}

// GetCategories fetches all categories ordered by name.
func (r *PostgresCategoryRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, description FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("GetCategories: %w", err)
	}
	defer rows.Close()

	cats := make([]models.Category, 0)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		cats = append(cats, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return cats, nil
}

// GetCategory fetches a single category by ID.
// Returns ErrNotFound when no such category exists.
func (r *PostgresCategoryRepository) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id = $1`, id)
	cat, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetCategory: %w", err)
	}
	return cat, nil
}

// CreateCategory inserts a new category and returns it with its assigned ID.
func (r *PostgresCategoryRepository) CreateCategory(ctx context.Context, cat models.InsertCategory) (*models.Category, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description`,
		cat.Name, nullableString(cat.Description))
	created, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("CreateCategory: %w", err)
	}
	return created, nil
}

// UpdateCategory applies a partial update. Fields absent from the patch
// are left unchanged; ClearDescription sets the description to NULL.
// Returns ErrNotFound when no such category exists.
func (r *PostgresCategoryRepository) UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	set := []string{}
	args := []any{}
	n := 1

	if patch.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", n))
		args = append(args, *patch.Name)
		n++
	}
	if patch.Description != nil {
		set = append(set, fmt.Sprintf("description = $%d", n))
		args = append(args, *patch.Description)
		n++
	} else if patch.ClearDescription {
		set = append(set, "description = NULL")
	}
	if len(set) == 0 {
		return r.GetCategory(ctx, id)
	}

	query := fmt.Sprintf(
		`UPDATE categories SET %s WHERE id = $%d RETURNING id, name, description`,
		strings.Join(set, ", "), n)
	args = append(args, id)

	row := r.DB.QueryRowContext(ctx, query, args...)
	cat, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateCategory: %w", err)
	}
	return cat, nil
}

// DeleteCategory removes a category and clears the reference on every
// document that pointed at it, in one transaction. Documents are never
// left with a dangling category ID.
// Returns ErrNotFound when no such category exists.
func (r *PostgresCategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET category_id = NULL WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("clear references: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// nullableString converts an optional string into a driver-friendly value.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
