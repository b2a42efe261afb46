package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/knowdistrict/knowdistrict/internal/models"
)

// docCols is the column list shared by every document query.
const docCols = `id, title, content, category_id, author_id, last_updated`

// PostgresDocumentRepository implements document persistence and the two
// search predicates against a PostgreSQL database.
type PostgresDocumentRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresDocumentRepository creates a new PostgresDocumentRepository
// with the given database connection.
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var doc models.Document
	var categoryID, authorID sql.NullInt64
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &categoryID, &authorID, &doc.LastUpdated); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		doc.CategoryID = &categoryID.Int64
	}
	if authorID.Valid {
		doc.AuthorID = &authorID.Int64
	}
	return &doc, nil
}

func scanDocuments(rows *sql.Rows) ([]models.Document, error) {
	docs := make([]models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return docs, nil
}

// GetDocuments fetches all documents, newest first. When categoryID is
// non-nil, only documents in that category are returned.
func (r *PostgresDocumentRepository) GetDocuments(ctx context.Context, categoryID *int64) ([]models.Document, error) {
	query := `SELECT ` + docCols + ` FROM documents ORDER BY last_updated DESC, id DESC`
	args := []any{}
	if categoryID != nil {
		query = `SELECT ` + docCols + ` FROM documents WHERE category_id = $1 ORDER BY last_updated DESC, id DESC`
		args = append(args, *categoryID)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetDocuments: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// GetDocument fetches a single document by ID.
// Returns ErrNotFound when no such document exists.
func (r *PostgresDocumentRepository) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+docCols+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetDocument: %w", err)
	}
	return doc, nil
}

// CreateDocument inserts a new document. The ID and LastUpdated stamp are
// assigned by the database.
func (r *PostgresDocumentRepository) CreateDocument(ctx context.Context, doc models.InsertDocument) (*models.Document, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO documents (title, content, category_id, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+docCols,
		doc.Title, doc.Content, nullableID(doc.CategoryID), nullableID(doc.AuthorID))
	created, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("CreateDocument: %w", err)
	}
	return created, nil
}

// UpdateDocument applies a partial update and re-stamps last_updated.
// Fields absent from the patch are left unchanged. The single UPDATE is
// the unit of consistency: concurrent writers are last-writer-wins.
// Returns ErrNotFound when no such document exists.
func (r *PostgresDocumentRepository) UpdateDocument(ctx context.Context, id int64, patch models.DocumentPatch) (*models.Document, error) {
	set := []string{"last_updated = now()"}
	args := []any{}
	n := 1

	if patch.Title != nil {
		set = append(set, fmt.Sprintf("title = $%d", n))
		args = append(args, *patch.Title)
		n++
	}
	if patch.Content != nil {
		set = append(set, fmt.Sprintf("content = $%d", n))
		args = append(args, *patch.Content)
		n++
	}
	if patch.CategoryID != nil {
		set = append(set, fmt.Sprintf("category_id = $%d", n))
		args = append(args, *patch.CategoryID)
		n++
	} else if patch.ClearCategory {
		set = append(set, "category_id = NULL")
	}

	query := fmt.Sprintf(
		`UPDATE documents SET %s WHERE id = $%d RETURNING `+docCols,
		strings.Join(set, ", "), n)
	args = append(args, id)

	row := r.DB.QueryRowContext(ctx, query, args...)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateDocument: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes a document permanently. There are no tombstones:
// a deleted document never reappears in listings or search results.
// Returns ErrNotFound when no such document exists.
func (r *PostgresDocumentRepository) DeleteDocument(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteDocument: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteDocument: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ExactPhrase matches documents whose title-plus-content contains the
// query terms adjacent, via a native phrase query. Ordered newest first.
func (r *PostgresDocumentRepository) ExactPhrase(ctx context.Context, phrase string) ([]models.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+docCols+` FROM documents
		WHERE search_text @@ phraseto_tsquery('english', $1)
		ORDER BY last_updated DESC, id DESC`, phrase)
	if err != nil {
		return nil, fmt.Errorf("ExactPhrase: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// likeEscaper neutralizes LIKE metacharacters so the query only ever
// matches literally. "100%" must not match every document mentioning 100.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Flexible matches documents where the raw query appears as a
// case-insensitive substring of title or content, or where every term
// matches as a prefix. Ordered newest first.
func (r *PostgresDocumentRepository) Flexible(ctx context.Context, raw string, terms []string) ([]models.Document, error) {
	prefixed := make([]string, 0, len(terms))
	for _, term := range terms {
		prefixed = append(prefixed, term+":*")
	}
	escaped := likeEscaper.Replace(raw)

	if len(prefixed) == 0 {
		rows, err := r.DB.QueryContext(ctx, `
			SELECT `+docCols+` FROM documents
			WHERE title ILIKE '%' || $1 || '%' ESCAPE '\' OR content ILIKE '%' || $1 || '%' ESCAPE '\'
			ORDER BY last_updated DESC, id DESC`, escaped)
		if err != nil {
			return nil, fmt.Errorf("Flexible: %w", err)
		}
		defer rows.Close()
		return scanDocuments(rows)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+docCols+` FROM documents
		WHERE title ILIKE '%' || $1 || '%' ESCAPE '\' OR content ILIKE '%' || $1 || '%' ESCAPE '\'
		   OR search_text @@ to_tsquery('english', $2)
		ORDER BY last_updated DESC, id DESC`,
		escaped, strings.Join(prefixed, " & "))
	if err != nil {
		return nil, fmt.Errorf("Flexible: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// nullableID converts an optional ID into a driver-friendly value.
func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
