// Package models defines the core data structures for users, categories,
// and documents.
package models

import "time"

// Role values stored on a user record. The authoritative permission
// checks live in the auth package; persistence keeps the plain string.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleReader = "reader"
)

// User represents an application user with credentials and a role.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// PasswordHash is the bcrypt hash of the user's password.
	// It is never serialized in API responses.
	PasswordHash string `json:"-"`
	// Role is one of "admin", "editor", or "reader".
	Role string `json:"role"`
	// CreatedAt is the server-assigned creation timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// Category groups documents under a name.
type Category struct {
	// ID is the unique identifier for the category.
	ID int64 `json:"id"`
	// Name is the display name; must be non-empty.
	Name string `json:"name"`
	// Description is optional free text.
	Description *string `json:"description"`
}

// Document is a stored knowledge-base article. Content is opaque text:
// it may be HTML or a serialized rich-content tree, the server never
// interprets it beyond search matching.
type Document struct {
	// ID is the unique identifier for the document.
	ID int64 `json:"id"`
	// Title is the document title; must be non-empty.
	Title string `json:"title"`
	// Content is the document body.
	Content string `json:"content"`
	// CategoryID references a category, or nil when uncategorized.
	CategoryID *int64 `json:"categoryId"`
	// AuthorID references the creating user, or nil when unknown.
	AuthorID *int64 `json:"authorId"`
	// LastUpdated is server-assigned and re-stamped on every update.
	LastUpdated time.Time `json:"lastUpdated"`
}

// InsertCategory carries the writable category fields.
type InsertCategory struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// InsertDocument carries the writable document fields.
type InsertDocument struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID *int64 `json:"categoryId"`
	AuthorID   *int64 `json:"authorId"`
}

// DocumentPatch carries a partial document update. Nil fields are left
// unchanged; ClearCategory removes the category reference.
type DocumentPatch struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	CategoryID    *int64  `json:"categoryId"`
	ClearCategory bool    `json:"-"`
}

// CategoryPatch carries a partial category update. Nil fields are left
// unchanged; ClearDescription removes the description.
type CategoryPatch struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	ClearDescription bool    `json:"-"`
}
