// Package auth implements the role-based authorization policy.
// It is pure: no I/O, no logging, no state.
package auth

import (
	"fmt"

	"github.com/knowdistrict/knowdistrict/internal/models"
)

// Role is a validated authorization level. The zero value represents an
// unauthenticated caller and is denied every action.
type Role string

const (
	// RoleNone is the absent role of an unauthenticated caller.
	RoleNone Role = ""
	// RoleAdmin may perform every action, including user management.
	RoleAdmin Role = models.RoleAdmin
	// RoleEditor may read, write, manage categories, and use AI features.
	RoleEditor Role = models.RoleEditor
	// RoleReader may only view and search documents.
	RoleReader Role = models.RoleReader
)

// Action is a request a caller asks the guard to approve.
type Action int

const (
	// ViewDocuments covers reading documents and categories.
	ViewDocuments Action = iota
	// SearchDocuments covers full-text search.
	SearchDocuments
	// CreateDocument covers creating new documents.
	CreateDocument
	// EditDocument covers updating existing documents.
	EditDocument
	// DeleteDocument covers removing documents.
	DeleteDocument
	// ManageCategories covers category mutation.
	ManageCategories
	// ManageUsers covers listing users and assigning roles.
	ManageUsers
	// UseAIFeatures covers AI suggestions and chat.
	UseAIFeatures
)

// Can reports whether the role is permitted to perform the action.
// An unknown or absent role denies everything; Can never errors.
func (r Role) Can(a Action) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleEditor:
		return a != ManageUsers
	case RoleReader:
		return a == ViewDocuments || a == SearchDocuments
	default:
		return false
	}
}

// ParseRole translates a stored role string into a Role. Unknown values
// are rejected here, at the storage-to-domain boundary, never inside Can.
func ParseRole(s string) (Role, error) {
	switch s {
	case models.RoleAdmin:
		return RoleAdmin, nil
	case models.RoleEditor:
		return RoleEditor, nil
	case models.RoleReader:
		return RoleReader, nil
	default:
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
}
