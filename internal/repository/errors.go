// Package repository provides persistence implementations backed by
// PostgreSQL, plus an in-memory variant used for tests and DSN-less runs.
package repository

import "errors"

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint is violated,
// e.g. registering an already-taken username.
var ErrDuplicate = errors.New("already exists")
