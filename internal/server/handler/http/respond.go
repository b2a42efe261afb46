// Package http provides the HTTP handlers and routing for the
// KnowDistrict API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knowdistrict/knowdistrict/internal/repository"
	"github.com/knowdistrict/knowdistrict/internal/search"
	"github.com/knowdistrict/knowdistrict/internal/service"
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage writes a JSON {"message": ...} body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps service and repository errors onto response statuses.
// Denials and missing records keep their own statuses; anything
// unrecognized (including upstream provider failures) becomes an opaque
// 500 so provider-specific error shapes never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, search.ErrInvalidQuery):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrDuplicate):
		writeMessage(w, http.StatusConflict, "already exists")
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
