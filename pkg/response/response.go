// Package response writes the JSON envelope used by every Dukaan endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/dukaan/pkg/apperr"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// Listed sends a 200 response with data plus an item count, matching the
// directory listing endpoints.
func Listed(w http.ResponseWriter, count int, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Count: &count, Data: data})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403 with a reason.
func Forbidden(w http.ResponseWriter, reason string) {
	if reason == "" {
		reason = "Forbidden"
	}
	Error(w, http.StatusForbidden, reason)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

// FromError maps a core error kind onto the matching HTTP status.
// This is the only place that knows the taxonomy-to-status mapping;
// the core packages themselves stay transport-agnostic.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(w)
	case apperr.IsValidation(err):
		ValidationError(w, apperr.FieldsOf(err))
	case apperr.IsConflict(err):
		Error(w, http.StatusConflict, err.Error())
	case apperr.IsPermission(err):
		var pe *apperr.PermissionError
		errors.As(err, &pe)
		Forbidden(w, pe.Reason)
	default:
		var ae *apperr.AuthzError
		if errors.As(err, &ae) {
			Error(w, http.StatusBadRequest, ae.Error())
			return
		}
		Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
