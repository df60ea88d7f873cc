// Package apperr defines the error kinds shared by the Dukaan core.
//
// The split matters for the HTTP layer: controllers map each kind to a
// status code, while repositories and services stay transport-free.
//
//   - ValidationError  → 422 (bad input shape or range, field-level messages)
//   - ErrNotFound      → 404
//   - ConflictError    → 409 (concurrent stock update lost the race)
//   - PermissionError  → 403 (a policy deny stopped the request)
//   - AuthzError       → 400 (malformed authorization request, e.g. unknown action)
//
// A policy "deny" is NOT an error. See app/policies.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a resource id has no matching record.
var ErrNotFound = errors.New("resource not found")

// ValidationError carries field-level messages for bad input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FieldsOf extracts the field map from a ValidationError, or nil.
func FieldsOf(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// ConflictError is returned when a concurrent update could not be
// resolved after bounded retry.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict updating %s %s: concurrent modification", e.Resource, e.ID)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// PermissionError is raised by services when a policy deny must stop a
// request. It names what was denied, never internal state.
type PermissionError struct {
	Action   string
	Resource string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s: %s", e.Action, e.Resource, e.Reason)
}

// IsPermission reports whether err is (or wraps) a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// AuthzError signals a malformed authorization request (unknown action,
// unknown resource type). It is never used for an ordinary deny.
type AuthzError struct {
	Detail string
}

func (e *AuthzError) Error() string {
	return "authorization request invalid: " + e.Detail
}
