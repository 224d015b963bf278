// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for the catalog.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One constructor per failure kind raised by the reference engine
    (missing data, conflicting associations, invalid combinations, empty collections,
    not found, constraint violations).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound               = "NOT_FOUND"
	CodeValidation             = "VALIDATION_ERROR"
	CodeMissingRequiredData    = "MISSING_REQUIRED_DATA"
	CodeConflictingAssociation = "CONFLICTING_ASSOCIATION"
	CodeInvalidCombination     = "INVALID_COMBINATION"
	CodeEmptyCollection        = "EMPTY_REQUIRED_COLLECTION"
	CodeConstraintViolation    = "CONSTRAINT_VIOLATION"
	CodeRateLimited            = "RATE_LIMITED"
	CodeInternal               = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the catalog API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICTING_ASSOCIATION").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Series 4") // Returns "Series 4 not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// MissingRequiredData creates a 400 [AppError] for an absent sub-type payload or
// a required sub-field (e.g. "Missing new series name").
func MissingRequiredData(msg string) *AppError {
	return &AppError{
		Code:       CodeMissingRequiredData,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ConflictingAssociation creates a 409 [AppError] for two references to the same
// conceptual entity that disagree. The message names the mismatch.
func ConflictingAssociation(msg string) *AppError {
	return &AppError{
		Code:       CodeConflictingAssociation,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidCombination creates a 400 [AppError] for a combination of fields that is
// disallowed regardless of the stored data.
func InvalidCombination(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidCombination,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// EmptyCollection creates a 400 [AppError] for a collection that must not be empty.
func EmptyCollection(msg string) *AppError {
	return &AppError{
		Code:       CodeEmptyCollection,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ConstraintViolation creates a 409 [AppError] for a uniqueness violation raised
// by the store. The original driver error is kept as the cause.
func ConstraintViolation(msg string, cause error) *AppError {
	return &AppError{
		Code:       CodeConstraintViolation,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
		Cause:      cause,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
