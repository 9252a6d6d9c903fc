// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error type every Shopdesk service returns across a layer boundary.

An [AppError] pairs a machine-readable code with the HTTP status it renders
as. The catalog API writes it with [respond.Error]; the admin server's catalog
client decodes it back with [FromResponse], so a 404 from the catalog is
still a 404 NOT_FOUND when the admin SPA sees it.

Codes:

  - 4xx: NOT_FOUND, UNAUTHORIZED, FORBIDDEN, CONFLICT, VALIDATION_ERROR, UNPROCESSABLE
  - 5xx: INTERNAL_ERROR, UPSTREAM_UNAVAILABLE

Domain packages may add their own codes through [New].
*/
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Machine-readable codes shared by both APIs.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnprocessable       = "UNPROCESSABLE"
	CodeInternal            = "INTERNAL_ERROR"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

// AppError is a client-renderable failure.
//
// Cause is for server-side logs only and never reaches the response body.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError names one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap exposes Cause to [errors.Is] and [errors.As].
func (e *AppError) Unwrap() error { return e.Cause }

// New builds an [AppError] with a domain-specific code.
//
//	var ErrTreeStale = apperr.New(http.StatusConflict, "TREE_STALE", "Refresh the tree first")
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # 4xx

// NotFound reports a missing resource, e.g. NotFound("Category") reads "Category not found".
func NotFound(resource string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, resource+" not found")
}

// Unauthorized reports a missing or invalid bearer token.
func Unauthorized(msg string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, msg)
}

// Forbidden reports an operator whose role is too low.
func Forbidden(msg string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, msg)
}

// Conflict reports a unique-constraint violation such as a duplicate slug.
func Conflict(msg string) *AppError {
	return New(http.StatusConflict, CodeConflict, msg)
}

// ValidationError reports bad input with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := New(http.StatusBadRequest, CodeValidation, msg)
	err.Details = details
	return err
}

// Unprocessable reports well-formed input that breaks a domain rule, such as a
// parent that would create a cycle.
func Unprocessable(msg string) *AppError {
	return New(http.StatusUnprocessableEntity, CodeUnprocessable, msg)
}

// # 5xx

// Internal hides an unexpected failure behind a generic message.
func Internal(cause error) *AppError {
	err := New(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// BadGateway reports that the catalog API could not be reached or answered garbage.
func BadGateway(cause error) *AppError {
	err := New(http.StatusBadGateway, CodeUpstreamUnavailable, "The catalog service could not be reached")
	err.Cause = cause
	return err
}

// FromResponse rebuilds an [AppError] from a remote error envelope.
// A missing code or message is derived from the status.
func FromResponse(status int, code, message string, details []FieldError) *AppError {
	if code == "" {
		code = strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
	if message == "" {
		message = http.StatusText(status)
	}
	err := New(status, code, message)
	err.Details = details
	return err
}

// # Inspection

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err's chain holds an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
