// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chatbot backend.
package api

import (
	"errors"
	"fmt"
)

// Error variables for common backend errors.
var (
	// ErrNotConfigured indicates the server base URL is not set.
	ErrNotConfigured = errors.New("server base URL not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired token).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrSessionNotFound indicates the requested chat session does not exist.
	ErrSessionNotFound = errors.New("session not found")
)

// TransportError represents a failed exchange with the backend. It covers
// both HTTP-level failures (non-2xx status) and network-level failures
// (connection refused, timeout, aborted request), distinguished by
// StatusCode: zero means the request never produced a response.
type TransportError struct {
	// StatusCode is the HTTP status, or 0 for network failures.
	StatusCode int

	// Body is a bounded excerpt of the error response body, if any.
	Body string

	// Err is the underlying error for network failures.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("server returned HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
}

// Unwrap returns the underlying error, and maps well-known statuses onto
// sentinel errors so callers can use errors.Is without inspecting codes.
func (e *TransportError) Unwrap() error {
	switch e.StatusCode {
	case 401, 403:
		return ErrAuthFailed
	case 404:
		return ErrSessionNotFound
	}
	return e.Err
}

// IsNetwork reports whether the failure happened before any HTTP response.
func (e *TransportError) IsNetwork() bool {
	return e.StatusCode == 0
}

// newHTTPError builds a TransportError from a non-2xx response.
func newHTTPError(status int, body []byte) *TransportError {
	return &TransportError{StatusCode: status, Body: string(body)}
}

// newNetworkError wraps a failure that produced no HTTP response.
func newNetworkError(err error) *TransportError {
	return &TransportError{Err: err}
}
