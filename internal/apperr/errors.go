// Package apperr defines the sentinel errors shared across the service
// layers. Handlers translate these into HTTP statuses; ownership failures
// and missing records both map to ErrNotFound so callers cannot tell
// whether another user's note exists.
package apperr

import "errors"

var (
	// ErrValidation covers missing or invalid request input (HTTP 400).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized covers missing or bad credentials (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers records that are missing or not owned by the
	// caller (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited is surfaced when an upstream dependency rejects a
	// call for quota reasons (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable is surfaced when an upstream dependency is
	// transiently down or still loading (HTTP 503). Callers may retry.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrMisconfigured means a required external credential is absent.
	// It is reported before any network call is attempted (HTTP 500).
	ErrMisconfigured = errors.New("misconfigured")

	// ErrSummarization wraps a summarization failure with upstream detail
	// (HTTP 500). The note's summary stays unset.
	ErrSummarization = errors.New("summarization failed")

	// ErrExport wraps a document rendering failure (HTTP 500).
	ErrExport = errors.New("export failed")
)
