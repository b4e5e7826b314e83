// Package common defines shared constants and sentinel errors used across
// the mailbox service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors.
	ErrorInvalidInput = errors.New("invalid input")
	ErrorInvalidEmail = errors.New("invalid email address")

	// Infrastructure errors. Admission control maps these according to the
	// fail-open (counters) / fail-closed (identity) rule.
	ErrorStoreUnavailable = errors.New("store unavailable")
)
