// Package common defines shared constants and sentinel errors used across
// sharebin components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// ErrExpired reports a row that was lazily deleted because its expiry
	// had passed. It wraps ErrNotFound, so callers that only care about
	// absence keep matching; callers owning external resources under the id
	// can tell the two apart and cascade cleanup.
	ErrExpired = fmt.Errorf("%w: expired", ErrNotFound)

	// Authorization errors. A token mismatch on an existing resource is
	// always ErrForbidden, never ErrNotFound.
	ErrForbidden = errors.New("forbidden")

	// Validation errors (missing fields, non-positive amounts, bad slot
	// indexes). Capacity rejections carry this as their base error.
	ErrInvalidInput = errors.New("invalid input")
)
