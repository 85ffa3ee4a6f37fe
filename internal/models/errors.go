package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not_found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrInvalidInput      = errors.New("invalid_input")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// UpstreamError carries an upstream gateway status that must be
// surfaced verbatim to the caller (429 rate limit, 402 payment
// required). Every other upstream failure collapses to a plain error
// and is reported as 500.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Message)
}
