package core

import (
	"errors"
	"fmt"
)

// ErrUnsupportedProvider is returned when no client can serve a model identifier.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// FailureKind classifies a failed provider call.
type FailureKind string

const (
	FailureOverloaded     FailureKind = "overloaded"
	FailureRateLimited    FailureKind = "rate_limited"
	FailureTimeout        FailureKind = "timeout"
	FailureNetwork        FailureKind = "network"
	FailureServerError    FailureKind = "server_error"
	FailureUnauthorized   FailureKind = "unauthorized"
	FailureInvalidRequest FailureKind = "invalid_request"
	FailureUnsupported    FailureKind = "unsupported"
	FailureCanceled       FailureKind = "canceled"
	FailureUnknown        FailureKind = "unknown"
)

// Transient reports whether another provider may reasonably succeed where
// this one failed.
func (k FailureKind) Transient() bool {
	switch k {
	case FailureOverloaded, FailureRateLimited, FailureTimeout, FailureNetwork, FailureServerError:
		return true
	default:
		return false
	}
}

// ProviderError is a classified failure of a single provider attempt.
type ProviderError struct {
	Model ModelID
	Kind  FailureKind
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Model, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError reports a request rejected at the boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
