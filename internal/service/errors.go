package service

import "errors"

// Backend errors. Implementations wrap these so callers can use errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrTimeout             = errors.New("request timed out")
	ErrUnavailable         = errors.New("service unavailable")
	ErrSubscriptionStopped = errors.New("subscription stopped")

	// ErrNotConfigured means no project or credentials could be resolved.
	ErrNotConfigured = errors.New("backend not configured")
)

// ProviderError is a rejection from the auth provider.
// Error returns the provider's message unchanged so it can be shown to the user.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }
