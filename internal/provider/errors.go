package provider

import (
	"errors"
	"fmt"

	"github.com/masembe/momopay-backend/internal/models"
)

// ErrUnsupportedProvider is returned by the gateway for unknown provider tags.
var ErrUnsupportedProvider = errors.New("unsupported payment provider")

// AuthError means the credential exchange with a provider failed. It is never
// retried silently; the caller decides whether to retry the whole initiation.
type AuthError struct {
	Provider models.Provider
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth: %v", e.Provider, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

// InitiationError means the provider rejected or was unreachable during
// initiate. The generated reference must be discarded by the caller.
type InitiationError struct {
	Provider models.Provider
	Detail   string
	Err      error
}

func (e *InitiationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s payment initiation: %s", e.Provider, e.Detail)
	}
	return fmt.Sprintf("%s payment initiation: %v", e.Provider, e.Err)
}
func (e *InitiationError) Unwrap() error { return e.Err }

// StatusCheckError means a status poll failed in transport or parsing.
// Callers must treat it as "unknown", never as failed.
type StatusCheckError struct {
	Provider  models.Provider
	Reference string
	Err       error
}

func (e *StatusCheckError) Error() string {
	return fmt.Sprintf("%s status check for %s: %v", e.Provider, e.Reference, e.Err)
}
func (e *StatusCheckError) Unwrap() error { return e.Err }
