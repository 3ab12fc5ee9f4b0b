// Package remote talks to the external profile REST API.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/janisto/profile-playground/internal/profile"
)

// Failure kinds. Every RequestError wraps exactly one.
var (
	ErrNotFound  = errors.New("profile not found")
	ErrRejected  = errors.New("profile api rejected the request")
	ErrUpstream  = errors.New("profile api failed")
	ErrTransport = errors.New("profile api unreachable")
)

// Operation names used in RequestError.Op and in logs.
const (
	OpList   = "list profiles"
	OpCreate = "create profile"
	OpUpdate = "update profile"
	OpDelete = "delete profile"
)

// RequestError reports a non-success response or a network failure.
type RequestError struct {
	Op     string
	Method string
	// Status is zero for transport failures.
	Status int
	// Message is the API's explanation when it sent one, else a summary of the failure.
	Message string
	cause   error
}

func (e *RequestError) Error() string {
	if e == nil {
		return "profile api request failed"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s returned %d: %s", e.Op, e.Method, e.Status, e.Message)
}

// Unwrap enables errors.Is against the failure kinds.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Service is the remote profile API.
type Service interface {
	// ListProfiles returns every stored profile in API order.
	ListProfiles(ctx context.Context) ([]profile.Profile, error)
	// CreateProfile stores a new profile and returns it with its assigned id.
	CreateProfile(ctx context.Context, in profile.Input) (*profile.Profile, error)
	// UpdateProfile replaces the profile with id.
	UpdateProfile(ctx context.Context, id profile.ID, in profile.Input) (*profile.Profile, error)
	// DeleteProfile removes the profile with id.
	DeleteProfile(ctx context.Context, id profile.ID) error
}
