// Package profilestore is the storage behind the companion profile REST API.
package profilestore

import (
	"context"
	"errors"

	"github.com/janisto/profile-playground/internal/profile"
)

// ErrNotFound is returned when no profile has the requested id.
var ErrNotFound = errors.New("profile not found")

const resourceType = "profile"

// Service defines profile storage. Implementations trim name and email and keep
// profiles in creation order.
type Service interface {
	List(ctx context.Context) ([]profile.Profile, error)
	Get(ctx context.Context, id profile.ID) (*profile.Profile, error)
	Create(ctx context.Context, in profile.Input) (*profile.Profile, error)
	// Replace overwrites every field of the profile with id.
	Replace(ctx context.Context, id profile.ID, in profile.Input) (*profile.Profile, error)
	Delete(ctx context.Context, id profile.ID) error
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal_error"
	}
}
