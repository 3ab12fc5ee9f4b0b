// Package state exposes the web client's application state as JSON.
package state

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/profile-playground/internal/http/v1/profiles"
	"github.com/janisto/profile-playground/internal/platform/timeutil"
	"github.com/janisto/profile-playground/internal/store"
)

// State is the snapshot returned by GET /v1/state.
type State struct {
	Profile   *profiles.Profile `json:"profile"         doc:"Current profile, null when none is loaded"`
	Loading   bool              `json:"loading"         doc:"A sync with the profile API is in flight"`
	Error     string            `json:"error,omitempty" doc:"Last sync error"                        example:"Failed to fetch profile data: Not Found"`
	Version   uint64            `json:"version"         doc:"Incremented on every state change"      example:"3"`
	UpdatedAt timeutil.Time     `json:"updatedAt"       doc:"Time of the last state change"`
}

// GetOutput for GET /v1/state
type GetOutput struct {
	Body State
}

// Register registers the state endpoint.
func Register(api huma.API, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/v1/state",
		Summary:     "Get application state",
		Description: "Returns the current profile together with the loading flag and the last sync error.",
		Tags:        []string{"State"},
	}, func(_ context.Context, _ *struct{}) (*GetOutput, error) {
		return &GetOutput{Body: fromSnapshot(st.Snapshot())}, nil
	})
}

func fromSnapshot(s store.State) State {
	out := State{
		Loading:   s.Loading,
		Error:     s.Error,
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Profile != nil {
		p := profiles.Profile{
			ID:    profiles.ID(s.Profile.ID),
			Name:  s.Profile.Name,
			Email: s.Profile.Email,
			Age:   s.Profile.Age,
		}
		out.Profile = &p
	}
	return out
}
