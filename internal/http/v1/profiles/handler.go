package profiles

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/profile-playground/internal/platform/logging"
	"github.com/janisto/profile-playground/internal/platform/pagination"
	"github.com/janisto/profile-playground/internal/profile"
	"github.com/janisto/profile-playground/internal/service/profilestore"
)

const cursorKind = "profile"

func profileID(p profile.Profile) string { return p.ID.String() }

// Register registers the profile REST endpoints consumed by the web client.
func Register(api huma.API, svc profilestore.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        "/profiles",
		Summary:     "List profiles",
		Description: "Returns stored profiles in creation order. Pass limit to page through them.",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *ProfileListInput) (*ProfileListOutput, error) {
		cursor, err := pagination.DecodeCursor(input.Cursor, cursorKind)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid cursor")
		}
		list, err := svc.List(ctx)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		page := pagination.Paginate(list, cursor, input.Limit, profileID, "/profiles")
		out := &ProfileListOutput{Link: page.Link, Total: page.Total, Body: make([]Profile, 0, len(page.Items))}
		for i := range page.Items {
			out.Body = append(out.Body, toHTTPProfile(&page.Items[i]))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/profiles",
		Summary:       "Create profile",
		Description:   "Stores a new profile and assigns its id.",
		Tags:          []string{"Profiles"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *ProfileCreateInput) (*ProfileCreateOutput, error) {
		in, err := input.Body.input()
		if err != nil {
			return nil, err
		}
		p, err := svc.Create(ctx, in)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileCreateOutput{
			Location: "/profiles/" + url.PathEscape(p.ID.String()),
			Body:     toHTTPProfile(p),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profiles/{id}",
		Summary:     "Get profile",
		Description: "Retrieves one profile by id.",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *ProfileGetInput) (*ProfileGetOutput, error) {
		p, err := svc.Get(ctx, profile.ID(input.ID))
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileGetOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-profile",
		Method:      http.MethodPut,
		Path:        "/profiles/{id}",
		Summary:     "Replace profile",
		Description: "Replaces every field of a profile. Omitted optional fields are cleared.",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *ProfileReplaceInput) (*ProfileReplaceOutput, error) {
		in, err := input.Body.input()
		if err != nil {
			return nil, err
		}
		p, err := svc.Replace(ctx, profile.ID(input.ID), in)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileReplaceOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-profile",
		Method:        http.MethodDelete,
		Path:          "/profiles/{id}",
		Summary:       "Delete profile",
		Description:   "Permanently deletes a profile.",
		Tags:          []string{"Profiles"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ProfileDeleteInput) (*struct{}, error) {
		if err := svc.Delete(ctx, profile.ID(input.ID)); err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return nil, nil
	})
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, profilestore.ErrNotFound):
		return huma.Error404NotFound("profile not found")
	default:
		applog.LogError(ctx, "profile store failure", err)
		return huma.Error500InternalServerError("internal error")
	}
}
