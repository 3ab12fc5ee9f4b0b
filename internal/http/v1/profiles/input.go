package profiles

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/profile-playground/internal/platform/pagination"
	"github.com/janisto/profile-playground/internal/platform/validate"
	"github.com/janisto/profile-playground/internal/profile"
)

// ProfileBody is the request body for create and replace. Unknown properties such as
// an "id" are accepted and ignored: the path decides which profile is replaced.
type ProfileBody struct {
	_     struct{} `json:"-"             additionalProperties:"true"`
	Name  string   `json:"name"          minLength:"3" maxLength:"100"                             required:"true" doc:"Display name"  example:"Alice"`
	Email string   `json:"email"         pattern:"^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\\.[a-zA-Z]{2,}$" required:"true" doc:"Email address" example:"alice@example.com"`
	Age   *int     `json:"age,omitempty" minimum:"0"                                                               doc:"Age in years"  example:"30"`
}

// input trims the body and checks it against the profile rules. Schema validation runs
// on the raw text, so "  ab " passes it and only fails here.
func (b ProfileBody) input() (profile.Input, error) {
	in := profile.Input{Name: b.Name, Email: b.Email, Age: b.Age}.Normalize()
	if err := profile.Validate(in); err != nil {
		return profile.Input{}, validationProblem(err)
	}
	return in, nil
}

func validationProblem(err error) error {
	var ve *validate.ValidationError
	if !errors.As(err, &ve) {
		return huma.Error422UnprocessableEntity("validation failed")
	}
	details := make([]error, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		details = append(details, &huma.ErrorDetail{
			Location: "body." + f.Field,
			Message:  f.Message,
			Value:    f.Value,
		})
	}
	return huma.Error422UnprocessableEntity("validation failed", details...)
}

// ProfileListInput for GET /profiles. Without limit or cursor every profile is returned.
type ProfileListInput struct {
	pagination.Params
}

// ProfileCreateInput for POST /profiles
type ProfileCreateInput struct {
	Body ProfileBody
}

// ProfileGetInput for GET /profiles/{id}
type ProfileGetInput struct {
	ID string `path:"id" minLength:"1" maxLength:"128" doc:"Profile id" example:"1"`
}

// ProfileReplaceInput for PUT /profiles/{id}
type ProfileReplaceInput struct {
	ID   string `path:"id" minLength:"1" maxLength:"128" doc:"Profile id" example:"1"`
	Body ProfileBody
}

// ProfileDeleteInput for DELETE /profiles/{id}
type ProfileDeleteInput struct {
	ID string `path:"id" minLength:"1" maxLength:"128" doc:"Profile id" example:"1"`
}
