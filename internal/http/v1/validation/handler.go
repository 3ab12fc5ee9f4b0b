// Package validation evaluates the profile form rules for the page script.
package validation

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/profile-playground/internal/platform/validate"
	"github.com/janisto/profile-playground/internal/profile"
)

// Input for POST /v1/validate. Values are raw form text.
type Input struct {
	Body struct {
		Name  string `json:"name"          maxLength:"1000" doc:"Name field text"  example:"Alice"`
		Email string `json:"email"         maxLength:"1000" doc:"Email field text" example:"alice@example.com"`
		Age   string `json:"age,omitempty" maxLength:"32"   doc:"Age field text"   example:"30"`
	}
}

// FieldError is one failing rule.
type FieldError struct {
	Field   string `json:"field"   doc:"Form field name" example:"name"`
	Message string `json:"message" doc:"Message shown next to the field" example:"Name must be at least 3 characters long"`
}

// Result reports whether the form may be submitted.
type Result struct {
	Valid  bool         `json:"valid"  doc:"True when every rule passes"`
	Errors []FieldError `json:"errors" doc:"Failing rules, empty when valid"`
}

// Output for POST /v1/validate
type Output struct {
	Body Result
}

// Register registers the validation endpoint.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "validate-profile",
		Method:      http.MethodPost,
		Path:        "/v1/validate",
		Summary:     "Validate profile form input",
		Description: "Evaluates the field rules used to enable the submit button. Nothing is stored.",
		Tags:        []string{"Validation"},
	}, func(_ context.Context, input *Input) (*Output, error) {
		in := profile.NewInput(input.Body.Name, input.Body.Email, input.Body.Age)
		return &Output{Body: evaluate(in)}, nil
	})
}

func evaluate(in profile.Input) Result {
	res := Result{Valid: true, Errors: []FieldError{}}
	var ve *validate.ValidationError
	if err := profile.Validate(in); errors.As(err, &ve) {
		res.Valid = false
		for _, f := range ve.Fields {
			res.Errors = append(res.Errors, FieldError{Field: f.Field, Message: f.Message})
		}
	}
	return res
}
