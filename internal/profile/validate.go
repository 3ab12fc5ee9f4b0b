package profile

import (
	"errors"
	"regexp"

	"github.com/janisto/profile-playground/internal/platform/validate"
)

// EmailPattern is the user@domain.tld shape accepted for emails.
var EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Field messages shown next to the offending input.
const (
	MsgNameRequired  = "Name is required"
	MsgNameTooShort  = "Name must be at least 3 characters long"
	MsgNameTooLong   = "Name must be at most 100 characters long"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Email is not valid"
	MsgAgeInvalid    = "Age must be a positive number"
)

var validator = validate.New(
	validate.WithPattern("profile_email", EmailPattern),
	validate.WithMessages(map[string]string{
		"name.required":       MsgNameRequired,
		"name.min":            MsgNameTooShort,
		"name.max":            MsgNameTooLong,
		"email.required":      MsgEmailRequired,
		"email.profile_email": MsgEmailInvalid,
		"age.min":             MsgAgeInvalid,
	}),
)

// Validate checks in against the field rules and returns a *validate.ValidationError
// listing every failing field, or nil.
func Validate(in Input) error {
	err := validator.Validate(in)
	if in.ageText == "" {
		return err
	}

	ageErr := validate.FieldError{Field: "age", Tag: "number", Message: MsgAgeInvalid, Value: in.ageText}
	if err == nil {
		return &validate.ValidationError{Message: "validation failed", Fields: []validate.FieldError{ageErr}}
	}
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		ve.Fields = append(ve.Fields, ageErr)
	}
	return err
}

// CanSubmit reports whether the submit action is enabled for in.
func CanSubmit(in Input) bool {
	return Validate(in) == nil
}

// FieldErrors maps each failing field to its message, for inline display.
func FieldErrors(err error) map[string]string {
	var ve *validate.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}
