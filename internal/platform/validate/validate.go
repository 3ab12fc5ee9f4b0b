package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError represents a single field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"-"`
	Message string `json:"message"`
	Value   string `json:"-"`
}

// ValidationError is returned when input validation fails.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Field returns the first failure recorded for field, if any.
func (e *ValidationError) Field(field string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f, true
		}
	}
	return FieldError{}, false
}

// Option configures a Validator.
type Option func(*Validator)

// WithPattern registers tag as a string rule matching re.
func WithPattern(tag string, re *regexp.Regexp) Option {
	return func(v *Validator) {
		// RegisterValidation only fails for empty or reserved tags, which are programmer errors.
		if err := v.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("validate: register %q: %v", tag, err))
		}
	}
}

// WithMessages overrides failure messages. Keys are "<field>.<tag>", e.g. "name.min".
func WithMessages(messages map[string]string) Option {
	return func(v *Validator) {
		for k, m := range messages {
			v.messages[k] = m
		}
	}
}

// Validator wraps go-playground/validator and reports failures by json field name.
type Validator struct {
	v        *validator.Validate
	messages map[string]string
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := tagName(fld, "json"); name != "" {
			return name
		}
		if name := tagName(fld, "form"); name != "" {
			return name
		}
		return fld.Name
	})

	out := &Validator{v: v, messages: make(map[string]string)}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// Validate validates the given struct and returns a *ValidationError on failure.
func (av *Validator) Validate(i any) error {
	err := av.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]FieldError, len(ve))
		for idx, fe := range ve {
			fields[idx] = FieldError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: av.message(fe),
				Value:   fmt.Sprintf("%v", fe.Value()),
			}
		}
		return &ValidationError{
			Message: "validation failed",
			Fields:  fields,
		}
	}

	return &ValidationError{Message: err.Error()}
}

func (av *Validator) message(fe validator.FieldError) string {
	if m, ok := av.messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	return buildMessage(fe)
}

func tagName(fld reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}

func buildMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	default:
		return field + " failed on " + fe.Tag() + " validation"
	}
}
