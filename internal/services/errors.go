package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	// ErrInvalidInput marks input rejected at a service boundary.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when the actor lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrAssistBusy is returned while the same assist operation is still in flight.
	ErrAssistBusy = errors.New("assist request already in progress")
	// ErrTitleRequired is returned when a description is requested without a title.
	ErrTitleRequired = errors.New("title is required to generate a description")
	// ErrUnknownActor is returned when a session names an actor that does not exist.
	ErrUnknownActor = errors.New("unknown actor")
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("invalid input: %s", strings.Join(keys, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// newValidator returns a validator that reports fields by their json names
// and knows the notblank rule.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct validation and converts failures into a ValidationError.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Fields: fields}
}
