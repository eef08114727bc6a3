package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/samber/lo"
)

// InvalidBody is reported when the request body cannot be decoded.
const InvalidBody = `"body" must be a valid JSON object`

// ValidationError carries one message per violated rule.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates every field of s and returns a *ValidationError listing
// all failures, or nil.
func (v *Validator) Struct(s any) error {
	return v.Check(s, nil)
}

// Check validates s and merges the problems found while decoding its body.
// Field messages follow the struct's field order and unknown keys come last.
// A field that failed to decode reports only its type error.
func (v *Validator) Check(s any, body *BodyError) error {
	err := v.validate.Struct(s)
	var ve validator.ValidationErrors
	if err != nil && !errors.As(err, &ve) {
		return err
	}
	if len(ve) == 0 && body.empty() {
		return nil
	}

	byField := lo.GroupBy(ve, func(fe validator.FieldError) string { return fe.Field() })
	var details []string
	for _, name := range jsonNames(reflect.Indirect(reflect.ValueOf(s)).Type()) {
		if msg, ok := body.field(name); ok {
			details = append(details, msg)
			continue
		}
		details = append(details, lo.Map(byField[name], formatFieldError)...)
	}
	details = append(details, body.unknownKeys()...)
	if len(details) == 0 {
		return err
	}
	return NewValidationError(details...)
}

func formatFieldError(fe validator.FieldError, _ int) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "notblank":
		return fmt.Sprintf("%q is not allowed to be empty", fe.Field())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%q failed on the %q rule", fe.Field(), fe.Tag())
	}
}
