// Package validation turns struct-tag validation failures into field error
// sets keyed by the JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	authdomain "storeadmin/backend/internal/domain/auth"
)

// Validator validates request structs using `validate` tags.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator that reports fields by their json name.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// maxBytes limits the UTF-8 encoded length of a string.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Struct validates s. It returns nil when s is valid, a *ValidationError when
// one or more fields fail, and any other error unchanged.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := authdomain.NewValidationError()
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), Message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return out
}

// Message renders the human readable message for a failed rule.
func Message(field, tag, param string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, param)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, param)
	case "maxbytes":
		return fmt.Sprintf("The %s field must not be greater than %s bytes.", label, param)
	case "eqfield":
		return fmt.Sprintf("The %s does not match.", label)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
