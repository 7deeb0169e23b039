// Package validation holds the shared struct validator used by the
// descriptor packages.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the validator instance shared by all descriptors.
// Initialized in init() with custom validators.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// finite rejects NaN and infinities on float fields
	_ = validate.RegisterValidation("finite", validateFinite)
}

func validateFinite(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value any
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: must satisfy %s=%s (got %v)", e.Field, e.Tag, e.Param, e.Value)
	}
	return fmt.Sprintf("%s: must satisfy %s (got %v)", e.Field, e.Tag, e.Value)
}

// Error aggregates every failed constraint of a struct.
type Error struct {
	Struct string
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("invalid %s: %s", e.Struct, strings.Join(msgs, "; "))
}

// Struct validates v against its `validate` tags. Constraint failures are
// returned as *Error; anything else the validator reports is returned as is.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Struct: structName(verrs)}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}

func structName(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "value"
	}
	ns := verrs[0].StructNamespace()
	if i := strings.Index(ns, "."); i > 0 {
		return ns[:i]
	}
	return ns
}
