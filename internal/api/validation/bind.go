package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed binding rule
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// FormatBindError turns a binding error into per-field details. Errors that
// are not validator errors (malformed JSON, oversized body) yield nil.
func FormatBindError(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field: e.Field(),
			Tag:   e.Tag(),
			Param: e.Param(),
		})
	}
	return out
}
