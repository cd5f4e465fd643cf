package errs

import (
	"errors"
	"fmt"
)

var (
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// FieldError locates a failure at a section/field of the answer file.
// It unwraps to both its kind and its cause.
type FieldError struct {
	Kind    error
	Section string
	Field   string
	Err     error
}

func (e *FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("section %q field %q: %v", e.Section, e.Field, e.Kind)
	}

	return fmt.Sprintf("section %q field %q: %v", e.Section, e.Field, e.Err)
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func Parse(section, field string, err error) error {
	return &FieldError{Kind: ErrParse, Section: section, Field: field, Err: err}
}

func Validation(section, field string, err error) error {
	return &FieldError{Kind: ErrValidation, Section: section, Field: field, Err: err}
}

func NotFound(section, field string, err error) error {
	return &FieldError{Kind: ErrNotFound, Section: section, Field: field, Err: err}
}

// At locates err at section/field, keeping the kind err already carries.
// Errors without a kind are validation errors.
func At(section, field string, err error) error {
	for _, kind := range []error{ErrParse, ErrNotFound, ErrValidation} {
		if errors.Is(err, kind) {
			return &FieldError{Kind: kind, Section: section, Field: field, Err: err}
		}
	}

	return Validation(section, field, err)
}
