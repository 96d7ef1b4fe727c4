package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes reported into Errors. They are symbolic and meant to be
// localized by Messages.
const (
	CodeGeneral                = "error.general"
	CodeName                   = "error.name"
	CodeFieldTypeDuplicateName = "fieldtype.duplicate.name"
	CodeExceededMaxLength      = "error.exceededMaxLengthOfField"
	CodeConstraint             = "error.constraint"
)

var ErrInvalid = errors.New("validation failed")

// FieldError is a single finding. Field is empty for object-level errors.
type FieldError struct {
	Object string
	Field  string
	Code   string
	Args   []any
}

func (f FieldError) String() string {
	if f.Field == "" {
		return fmt.Sprintf("%s: %s", f.Object, f.Code)
	}

	return fmt.Sprintf("%s.%s: %s", f.Object, f.Field, f.Code)
}

// Errors collects the findings for one validated object.
// It is not safe for concurrent use.
type Errors struct {
	objectName string
	errs       []FieldError
}

// NewErrors creates an empty collector for the named object.
func NewErrors(objectName string) *Errors {
	return &Errors{objectName: objectName}
}

// ObjectName returns the name the collector was created with.
func (e *Errors) ObjectName() string {
	return e.objectName
}

// Reject records an object-level error.
func (e *Errors) Reject(code string, args ...any) {
	e.RejectValue("", code, args...)
}

// RejectValue records an error for the given field.
func (e *Errors) RejectValue(field, code string, args ...any) {
	e.errs = append(e.errs, FieldError{
		Object: e.objectName,
		Field:  field,
		Code:   code,
		Args:   args,
	})
}

func (e *Errors) HasErrors() bool {
	return len(e.errs) > 0
}

func (e *Errors) ErrorCount() int {
	return len(e.errs)
}

func (e *Errors) HasFieldErrors(field string) bool {
	for _, fe := range e.errs {
		if fe.Field == field {
			return true
		}
	}

	return false
}

// FieldErrors returns the errors recorded for field in insertion order.
func (e *Errors) FieldErrors(field string) []FieldError {
	var res []FieldError
	for _, fe := range e.errs {
		if fe.Field == field {
			res = append(res, fe)
		}
	}

	return res
}

// GlobalErrors returns the object-level errors.
func (e *Errors) GlobalErrors() []FieldError {
	var res []FieldError
	for _, fe := range e.errs {
		if fe.Field == "" {
			res = append(res, fe)
		}
	}

	return res
}

// All returns every recorded error in insertion order.
func (e *Errors) All() []FieldError {
	res := make([]FieldError, len(e.errs))
	copy(res, e.errs)

	return res
}

// Codes returns the codes of all recorded errors in insertion order.
func (e *Errors) Codes() []string {
	res := make([]string, 0, len(e.errs))
	for _, fe := range e.errs {
		res = append(res, fe.Code)
	}

	return res
}

// Err returns nil when nothing was recorded, otherwise an *Error.
func (e *Errors) Err() error {
	if !e.HasErrors() {
		return nil
	}

	return &Error{Errors: e}
}

// Error carries a non-empty Errors collector through error returns.
// errors.Is(err, ErrInvalid) holds for it.
type Error struct {
	Errors *Errors
}

func (e *Error) Error() string {
	parts := make([]string, 0, e.Errors.ErrorCount())
	for _, fe := range e.Errors.errs {
		parts = append(parts, fe.String())
	}

	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// RejectIfEmptyOrWhitespace rejects field with code when value is empty
// or contains only whitespace.
func RejectIfEmptyOrWhitespace(errs *Errors, field, value, code string) {
	if strings.TrimSpace(value) == "" {
		errs.RejectValue(field, code)
	}
}
