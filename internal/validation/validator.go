package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"unicode/utf8"
)

var (
	ErrWrongType       = errors.New("value has wrong type")
	ErrValueNotAllowed = errors.New("value is not allowed")
	ErrValueEmpty      = errors.New("value is empty")
	ErrValueNoMatch    = errors.New("value does not match pattern")
	ErrValueTooLong    = errors.New("value is too long")
)

// Validator defines the interface for constraints.
type Validator interface {
	Validate(value any) error
}

// ListConstraint validates that a value is within an allowed list.
type ListConstraint struct {
	AllowList []string `yaml:"allowList"`
}

// Validate checks if the provided value is in the AllowList.
func (l ListConstraint) Validate(value any) error {
	strValue, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrWrongType, value)
	}

	if !slices.Contains(l.AllowList, strValue) {
		return fmt.Errorf("%w: %s", ErrValueNotAllowed, strValue)
	}

	return nil
}

// NonEmptyConstraint validates that a string value is not empty.
type NonEmptyConstraint struct{}

// Validate checks if the provided value is a non-empty string.
func (n NonEmptyConstraint) Validate(value any) error {
	strValue, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrWrongType, value)
	}

	if strValue == "" {
		return ErrValueEmpty
	}

	return nil
}

// RegexConstraint validates that a string value matches a pattern.
type RegexConstraint struct {
	pattern *regexp.Regexp
}

// NewRegexConstraint compiles the pattern into a RegexConstraint.
func NewRegexConstraint(pattern string) (*RegexConstraint, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstraintPatternInvalid, err)
	}

	return &RegexConstraint{pattern: re}, nil
}

// Validate checks if the provided value matches the pattern.
// Empty strings are left to NonEmptyConstraint.
func (r *RegexConstraint) Validate(value any) error {
	strValue, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrWrongType, value)
	}

	if strValue == "" {
		return nil
	}

	if !r.pattern.MatchString(strValue) {
		return fmt.Errorf("%w: %s", ErrValueNoMatch, strValue)
	}

	return nil
}

// MaxLengthConstraint validates that a string has at most Max characters.
type MaxLengthConstraint struct {
	Max int
}

// Validate checks the character count of the provided value.
func (m MaxLengthConstraint) Validate(value any) error {
	strValue, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrWrongType, value)
	}

	if n := utf8.RuneCountInString(strValue); n > m.Max {
		return fmt.Errorf("%w: %d > %d", ErrValueTooLong, n, m.Max)
	}

	return nil
}
