package validation

import (
	"errors"
	"fmt"
)

const (
	ConstraintTypeList      = "list"
	ConstraintTypeNonEmpty  = "non-empty"
	ConstraintTypeRegex     = "regex"
	ConstraintTypeMaxLength = "max-length"
)

var (
	ErrConstraintsMissing         = errors.New("no constraints provided")
	ErrEmptyConstraintType        = errors.New("constraint type is empty")
	ErrUnknownConstraintType      = errors.New("unknown constraint type")
	ErrConstraintSpecMissing      = errors.New("constraint spec is missing")
	ErrConstraintAllowListMissing = errors.New("constraint allow list is missing")
	ErrConstraintPatternMissing   = errors.New("constraint pattern is missing")
	ErrConstraintPatternInvalid   = errors.New("constraint pattern is invalid")
	ErrConstraintMaxInvalid       = errors.New("constraint max must be greater than zero")
)

type (
	// ConfigField represents a configuration field with its validation constraints.
	// If the ID is not defined via `TagName`,
	// OmitIDCheck needs to be set to true.
	ConfigField struct {
		ID          ID           `yaml:"id" json:"id"`
		OmitIDCheck bool         `yaml:"omitIDCheck,omitempty" json:"omitIDCheck,omitempty"`
		Constraints []Constraint `yaml:"constraints" json:"constraints"`
	}

	// Constraint represents a validation constraint for a configuration field.
	Constraint struct {
		Type string          `yaml:"type" json:"type"`
		Spec *ConstraintSpec `yaml:"spec,omitempty" json:"spec,omitempty"`
	}

	// ConstraintSpec holds the specification for a constraint.
	ConstraintSpec struct {
		AllowList []string `yaml:"allowList,omitempty" json:"allowList,omitempty"`
		Pattern   string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
		Max       int      `yaml:"max,omitempty" json:"max,omitempty"`
	}
)

func (c Constraint) getValidator() (Validator, error) {
	switch c.Type {
	case "":
		return nil, ErrEmptyConstraintType
	case ConstraintTypeList:
		if c.Spec == nil {
			return nil, ErrConstraintSpecMissing
		}
		if len(c.Spec.AllowList) == 0 {
			return nil, ErrConstraintAllowListMissing
		}
		return ListConstraint{
			AllowList: c.Spec.AllowList,
		}, nil
	case ConstraintTypeNonEmpty:
		return NonEmptyConstraint{}, nil
	case ConstraintTypeRegex:
		if c.Spec == nil {
			return nil, ErrConstraintSpecMissing
		}
		if c.Spec.Pattern == "" {
			return nil, ErrConstraintPatternMissing
		}
		rc, err := NewRegexConstraint(c.Spec.Pattern)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case ConstraintTypeMaxLength:
		if c.Spec == nil {
			return nil, ErrConstraintSpecMissing
		}
		if c.Spec.Max <= 0 {
			return nil, ErrConstraintMaxInvalid
		}
		return MaxLengthConstraint{Max: c.Spec.Max}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownConstraintType, c.Type)
	}
}

func getValidators(constraints []Constraint) ([]Validator, error) {
	if len(constraints) == 0 {
		return nil, ErrConstraintsMissing
	}

	v := make([]Validator, 0, len(constraints))
	for _, c := range constraints {
		cv, err := c.getValidator()
		if err != nil {
			return nil, err
		}
		v = append(v, cv)
	}
	return v, nil
}
