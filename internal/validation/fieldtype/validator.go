// Package fieldtype validates model.FieldType values before they are saved.
package fieldtype

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/validation"
)

const (
	// ObjectName is the name findings are recorded under.
	ObjectName = "fieldType"

	NameField = "name"
)

// Finder looks up a field type by its exact name.
// It returns nil and no error when none exists.
type Finder interface {
	FieldTypeByName(ctx context.Context, name string) (*model.FieldType, error)
}

// FinderFunc adapts a function to the Finder interface.
type FinderFunc func(ctx context.Context, name string) (*model.FieldType, error)

func (f FinderFunc) FieldTypeByName(ctx context.Context, name string) (*model.FieldType, error) {
	return f(ctx, name)
}

// Validator checks that a field type has a non-blank name that is unique
// among non-retired field types and fits its column.
type Validator struct {
	finder  Finder
	lengths *validation.FieldLengths
}

func NewValidator(finder Finder, lengths *validation.FieldLengths) *Validator {
	return &Validator{
		finder:  finder,
		lengths: lengths,
	}
}

// Supports reports whether v can be validated by this Validator.
func (v *Validator) Supports(value any) bool {
	_, ok := value.(*model.FieldType)
	return ok
}

// Validate records findings about candidate into errs. A nil candidate is
// itself a finding. The returned error only reports a failing lookup or
// schema, never a validation finding.
func (v *Validator) Validate(ctx context.Context, candidate *model.FieldType, errs *validation.Errors) error {
	if candidate == nil {
		errs.RejectValue(ObjectName, validation.CodeGeneral)
		return nil
	}

	validation.RejectIfEmptyOrWhitespace(errs, NameField, candidate.Name, validation.CodeName)

	if !errs.HasErrors() {
		existing, err := v.finder.FieldTypeByName(ctx, candidate.Name)
		if err != nil {
			return fmt.Errorf("looking up field type %q: %w", candidate.Name, err)
		}

		if existing != nil && !existing.Retired && existing.UUID != candidate.UUID {
			slogctx.Debug(ctx, "field type name already in use", "name", candidate.Name, "uuid", existing.UUID)
			errs.RejectValue(NameField, validation.CodeFieldTypeDuplicateName)
		}
	}

	return v.lengths.Validate(errs, candidate, NameField)
}
