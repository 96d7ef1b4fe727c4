package validation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

var ErrMissingID = errors.New("id does not exist")

type (
	// Validation holds the validators registered per validation ID.
	Validation struct {
		byID map[ID]Spec
		mu   sync.RWMutex
	}

	ID   string
	Spec struct {
		omitIDCheck bool
		validators  []Validator
	}
)

func New(fields ...ConfigField) (*Validation, error) {
	v := &Validation{
		byID: make(map[ID]Spec),
	}
	err := v.AddConfigFields(fields...)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Validation) AddConfigFields(fields ...ConfigField) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, field := range fields {
		validators, err := getValidators(field.Constraints)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.ID, err)
		}
		spec, ok := v.byID[field.ID]
		if !ok {
			v.byID[field.ID] = Spec{
				omitIDCheck: field.OmitIDCheck,
				validators:  validators,
			}
			continue
		}
		spec.omitIDCheck = spec.omitIDCheck || field.OmitIDCheck
		spec.validators = append(spec.validators, validators...)
		v.byID[field.ID] = spec
	}

	return nil
}

// AddModels registers the struct-level validations every model declares.
func (v *Validation) AddModels(models ...Model) {
	for _, m := range models {
		v.AddStructFields(m.Validations()...)
	}
}

func (v *Validation) AddStructFields(fields ...Field) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, field := range fields {
		spec, ok := v.byID[field.ID]
		if !ok {
			v.byID[field.ID] = Spec{
				validators: field.Validators,
			}
			continue
		}
		spec.omitIDCheck = false
		spec.validators = append(spec.validators, field.Validators...)
		v.byID[field.ID] = spec
	}
}

// CheckIDs returns ErrMissingID for the first registered ID
// that none of the sources provide.
func (v *Validation) CheckIDs(sources ...map[ID]struct{}) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for id, spec := range v.byID {
		if spec.omitIDCheck {
			continue
		}

		exists := false
		for _, source := range sources {
			_, ok := source[id]
			if ok {
				exists = true
				break
			}
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrMissingID, id)
		}
	}
	return nil
}

// ValidateAll validates every value and returns the first failure,
// visiting IDs in sorted order.
func (v *Validation) ValidateAll(valuesByID map[ID]any) error {
	for _, id := range slices.Sorted(maps.Keys(valuesByID)) {
		err := v.Validate(id, valuesByID[id])
		if err != nil {
			return err
		}
	}
	return nil
}

// Check records a CodeConstraint finding in errs for every value that
// fails its validators. The finding's argument is the violation.
func (v *Validation) Check(errs *Errors, valuesByID map[ID]any) {
	for _, id := range slices.Sorted(maps.Keys(valuesByID)) {
		err := v.violation(id, valuesByID[id])
		if err != nil {
			errs.RejectValue(id.Field(), CodeConstraint, err.Error())
		}
	}
}

func (v *Validation) Validate(id ID, value any) error {
	err := v.violation(id, value)
	if err != nil {
		return fmt.Errorf("validation failed for %s: %w", id, err)
	}

	return nil
}

func (v *Validation) violation(id ID, value any) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	spec, ok := v.byID[id]
	if !ok {
		return nil
	}

	for _, validator := range spec.validators {
		err := validator.Validate(value)
		if err != nil {
			return err
		}
	}

	return nil
}

// Field returns the name the ID's struct field is reported under,
// "name" for "FieldType.Name".
func (id ID) Field() string {
	field := string(id)
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}

	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return field
	}

	return string(unicode.ToLower(r)) + field[size:]
}
