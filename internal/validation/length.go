package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unicode/utf8"

	"gorm.io/gorm/schema"
)

var ErrUnknownField = errors.New("field is not part of the model schema")

// FieldLengths checks string fields against the column sizes declared
// in the model's gorm schema (the `size` tag).
type FieldLengths struct {
	cache *sync.Map
	namer schema.Namer
}

func NewFieldLengths() *FieldLengths {
	return &FieldLengths{
		cache: &sync.Map{},
		namer: schema.NamingStrategy{},
	}
}

// MaxLength returns the declared size of field, 0 when none is declared.
// The field is looked up by column name first, then by Go field name.
func (l *FieldLengths) MaxLength(model any, field string) (int, error) {
	f, err := l.lookUp(model, field)
	if err != nil {
		return 0, err
	}

	return f.Size, nil
}

// Validate rejects every listed field whose value is longer than its column
// size with CodeExceededMaxLength and the size as argument. Fields without
// a size and values that are not strings are skipped. The returned error
// reports an unknown model or field, not a validation finding.
func (l *FieldLengths) Validate(errs *Errors, model any, fields ...string) error {
	rv := reflect.ValueOf(model)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	for _, field := range fields {
		f, err := l.lookUp(model, field)
		if err != nil {
			return err
		}
		if f.Size <= 0 {
			continue
		}

		fv, err := rv.FieldByIndexErr(f.StructField.Index)
		if err != nil {
			continue
		}

		value, ok := stringOf(fv)
		if !ok {
			continue
		}

		if utf8.RuneCountInString(value) > f.Size {
			errs.RejectValue(field, CodeExceededMaxLength, f.Size)
		}
	}

	return nil
}

func (l *FieldLengths) lookUp(model any, field string) (*schema.Field, error) {
	s, err := schema.Parse(model, l.cache, l.namer)
	if err != nil {
		return nil, fmt.Errorf("parsing schema of %T: %w", model, err)
	}

	f := s.LookUpField(field)
	if f == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Name, field)
	}

	return f, nil
}

func stringOf(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.String {
		return "", false
	}

	return v.String(), true
}
