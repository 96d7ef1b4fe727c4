package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santhoseks/openmrs-core/internal/validation"
)

type sizedRecord struct {
	ID      uint
	Name    string  `gorm:"column:name;size:5"`
	Note    *string `gorm:"column:note;size:3"`
	Free    string  `gorm:"column:free"`
	Counter int     `gorm:"column:counter;size:2"`
}

func TestFieldLengthsMaxLength(t *testing.T) {
	lengths := validation.NewFieldLengths()

	tests := []struct {
		name   string
		field  string
		expMax int
		expErr error
	}{
		{
			name:   "should look up by column name",
			field:  "name",
			expMax: 5,
		},
		{
			name:   "should look up by Go field name",
			field:  "Note",
			expMax: 3,
		},
		{
			name:   "should return zero without size",
			field:  "free",
			expMax: 0,
		},
		{
			name:   "should return error for unknown field",
			field:  "unknown",
			expErr: validation.ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// when
			maxLen, err := lengths.MaxLength(&sizedRecord{}, tt.field)

			// then
			if tt.expErr != nil {
				assert.ErrorIs(t, err, tt.expErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expMax, maxLen)
		})
	}
}

func TestFieldLengthsValidate(t *testing.T) {
	lengths := validation.NewFieldLengths()
	longNote := "abcd"

	tests := []struct {
		name      string
		record    *sizedRecord
		fields    []string
		expErrors []validation.FieldError
	}{
		{
			name:      "should accept values within their size",
			record:    &sizedRecord{Name: "abcde"},
			fields:    []string{"name", "note"},
			expErrors: nil,
		},
		{
			name:   "should reject value longer than its size",
			record: &sizedRecord{Name: "abcdef"},
			fields: []string{"name"},
			expErrors: []validation.FieldError{
				{Object: "record", Field: "name", Code: validation.CodeExceededMaxLength, Args: []any{5}},
			},
		},
		{
			name:      "should count characters instead of bytes",
			record:    &sizedRecord{Name: "ééééé"},
			fields:    []string{"name"},
			expErrors: nil,
		},
		{
			name:   "should check string pointers",
			record: &sizedRecord{Note: &longNote},
			fields: []string{"note"},
			expErrors: []validation.FieldError{
				{Object: "record", Field: "note", Code: validation.CodeExceededMaxLength, Args: []any{3}},
			},
		},
		{
			name:      "should skip fields without size and non string fields",
			record:    &sizedRecord{Free: strings.Repeat("x", 1000), Counter: 12345},
			fields:    []string{"free", "counter"},
			expErrors: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			errs := validation.NewErrors("record")

			// when
			err := lengths.Validate(errs, tt.record, tt.fields...)

			// then
			require.NoError(t, err)
			if tt.expErrors == nil {
				assert.False(t, errs.HasErrors())
				return
			}
			assert.Equal(t, tt.expErrors, errs.All())
		})
	}

	t.Run("should skip a nil model", func(t *testing.T) {
		// given
		errs := validation.NewErrors("record")
		var record *sizedRecord

		// when
		err := lengths.Validate(errs, record, "name")

		// then
		assert.NoError(t, err)
		assert.False(t, errs.HasErrors())
	})

	t.Run("should return error for unknown field", func(t *testing.T) {
		// given
		errs := validation.NewErrors("record")

		// when
		err := lengths.Validate(errs, &sizedRecord{}, "unknown")

		// then
		assert.ErrorIs(t, err, validation.ErrUnknownField)
	})
}
