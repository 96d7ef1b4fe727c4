package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santhoseks/openmrs-core/internal/cli"
	"github.com/santhoseks/openmrs-core/internal/config"
	"github.com/santhoseks/openmrs-core/internal/fieldfile"
	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/validation"
)

const twoFieldTypes = `
fieldTypes:
  - name: Text
    description: free text
  - name: Numeric
    description: a number
`

func TestMigrate(t *testing.T) {
	// given
	db := newTestDB(t)

	// when
	out, err := execute(t, db, nil, "migrate")

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestImport(t *testing.T) {
	t.Run("should create the field types of a file", func(t *testing.T) {
		// given
		db := newTestDB(t)
		path := writeFile(t, twoFieldTypes)

		// when
		out, err := execute(t, db, nil, "import", path)

		// then
		require.NoError(t, err)
		assert.Contains(t, out, "Text: created")
		assert.Contains(t, out, "Numeric: created")

		var count int64
		require.NoError(t, db.Model(&model.FieldType{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("should update a field type with a known uuid", func(t *testing.T) {
		// given
		db := newTestDB(t)
		existing := model.NewFieldType("Text", "old")
		require.NoError(t, db.Create(existing).Error)

		path := writeFile(t, "fieldTypes:\n  - uuid: "+existing.UUID+"\n    name: Text\n    description: new\n")

		// when
		out, err := execute(t, db, nil, "import", path)

		// then
		require.NoError(t, err)
		assert.Contains(t, out, "Text: updated "+existing.UUID)

		stored := &model.FieldType{}
		require.NoError(t, db.Where("uuid = ?", existing.UUID).First(stored).Error)
		assert.Equal(t, "new", stored.Description)
	})

	t.Run("should retire entries marked as retired", func(t *testing.T) {
		// given
		db := newTestDB(t)
		path := writeFile(t, "fieldTypes:\n  - name: Boolean\n    retired: true\n")

		// when
		_, err := execute(t, db, nil, "import", path, "--by", "importer")

		// then
		require.NoError(t, err)

		stored := &model.FieldType{}
		require.NoError(t, db.Where("name = ?", "Boolean").First(stored).Error)
		assert.True(t, stored.Retired)
		assert.Equal(t, "importer", stored.RetiredBy)
	})

	t.Run("should report duplicate names and keep going", func(t *testing.T) {
		// given
		db := newTestDB(t)
		require.NoError(t, db.Create(model.NewFieldType("Text", "")).Error)
		path := writeFile(t, twoFieldTypes)

		// when
		out, err := execute(t, db, nil, "import", path)

		// then
		assert.ErrorIs(t, err, cli.ErrImportFailed)
		assert.Contains(t, out, "Text: name: ")
		assert.Contains(t, out, "Numeric: created")
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		// given
		db := newTestDB(t)

		// when
		_, err := execute(t, db, nil, "import", "does-not-exist.yaml")

		// then
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("should accept valid field types without saving them", func(t *testing.T) {
		// given
		db := newTestDB(t)
		path := writeFile(t, twoFieldTypes)

		// when
		out, err := execute(t, db, nil, "validate", path)

		// then
		require.NoError(t, err)
		assert.Contains(t, out, "Text: ok")
		assert.Contains(t, out, "Numeric: ok")

		var count int64
		require.NoError(t, db.Model(&model.FieldType{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("should print localized findings", func(t *testing.T) {
		// given
		db := newTestDB(t)
		path := writeFile(t, "fieldTypes:\n  - name: "+strings.Repeat("x", 51)+"\n")
		messages, err := validation.NewMessages()
		require.NoError(t, err)
		expected := messages.Translate("fr", validation.FieldError{
			Field: "name",
			Code:  validation.CodeExceededMaxLength,
			Args:  []any{50},
		})

		// when
		out, err := execute(t, db, nil, "validate", path, "--locale", "fr")

		// then
		assert.ErrorIs(t, err, cli.ErrInvalidFieldTypes)
		assert.Contains(t, out, expected)
	})

	t.Run("should report configured constraints", func(t *testing.T) {
		// given
		db := newTestDB(t)
		path := writeFile(t, twoFieldTypes)
		cfg := &config.Config{
			FieldValidation: []validation.ConfigField{
				{
					ID: "FieldType.Name",
					Constraints: []validation.Constraint{
						{
							Type: validation.ConstraintTypeList,
							Spec: &validation.ConstraintSpec{AllowList: []string{"Text"}},
						},
					},
				},
			},
		}

		// when
		out, err := execute(t, db, cfg, "validate", path)

		// then
		assert.ErrorIs(t, err, cli.ErrInvalidFieldTypes)
		assert.Contains(t, out, "Text: ok")
		assert.Contains(t, out, "Numeric: ")
		assert.NotContains(t, out, "Numeric: ok")
	})
}

func TestList(t *testing.T) {
	// given
	db := newTestDB(t)
	text := model.NewFieldType("Text", "free text")
	old := model.NewFieldType("Boolean", "")
	old.Retire("admin", "replaced")
	require.NoError(t, db.Create(text).Error)
	require.NoError(t, db.Create(old).Error)

	t.Run("should list active field types as a table", func(t *testing.T) {
		// when
		out, err := execute(t, db, nil, "list")

		// then
		require.NoError(t, err)
		assert.Contains(t, out, "UUID")
		assert.Contains(t, out, text.UUID)
		assert.NotContains(t, out, old.UUID)
	})

	t.Run("should include retired field types", func(t *testing.T) {
		// when
		out, err := execute(t, db, nil, "list", "--include-retired")

		// then
		require.NoError(t, err)
		assert.Contains(t, out, text.UUID)
		assert.Contains(t, out, old.UUID)
	})

	t.Run("should write a file that can be imported", func(t *testing.T) {
		// when
		out, err := execute(t, db, nil, "list", "--include-retired", "-o", "yaml")

		// then
		require.NoError(t, err)
		entries, err := fieldfile.Decode(strings.NewReader(out))
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("should reject an unknown output format", func(t *testing.T) {
		// when
		_, err := execute(t, db, nil, "list", "-o", "json")

		// then
		assert.ErrorIs(t, err, cli.ErrUnknownOutput)
	})
}

func TestRetireUnretirePurge(t *testing.T) {
	// given
	db := newTestDB(t)
	ft := model.NewFieldType("Text", "")
	require.NoError(t, db.Create(ft).Error)

	stored := func() *model.FieldType {
		res := &model.FieldType{}
		require.NoError(t, db.Where("uuid = ?", ft.UUID).First(res).Error)
		return res
	}

	// when
	_, err := execute(t, db, nil, "retire", ft.UUID)

	// then
	assert.Error(t, err, "reason is required")

	// when
	out, err := execute(t, db, nil, "retire", ft.UUID, "--reason", "replaced", "--by", "admin")

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "retired "+ft.UUID)
	assert.True(t, stored().Retired)
	assert.Equal(t, "replaced", stored().RetireReason)

	// when
	out, err = execute(t, db, nil, "unretire", ft.UUID)

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "unretired "+ft.UUID)
	assert.False(t, stored().Retired)

	// when
	out, err = execute(t, db, nil, "purge", ft.UUID)

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "purged "+ft.UUID)

	var count int64
	require.NoError(t, db.Model(&model.FieldType{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUnretireDuplicateName(t *testing.T) {
	// given
	db := newTestDB(t)
	old := model.NewFieldType("Text", "")
	old.Retire("admin", "replaced")
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Create(model.NewFieldType("Text", "")).Error)

	// when
	out, err := execute(t, db, nil, "unretire", old.UUID)

	// then
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.Contains(t, out, old.UUID+": name: ")
}
