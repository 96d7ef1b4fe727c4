// Package fieldfile reads and writes YAML documents listing field types.
package fieldfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/santhoseks/openmrs-core/internal/model"
)

var ErrNoFieldTypes = errors.New("file lists no field types")

type (
	// Document is the root of a field type file.
	Document struct {
		FieldTypes []Entry `yaml:"fieldTypes"`
	}

	// Entry is a single field type as written in a file.
	// An empty UUID asks for a new field type.
	Entry struct {
		UUID        string `yaml:"uuid,omitempty"`
		Name        string `yaml:"name"`
		Description string `yaml:"description,omitempty"`
		IsSet       bool   `yaml:"isSet,omitempty"`
		Retired     bool   `yaml:"retired,omitempty"`
	}
)

// Load reads the field type file at path.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return entries, nil
}

// Decode reads a field type document. Unknown keys are rejected.
func Decode(r io.Reader) ([]Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoFieldTypes
		}
		return nil, err
	}

	if len(doc.FieldTypes) == 0 {
		return nil, ErrNoFieldTypes
	}

	return doc.FieldTypes, nil
}

// Encode writes the field types as a document.
func Encode(w io.Writer, fieldTypes []model.FieldType) error {
	doc := Document{FieldTypes: make([]Entry, 0, len(fieldTypes))}
	for _, ft := range fieldTypes {
		doc.FieldTypes = append(doc.FieldTypes, FromModel(&ft))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return err
	}

	return enc.Close()
}

// FromModel converts a field type into an Entry.
func FromModel(ft *model.FieldType) Entry {
	return Entry{
		UUID:        ft.UUID,
		Name:        ft.Name,
		Description: ft.Description,
		IsSet:       ft.IsSet,
		Retired:     ft.Retired,
	}
}

// NewFieldType returns a field type that has not been stored yet.
func (e Entry) NewFieldType() *model.FieldType {
	ft := model.NewFieldType(e.Name, e.Description)
	if e.UUID != "" {
		ft.UUID = e.UUID
	}
	ft.IsSet = e.IsSet

	return ft
}

// ApplyTo copies the editable attributes of the entry onto ft.
// The retired state is managed separately.
func (e Entry) ApplyTo(ft *model.FieldType) {
	ft.Name = e.Name
	ft.Description = e.Description
	ft.IsSet = e.IsSet
}
