package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/santhoseks/openmrs-core/internal/repository"
	"github.com/santhoseks/openmrs-core/internal/validation"
)

const (
	FieldTypeNameValidationID        validation.ID = "FieldType.Name"
	FieldTypeDescriptionValidationID validation.ID = "FieldType.Description"
)

// FieldType describes a category of data-entry field used on forms.
type FieldType struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UUID         string     `gorm:"column:uuid;size:38;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;size:50;not null;index" validationID:"FieldType.Name"`
	Description  string     `gorm:"column:description;size:255" validationID:"FieldType.Description"`
	IsSet        bool       `gorm:"column:is_set;not null;default:false"`
	Creator      string     `gorm:"column:creator;size:50"`
	Retired      bool       `gorm:"column:retired;not null;default:false;index"`
	RetiredBy    string     `gorm:"column:retired_by;size:50"`
	DateRetired  *time.Time `gorm:"column:date_retired"`
	RetireReason string     `gorm:"column:retire_reason;size:255"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

var _ validation.Model = &FieldType{}

// NewFieldType returns a FieldType with a fresh UUID.
func NewFieldType(name, description string) *FieldType {
	return &FieldType{
		UUID:        uuid.NewString(),
		Name:        name,
		Description: description,
	}
}

// TableName returns the table name of the field type entity.
func (f *FieldType) TableName() string {
	return "field_type"
}

// BeforeCreate fills the identifiers the database does not generate.
func (f *FieldType) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UUID == "" {
		f.UUID = uuid.NewString()
	}

	return nil
}

// PaginationKey returns the fields used for pagination.
func (f *FieldType) PaginationKey() map[repository.QueryField]any {
	key := make(map[repository.QueryField]any)
	key[repository.IDField] = f.ID

	return key
}

// IsNew reports whether the field type has not been persisted yet.
func (f *FieldType) IsNew() bool {
	return f.ID == uuid.Nil
}

// Retire marks the field type as logically removed.
func (f *FieldType) Retire(by, reason string) {
	now := time.Now()
	f.Retired = true
	f.RetiredBy = by
	f.RetireReason = reason
	f.DateRetired = &now
}

// Unretire clears the retire audit fields.
func (f *FieldType) Unretire() {
	f.Retired = false
	f.RetiredBy = ""
	f.RetireReason = ""
	f.DateRetired = nil
}

// Validations returns the validation fields for the FieldType model.
func (f *FieldType) Validations() []validation.Field {
	return []validation.Field{
		{
			ID: FieldTypeNameValidationID,
			Validators: []validation.Validator{
				validation.NonEmptyConstraint{},
			},
		},
	}
}
