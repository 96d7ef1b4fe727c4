package service

import (
	"context"
	"errors"
	"time"

	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/repository"
	"github.com/santhoseks/openmrs-core/internal/validation"
)

const defaultTranTimeout = time.Second * 10

// repositoryFinder looks field types up through a repository,
// which may be bound to a transaction.
type repositoryFinder struct {
	repo repository.Repository
}

func (f repositoryFinder) FieldTypeByName(ctx context.Context, name string) (*model.FieldType, error) {
	return getFieldTypeByName(ctx, f.repo, name)
}

// getFieldTypeByName fetches the field type with the given name.
// Non-retired records win over retired ones sharing the name.
// It returns nil if no field type has the name.
func getFieldTypeByName(ctx context.Context, r repository.Repository, name string) (*model.FieldType, error) {
	fieldType := &model.FieldType{}

	query := repository.NewQuery(fieldType).
		Where(repository.NewCompositeKey().Where(repository.NameField, name)).
		OrderBy(repository.RetiredField, false)

	found, err := r.First(ctx, fieldType, *query)
	if err != nil {
		return nil, ErrFieldTypeSelect
	}

	if !found {
		return nil, nil
	}

	return fieldType, nil
}

// getFieldTypeByUUID fetches a field type by its uuid.
// It returns ErrFieldTypeNotFound if there is none.
func getFieldTypeByUUID(ctx context.Context, r repository.Repository, uuid string) (*model.FieldType, error) {
	if uuid == "" {
		return nil, ErrUUIDIsEmpty
	}

	fieldType := &model.FieldType{UUID: uuid}

	found, err := r.Find(ctx, fieldType)
	if err != nil {
		return nil, ErrFieldTypeSelect
	}

	if !found {
		return nil, ErrFieldTypeNotFound
	}

	return fieldType, nil
}

// checkConstraints records the findings of the configured validation for a model.FieldType.
func checkConstraints(v *validation.Validation, fieldType *model.FieldType, errs *validation.Errors) error {
	values, err := validation.GetValues(fieldType)
	if err != nil {
		return ErrorWithParams(ErrValidationConversion, "err", err.Error())
	}

	v.Check(errs, values)

	return nil
}

// mapRepositoryError turns unique violations into ErrFieldTypeAlreadyExists
// and any other failure into fallback.
func mapRepositoryError(err, fallback error) error {
	var uniqueErr *repository.UniqueConstraintError
	if errors.As(err, &uniqueErr) {
		return ErrorWithParams(ErrFieldTypeAlreadyExists, "detail", uniqueErr.Detail)
	}

	return fallback
}
