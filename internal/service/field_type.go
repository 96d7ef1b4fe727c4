package service

import (
	"context"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/repository"
	"github.com/santhoseks/openmrs-core/internal/validation"
	"github.com/santhoseks/openmrs-core/internal/validation/fieldtype"
)

// FieldType manages the field types used on forms.
type FieldType struct {
	repo       repository.Repository
	lengths    *validation.FieldLengths
	validation *validation.Validation
	meters     *Meters
}

type (
	fieldTypeUpdateFunc   func(fieldType *model.FieldType)
	fieldTypeValidateFunc func(ctx context.Context, r repository.Repository, fieldType *model.FieldType) error

	patchFieldTypeParams struct {
		uuid         string
		validateFunc fieldTypeValidateFunc
		updateFunc   fieldTypeUpdateFunc
	}
)

var _ fieldtype.Finder = &FieldType{}

// NewFieldType creates and returns a new instance of FieldType.
func NewFieldType(
	repo repository.Repository,
	lengths *validation.FieldLengths,
	constraints *validation.Validation,
	meters *Meters,
) *FieldType {
	return &FieldType{
		repo:       repo,
		lengths:    lengths,
		validation: constraints,
		meters:     meters,
	}
}

// FieldTypeByName returns the field type with the given name, or nil if there is none.
// A non-retired field type is returned in preference to retired ones with the same name.
func (f *FieldType) FieldTypeByName(ctx context.Context, name string) (*model.FieldType, error) {
	slogctx.Debug(ctx, "FieldTypeByName called", "name", name)

	return getFieldTypeByName(ctx, f.repo, name)
}

// FieldTypeByUUID returns the field type with the given uuid.
func (f *FieldType) FieldTypeByUUID(ctx context.Context, uuid string) (*model.FieldType, error) {
	slogctx.Debug(ctx, "FieldTypeByUUID called", "uuid", uuid)

	return getFieldTypeByUUID(ctx, f.repo, uuid)
}

// FieldTypes lists field types page by page.
// The returned token is empty when there are no further pages.
func (f *FieldType) FieldTypes(ctx context.Context, includeRetired bool, limit int32, token string) ([]model.FieldType, string, error) {
	slogctx.Debug(ctx, "FieldTypes called", "includeRetired", includeRetired, "limit", limit)

	query := repository.NewQuery(&model.FieldType{})
	if !includeRetired {
		query.Where(repository.NewCompositeKey().Where(repository.RetiredField, false))
	}

	err := query.ApplyPagination(limit, token)
	if err != nil {
		return nil, "", ErrorWithParams(ErrInvalidPageToken, "err", err.Error())
	}

	var fieldTypes []model.FieldType
	if err := f.repo.List(ctx, &fieldTypes, *query); err != nil {
		return nil, "", ErrFieldTypeSelect
	}

	if len(fieldTypes) == 0 {
		return fieldTypes, "", nil
	}

	lastItem := fieldTypes[len(fieldTypes)-1]

	nextPageToken, err := query.NextPageToken(len(fieldTypes), lastItem.CreatedAt, &lastItem)
	if err != nil {
		return nil, "", err
	}

	return fieldTypes, nextPageToken, nil
}

// ValidateFieldType runs the field type validation without saving.
// Findings are reported in the returned errors; the error result is set
// only when the validation could not run.
func (f *FieldType) ValidateFieldType(ctx context.Context, fieldType *model.FieldType) (*validation.Errors, error) {
	slogctx.Debug(ctx, "ValidateFieldType called")

	return f.validate(ctx, f.repo, fieldType)
}

// SaveFieldType validates the field type, including the configured
// constraints, and creates or updates it.
// If the validation has findings, the returned error is a *validation.Error.
func (f *FieldType) SaveFieldType(ctx context.Context, fieldType *model.FieldType) error {
	slogctx.Debug(ctx, "SaveFieldType called")

	ctxTimeout, cancel := context.WithTimeout(ctx, defaultTranTimeout)
	defer cancel()

	created := false

	err := f.repo.Transaction(ctxTimeout, func(ctx context.Context, r repository.Repository) error {
		if err := f.checkFieldType(ctx, r, fieldType); err != nil {
			return err
		}

		if fieldType.IsNew() {
			if err := r.Create(ctx, fieldType); err != nil {
				return mapRepositoryError(err, ErrFieldTypeCreate)
			}

			created = true

			return nil
		}

		isUpdated, err := r.Update(ctx, fieldType)
		if err != nil {
			return mapRepositoryError(err, ErrFieldTypeUpdate)
		}

		if !isUpdated {
			return ErrFieldTypeNotFound
		}

		return nil
	})
	if err != nil {
		return mapError(err)
	}

	f.meters.handleFieldTypeSaved(ctx, created)

	return nil
}

// RetireFieldType retires the field type with the given uuid.
// Its name becomes available for other field types.
func (f *FieldType) RetireFieldType(ctx context.Context, uuid, retiredBy, reason string) error {
	slogctx.Debug(ctx, "RetireFieldType called", "uuid", uuid, "retiredBy", retiredBy)

	if strings.TrimSpace(reason) == "" {
		return ErrRetireReasonIsEmpty
	}

	err := f.patchFieldType(ctx, patchFieldTypeParams{
		uuid: uuid,
		validateFunc: func(_ context.Context, _ repository.Repository, fieldType *model.FieldType) error {
			if fieldType.Retired {
				return ErrFieldTypeAlreadyRetired
			}
			return nil
		},
		updateFunc: func(fieldType *model.FieldType) {
			fieldType.Retire(retiredBy, reason)
		},
	})
	if err != nil {
		return err
	}

	f.meters.handleFieldTypeRetired(ctx)

	return nil
}

// UnretireFieldType brings a retired field type back into use.
// It fails with a *validation.Error if another field type holds its name meanwhile.
func (f *FieldType) UnretireFieldType(ctx context.Context, uuid string) error {
	slogctx.Debug(ctx, "UnretireFieldType called", "uuid", uuid)

	return f.patchFieldType(ctx, patchFieldTypeParams{
		uuid: uuid,
		validateFunc: func(ctx context.Context, r repository.Repository, fieldType *model.FieldType) error {
			if !fieldType.Retired {
				return ErrFieldTypeNotRetired
			}
			return f.checkFieldType(ctx, r, fieldType)
		},
		updateFunc: func(fieldType *model.FieldType) {
			fieldType.Unretire()
		},
	})
}

// PurgeFieldType deletes the field type with the given uuid.
func (f *FieldType) PurgeFieldType(ctx context.Context, uuid string) error {
	slogctx.Debug(ctx, "PurgeFieldType called", "uuid", uuid)

	ctxTimeout, cancel := context.WithTimeout(ctx, defaultTranTimeout)
	defer cancel()

	err := f.repo.Transaction(ctxTimeout, func(ctx context.Context, r repository.Repository) error {
		fieldType, err := getFieldTypeByUUID(ctx, r, uuid)
		if err != nil {
			return err
		}

		isDeleted, err := r.Delete(ctx, fieldType)
		if err != nil {
			return ErrFieldTypeDelete
		}

		if !isDeleted {
			return ErrFieldTypeNotFound
		}

		return nil
	})

	return mapError(err)
}

func (f *FieldType) patchFieldType(ctx context.Context, params patchFieldTypeParams) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, defaultTranTimeout)
	defer cancel()

	err := f.repo.Transaction(ctxTimeout, func(ctx context.Context, r repository.Repository) error {
		fieldType, err := getFieldTypeByUUID(ctx, r, params.uuid)
		if err != nil {
			return err
		}

		if params.validateFunc != nil {
			err = params.validateFunc(ctx, r, fieldType)
			if err != nil {
				return err
			}
		}

		params.updateFunc(fieldType)

		isUpdated, err := r.Update(ctx, fieldType)
		if err != nil {
			return ErrFieldTypeUpdate
		}

		if !isUpdated {
			return ErrFieldTypeNotFound
		}

		return nil
	})

	return mapError(err)
}

// checkFieldType runs the field type validation and turns findings into an error.
func (f *FieldType) checkFieldType(ctx context.Context, r repository.Repository, fieldType *model.FieldType) error {
	errs, err := f.validate(ctx, r, fieldType)
	if err != nil {
		return err
	}

	if errs.HasErrors() {
		f.meters.handleValidationRejected(ctx, errs.Codes())
		return errs.Err()
	}

	return nil
}

func (f *FieldType) validate(ctx context.Context, r repository.Repository, fieldType *model.FieldType) (*validation.Errors, error) {
	errs := validation.NewErrors(fieldtype.ObjectName)

	validator := fieldtype.NewValidator(repositoryFinder{repo: r}, f.lengths)

	err := validator.Validate(ctx, fieldType, errs)
	if err != nil {
		slogctx.Error(ctx, "field type validation could not run", "error", err)
		return nil, ErrValidationLookup
	}

	// configured constraints only apply to an otherwise valid field type
	if errs.HasErrors() {
		return errs, nil
	}

	if err := checkConstraints(f.validation, fieldType, errs); err != nil {
		return nil, err
	}

	return errs, nil
}
