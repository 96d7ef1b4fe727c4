package sql

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/santhoseks/openmrs-core/internal/repository"
)

const (
	pqUniqueViolationErrCode = "23505" // see https://www.postgresql.org/docs/14/errcodes-appendix.html
)

// ResourceRepository represents the repository for managing Resource data.
type ResourceRepository struct {
	db *gorm.DB
}

var _ repository.Repository = &ResourceRepository{}

// NewRepository creates and returns a new instance of ResourceRepository.
func NewRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{
		db: db,
	}
}

// Create adds meta information and stores a Resource.
func (r ResourceRepository) Create(ctx context.Context, resource repository.Resource) error {
	result := r.db.WithContext(ctx).Create(resource)
	if result.Error != nil {
		slog.Error("error creating resource", slog.Any("err", result.Error))
		return mapUniqueViolation(result.Error)
	}

	return nil
}

// List retrieves records from the database based on the provided query parameters and model.
func (r ResourceRepository) List(ctx context.Context, result any, query repository.Query) error {
	dbQuery := applyQuery(r.db.WithContext(ctx).Model(result), query)

	err := dbQuery.Find(result).Error
	if err != nil {
		slog.Error("error listing resources", slog.Any("err", err))
		return err
	}

	return nil
}

// Delete removes the Resource.
//
// It returns true if a record was deleted successfully,
// false if there was no record to delete,
// and error if there was an error during the deletion.
func (r ResourceRepository) Delete(ctx context.Context, resource repository.Resource) (bool, error) {
	result := r.db.WithContext(ctx).Delete(resource)
	if result.Error != nil {
		slog.Error("error deleting resource", slog.Any("err", result.Error))
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Find fill given Resource with data, if found.
// The non-zero fields of the given Resource are used as query data.
func (r ResourceRepository) Find(ctx context.Context, resource repository.Resource) (bool, error) {
	result := r.db.WithContext(ctx).Where(resource).Limit(1).Find(resource)
	if result.Error != nil {
		slog.Error("error finding a resource", slog.Any("err", result.Error))
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// First fills result with the first record matching the query,
// honouring the query's Orders.
func (r ResourceRepository) First(ctx context.Context, result repository.Resource, query repository.Query) (bool, error) {
	query.Limit = 1

	res := applyQuery(r.db.WithContext(ctx).Model(result), query).Find(result)
	if res.Error != nil {
		slog.Error("error finding a resource", slog.Any("err", res.Error))
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

// Update writes every column of the resource except created_at,
// zero values included, using the primary key as the where condition.
//
// It returns true if a record was updated.
func (r ResourceRepository) Update(ctx context.Context, resource repository.Resource) (bool, error) {
	db := r.db.WithContext(ctx).Model(resource).Select("*").Omit(repository.CreatedAtField).Updates(resource)
	if db.Error != nil {
		slog.Error("error updating resource", slog.Any("err", db.Error))
		return false, mapUniqueViolation(db.Error)
	}

	return db.RowsAffected > 0, nil
}

// Count returns the number of records matching the query.
func (r ResourceRepository) Count(ctx context.Context, resource repository.Resource, query repository.Query) (int64, error) {
	db := r.db.WithContext(ctx).Model(resource)
	if len(query.CompositeKeys) > 0 {
		db = db.Where(whereCompositeKeys(db, query.CompositeKeys))
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		slog.Error("error counting resources", slog.Any("err", err))
		return 0, err
	}

	return count, nil
}

// Transaction will give transaction locking on particular rows.
// txFunc is a type TransactionFunc where we can define the transactional logic.
// if txFunc return no error then transaction is committed,
// else if txFunc return error then transaction is rolled back.
// Note: please dont use Goroutines inside the txFunc as this might lead to panic.
func (r ResourceRepository) Transaction(ctx context.Context, txFunc repository.TransactionFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		errorChan := make(chan error, 1)

		go func() {
			errorChan <- txFunc(ctx, NewRepository(tx.Clauses(clause.Locking{Strength: "UPDATE"})))
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errorChan:
			return err
		}
	})
}

func mapUniqueViolation(err error) error {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pqUniqueViolationErrCode {
		return &repository.UniqueConstraintError{
			Detail: pgError.Detail,
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &repository.UniqueConstraintError{
			Detail: err.Error(),
		}
	}

	return err
}

// applyQuery applies the query to the database.
func applyQuery(db *gorm.DB, query repository.Query) *gorm.DB {
	if len(query.CompositeKeys) > 0 {
		db = db.Where(whereCompositeKeys(db, query.CompositeKeys))
	}

	for _, o := range query.Orders {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Field}, Desc: o.Desc})
	}

	if query.Limit <= 0 {
		query.Limit = repository.DefaultPaginationLimit
	}

	return handlePagination(query.Paginator, db).Limit(query.Limit)
}

// whereCompositeKeys ORs the composite keys together.
func whereCompositeKeys(db *gorm.DB, compositeKeys []repository.CompositeKey) *gorm.DB {
	baseQuery := db.Session(&gorm.Session{NewDB: true})

	for i, ck := range compositeKeys {
		tx := handleCompositeKey(db, ck)
		if i == 0 {
			baseQuery = baseQuery.Where(tx)
			continue
		}

		baseQuery = baseQuery.Or(tx)
	}

	return baseQuery
}

// handleCompositeKey applies the composite key to the query.
func handleCompositeKey(db *gorm.DB, compositeKey repository.CompositeKey) *gorm.DB {
	tx := db.Session(&gorm.Session{NewDB: true})

	for _, field := range slices.Sorted(maps.Keys(compositeKey)) {
		tx = handleQueryField(tx, field, compositeKey[field])
	}

	return tx
}

// handleQueryField applies the query field to the query.
func handleQueryField(tx *gorm.DB, field repository.QueryField, value any) *gorm.DB {
	switch value {
	case repository.NotEmpty:
		return tx.Where(field+" IS NOT NULL").Where(field+" != ?", "")
	case repository.Empty:
		return tx.Where(field+" IS NULL OR "+field+" = ?", "")
	}

	if _, ok := value.(driver.Valuer); ok {
		return tx.Where(field+" = ?", value)
	}

	switch reflect.ValueOf(value).Kind() { //nolint:exhaustive
	case reflect.Slice, reflect.Array:
		if _, ok := value.([]byte); ok {
			return tx.Where(field+" = ?", value)
		}
		return tx.Where(field+" IN ?", value)
	default:
		return tx.Where(field+" = ?", value)
	}
}

// handlePagination applies pagination to the query.
func handlePagination(paginator repository.Paginator, db *gorm.DB) *gorm.DB {
	orderBy := []string{repository.CreatedAtField + " DESC"}
	for _, val := range paginator.OrderFields {
		orderBy = append(orderBy, val+" DESC")
	}

	db = db.Order(strings.Join(orderBy, ", "))

	if paginator.Token == nil {
		return db
	}

	token := paginator.Token
	fields := []repository.QueryField{repository.CreatedAtField}

	args := make([]any, 0, len(token.LastKey)+1)
	for field := range token.LastKey {
		fields = append(fields, field)
	}

	slices.Sort(fields)
	placeholderSlice := make([]string, len(fields))

	for i, field := range fields {
		placeholderSlice[i] = "?"

		if field == repository.CreatedAtField {
			args = append(args, token.LastCreatedAt)
			continue
		}

		args = append(args, token.LastKey[field])
	}

	condition := fmt.Sprintf("(%s) < (%s)", strings.Join(fields, ", "), strings.Join(placeholderSlice, ", "))

	return db.Where(condition, args...)
}
