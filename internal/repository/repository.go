// Package repository defines storage access for registry records.
package repository

import (
	"context"
)

// TransactionFunc runs inside Repository.Transaction with a repository bound to the transaction.
type TransactionFunc func(context.Context, Repository) error

// Repository stores and loads Resources.
//
// Find, Update and Delete report with their bool result whether a row was
// matched; a missing row is not an error.
type Repository interface {
	Create(ctx context.Context, resource Resource) error
	Find(ctx context.Context, resource Resource) (bool, error)
	First(ctx context.Context, result Resource, query Query) (bool, error)
	List(ctx context.Context, result any, query Query) error
	Count(ctx context.Context, resource Resource, query Query) (int64, error)
	Update(ctx context.Context, resource Resource) (bool, error)
	Delete(ctx context.Context, resource Resource) (bool, error)
	Transaction(ctx context.Context, txFunc TransactionFunc) error
}

// Resource is a persisted record.
type Resource interface {
	TableName() string
	PaginationKey() map[QueryField]any
}

// UniqueConstraintError reports a write that collided with a unique index.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
