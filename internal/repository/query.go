package repository

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	IDField        QueryField = "id"
	UUIDField      QueryField = "uuid"
	NameField      QueryField = "name"
	RetiredField   QueryField = "retired"
	CreatedAtField QueryField = "created_at"

	NotEmpty QueryFieldValue = "not_empty"
	Empty    QueryFieldValue = "empty"
)

// CompositeKey is a collection of QueryField and matching value that are collectively used to find a record.
type CompositeKey map[QueryField]any

// NewCompositeKey creates and returns a new CompositeKey.
func NewCompositeKey() CompositeKey {
	return make(CompositeKey)
}

// Where adds a condition to the CompositeKey.
func (c CompositeKey) Where(q QueryField, v any) CompositeKey {
	c[q] = v
	return c
}

// Order is a single ORDER BY term applied before pagination ordering.
type Order struct {
	Field QueryField
	Desc  bool
}

type Query struct {
	// the resource type the query is for
	resource Resource

	// Limit is a max size of returned elements.
	Limit int

	// Paginator handles pagination for list operations if not nil.
	Paginator Paginator

	// Orders are applied ahead of the pagination ordering.
	Orders []Order

	// CompositeKeys  form the where part of the Query
	CompositeKeys []CompositeKey
}

type QueryField = string

type QueryFieldValue = string

// NewQuery creates and returns a new empty query.
func NewQuery(resource Resource) *Query {
	return &Query{
		resource:      resource,
		CompositeKeys: make([]CompositeKey, 0),
	}
}

// Where adds the given CompositeKey to the query.
func (q *Query) Where(compositeKeys ...CompositeKey) *Query {
	q.CompositeKeys = append(q.CompositeKeys, compositeKeys...)
	return q
}

// OrderBy adds an ORDER BY term.
func (q *Query) OrderBy(field QueryField, desc bool) *Query {
	q.Orders = append(q.Orders, Order{Field: field, Desc: desc})
	return q
}

// SetLimit sets the limit value for the query.
func (q *Query) SetLimit(limit int) *Query {
	q.Limit = limit
	return q
}

// ApplyPagination sets the page size and resumes after token, if any.
// Call it once the filter is complete: the token is bound to it.
func (q *Query) ApplyPagination(limit int32, token string) error {
	q.Limit = DefaultPaginationLimit
	if limit > 0 {
		q.Limit = min(maxPaginationLimit, int(limit))
	}

	q.Paginator = Paginator{
		OrderFields: slices.Sorted(maps.Keys(q.resource.PaginationKey())),
	}

	if token == "" {
		return nil
	}

	pageToken, err := DecodePageToken(token, q.scope())
	if err != nil {
		slog.Error("failed to decode page token", slog.Any("err", err))
		return err
	}

	q.Paginator.Token = pageToken

	return nil
}

// NextPageToken returns the token continuing the listing after last,
// or an empty string if the page was not full.
func (q *Query) NextPageToken(count int, createdAt time.Time, last Resource) (string, error) {
	if count < q.Limit {
		return "", nil
	}

	return PageToken{
		Scope:         q.scope(),
		LastCreatedAt: createdAt,
		LastKey:       last.PaginationKey(),
	}.Encode()
}

// scope renders the filter as text, independent of map order.
func (q *Query) scope() string {
	keys := make([]string, 0, len(q.CompositeKeys))
	for _, ck := range q.CompositeKeys {
		terms := make([]string, 0, len(ck))
		for _, field := range slices.Sorted(maps.Keys(ck)) {
			terms = append(terms, fmt.Sprintf("%s=%v", field, ck[field]))
		}
		keys = append(keys, strings.Join(terms, "&"))
	}

	return strings.Join(keys, "|")
}
