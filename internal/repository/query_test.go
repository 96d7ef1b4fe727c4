package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/repository"
)

func TestQuery(t *testing.T) {
	t.Run("should collect composite keys and orders", func(t *testing.T) {
		// when
		query := repository.NewQuery(&model.FieldType{}).
			Where(repository.NewCompositeKey().Where(repository.NameField, "Text")).
			Where(repository.NewCompositeKey().Where(repository.RetiredField, false)).
			OrderBy(repository.RetiredField, false).
			SetLimit(1)

		// then
		assert.Equal(t, []repository.CompositeKey{
			{repository.NameField: "Text"},
			{repository.RetiredField: false},
		}, query.CompositeKeys)
		assert.Equal(t, []repository.Order{{Field: repository.RetiredField}}, query.Orders)
		assert.Equal(t, 1, query.Limit)
	})

	t.Run("should apply the default limit", func(t *testing.T) {
		// given
		query := repository.NewQuery(&model.FieldType{})

		// when
		err := query.ApplyPagination(0, "")

		// then
		assert.NoError(t, err)
		assert.Equal(t, repository.DefaultPaginationLimit, query.Limit)
		assert.Equal(t, []repository.QueryField{repository.IDField}, query.Paginator.OrderFields)
		assert.Nil(t, query.Paginator.Token)
	})

	t.Run("should cap the limit", func(t *testing.T) {
		// given
		query := repository.NewQuery(&model.FieldType{})

		// when
		err := query.ApplyPagination(100000, "")

		// then
		assert.NoError(t, err)
		assert.Equal(t, 1000, query.Limit)
	})

	t.Run("should resume after the token of the same filter", func(t *testing.T) {
		// given
		first := repository.NewQuery(&model.FieldType{}).
			Where(repository.NewCompositeKey().Where(repository.RetiredField, false))
		require.NoError(t, first.ApplyPagination(1, ""))

		last := &model.FieldType{ID: uuid.New()}
		token, err := first.NextPageToken(1, time.Now(), last)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		next := repository.NewQuery(&model.FieldType{}).
			Where(repository.NewCompositeKey().Where(repository.RetiredField, false))

		// when
		err = next.ApplyPagination(1, token)

		// then
		require.NoError(t, err)
		require.NotNil(t, next.Paginator.Token)
		assert.Equal(t, last.ID.String(), next.Paginator.Token.LastKey[repository.IDField])
	})

	t.Run("should not issue a token for a partial page", func(t *testing.T) {
		// given
		query := repository.NewQuery(&model.FieldType{})
		require.NoError(t, query.ApplyPagination(10, ""))

		// when
		token, err := query.NextPageToken(3, time.Now(), &model.FieldType{ID: uuid.New()})

		// then
		assert.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("should reject the token of another filter", func(t *testing.T) {
		// given
		all := repository.NewQuery(&model.FieldType{})
		require.NoError(t, all.ApplyPagination(1, ""))
		token, err := all.NextPageToken(1, time.Now(), &model.FieldType{ID: uuid.New()})
		require.NoError(t, err)

		active := repository.NewQuery(&model.FieldType{}).
			Where(repository.NewCompositeKey().Where(repository.RetiredField, false))

		// when
		err = active.ApplyPagination(1, token)

		// then
		assert.ErrorIs(t, err, repository.ErrPageTokenScope)
	})

	t.Run("should fail for an invalid page token", func(t *testing.T) {
		// given
		query := repository.NewQuery(&model.FieldType{})

		// when
		err := query.ApplyPagination(10, "invalid-token")

		// then
		assert.ErrorIs(t, err, repository.ErrInvalidPageToken)
	})
}
