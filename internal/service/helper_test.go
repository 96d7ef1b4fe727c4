package service_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/santhoseks/openmrs-core/internal/config"
	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/repository/sql"
	"github.com/santhoseks/openmrs-core/internal/service"
	"github.com/santhoseks/openmrs-core/internal/validation"
)

type fixture struct {
	db     *gorm.DB
	svc    *service.FieldType
	reader *sdkmetric.ManualReader
}

// newTestDB opens a private in-memory sqlite database with the field type schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sql.StartDB(t.Context(), config.DB{
		Driver: config.DriverSQLite,
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func newFixture(t *testing.T, fields ...validation.ConfigField) fixture {
	t.Helper()

	db := newTestDB(t)

	constraints, err := validation.New(fields...)
	require.NoError(t, err)
	constraints.AddModels(&model.FieldType{})

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	meters, err := service.NewMeters(t.Context(), &commoncfg.Application{}, provider.Meter("test"), db)
	require.NoError(t, err)

	svc := service.NewFieldType(sql.NewRepository(db), validation.NewFieldLengths(), constraints, meters)

	return fixture{
		db:     db,
		svc:    svc,
		reader: reader,
	}
}

// seed stores field types directly, bypassing validation.
func (f fixture) seed(t *testing.T, fieldTypes ...*model.FieldType) {
	t.Helper()

	for _, ft := range fieldTypes {
		require.NoError(t, f.db.Create(ft).Error)
	}
}

func retired(ft *model.FieldType) *model.FieldType {
	ft.Retire("admin", "no longer used")
	return ft
}
