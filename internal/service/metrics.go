package service

import (
	"context"
	"strconv"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"

	"github.com/santhoseks/openmrs-core/internal/model"
)

const (
	AttrCode         = "code"
	AttrRetired      = "retired"
	ErrDomainMetrics = "metrics"
)

func InitMeters(ctx context.Context, cfgApp *commoncfg.Application, db *gorm.DB) (*Meters, error) {
	meter := otel.Meter(
		cfgApp.Name,
		metric.WithInstrumentationVersion(otel.Version()),
		metric.WithInstrumentationAttributes(otlp.CreateAttributesFrom(*cfgApp)...),
	)

	return NewMeters(ctx, cfgApp, meter, db)
}

// NewMeters creates the field type meters on the given meter.
func NewMeters(ctx context.Context, cfgApp *commoncfg.Application, meter metric.Meter, db *gorm.DB) (*Meters, error) {
	savedCtr, err := createCounter(ctx, meter, "fieldtypes.saved", "Counter of saved field types, partitioned by creation")
	if err != nil {
		return nil, err
	}

	retiredCtr, err := createCounter(ctx, meter, "fieldtypes.retired", "Counter of retired field types")
	if err != nil {
		return nil, err
	}

	rejectedCtr, err := createCounter(ctx, meter, "fieldtypes.validation.rejected", "Counter of field type validation findings, partitioned by error code")
	if err != nil {
		return nil, err
	}

	err = createObservableGauge(ctx, meter, "fieldtypes.count", "Gauge of field types, partitioned by retired flag",
		func(ctx context.Context, observer metric.Int64Observer) error {
			return measureFieldTypes(ctx, observer, db)
		})
	if err != nil {
		return nil, err
	}

	return &Meters{
		application: cfgApp,
		savedCtr:    savedCtr,
		retiredCtr:  retiredCtr,
		rejectedCtr: rejectedCtr,
	}, nil
}

func createCounter(ctx context.Context, meter metric.Meter, name string, description string) (metric.Int64Counter, error) {
	ctr, err := meter.Int64Counter(
		name,
		metric.WithDescription(description),
	)
	if err != nil {
		return nil, oops.In(ErrDomainMetrics).
			WithContext(ctx).
			Wrapf(err, "creating %s meter", name)
	}

	return ctr, nil
}

func createObservableGauge(ctx context.Context, meter metric.Meter, name string, description string, callback metric.Int64Callback) error {
	_, err := meter.Int64ObservableGauge(
		name,
		metric.WithDescription(description),
		metric.WithInt64Callback(callback),
	)
	if err != nil {
		return oops.In(ErrDomainMetrics).
			WithContext(ctx).
			Wrapf(err, "creating %s meter", name)
	}

	return nil
}

func measureFieldTypes(ctx context.Context, observer metric.Int64Observer, db *gorm.DB) error {
	var fieldTypeStatus []struct {
		Retired bool
		Count   int64
	}

	err := db.WithContext(ctx).
		Model(&model.FieldType{}).
		Select("retired, count(*) as count").
		Group("retired").
		Scan(&fieldTypeStatus).Error
	if err != nil {
		return err
	}

	for _, status := range fieldTypeStatus {
		observer.Observe(status.Count, metric.WithAttributes(
			attribute.Bool(AttrRetired, status.Retired)))
	}

	return nil
}

type Meters struct {
	application *commoncfg.Application
	savedCtr    metric.Int64Counter
	retiredCtr  metric.Int64Counter
	rejectedCtr metric.Int64Counter
}

func (m *Meters) handleFieldTypeSaved(ctx context.Context, created bool) {
	m.handleCtrInc(ctx, m.savedCtr, attribute.String("created", strconv.FormatBool(created)))
}

func (m *Meters) handleFieldTypeRetired(ctx context.Context) {
	m.handleCtrInc(ctx, m.retiredCtr)
}

func (m *Meters) handleValidationRejected(ctx context.Context, codes []string) {
	for _, code := range codes {
		m.handleCtrInc(ctx, m.rejectedCtr, attribute.String(AttrCode, code))
	}
}

func (m *Meters) handleCtrInc(ctx context.Context, ctr metric.Int64Counter, kv ...attribute.KeyValue) {
	attrs := metric.WithAttributes(
		otlp.CreateAttributesFrom(*m.application, kv...)...,
	)

	ctr.Add(ctx, 1, attrs)
}
