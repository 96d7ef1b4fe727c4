package interceptor

import (
	"context"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc/status"
)

const ErrDomainMetrics = "metrics"

func InitMeters(ctx context.Context, cfgApp *commoncfg.Application, meter metric.Meter) (*Meters, error) {
	var err error

	commandCounts, err := meter.Int64Counter(
		"command.count",
		metric.WithDescription("Counter of commands, partitioned by operation and status."),
	)
	if err != nil {
		return nil, oops.In(ErrDomainMetrics).
			WithContext(ctx).
			Wrapf(err, "creating command_count meter")
	}

	commandDurations, err := meter.Float64Histogram(
		"command.duration",
		metric.WithDescription("End to end command duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, oops.In(ErrDomainMetrics).
			WithContext(ctx).
			Wrapf(err, "creating command_duration meter")
	}

	return &Meters{
		application:      cfgApp,
		commandCounts:    commandCounts,
		commandDurations: commandDurations,
	}, nil
}

// Meters collects the count and duration of commands.
type Meters struct {
	application      *commoncfg.Application
	commandCounts    metric.Int64Counter
	commandDurations metric.Float64Histogram
}

// Intercept tracks the duration and count of the handler's runs.
// The status attribute is the gRPC code of the returned error.
func (m *Meters) Intercept(operation string, handler Handler) Handler {
	return func(ctx context.Context) error {
		startTime := time.Now()
		err := handler(ctx)
		elapsedTime := float64(time.Since(startTime)) / float64(time.Millisecond)

		statusCode := status.Code(err).String()

		attrs := metric.WithAttributes(
			otlp.CreateAttributesFrom(*m.application,
				attribute.String(commoncfg.AttrOperation, operation),
				attribute.String("status", statusCode),
			)...,
		)
		m.commandDurations.Record(ctx, elapsedTime, attrs)
		m.commandCounts.Add(ctx, 1, attrs)

		return err
	}
}
