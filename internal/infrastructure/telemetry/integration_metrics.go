package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a nil meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// IntegrationMetrics counts mapping saves and times CRM describe calls.
type IntegrationMetrics struct {
	mappingSaves    *Counter
	describeCalls   *Counter
	describeLatency *Histogram
}

// NewIntegrationMetrics registers the integration instruments on meter.
func NewIntegrationMetrics(meter metric.Meter) (*IntegrationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	saves, err := NewCounter(meter, "crm_mapping_saves_total", "Mapping create and update attempts", "{save}")
	if err != nil {
		return nil, err
	}
	calls, err := NewCounter(meter, "crm_describe_calls_total", "Salesforce describe calls", "{call}")
	if err != nil {
		return nil, err
	}
	latency, err := NewHistogram(meter, "crm_describe_duration_seconds", "Salesforce describe latency", "s",
		0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10)
	if err != nil {
		return nil, err
	}
	return &IntegrationMetrics{mappingSaves: saves, describeCalls: calls, describeLatency: latency}, nil
}

// RecordMappingSave counts one mapping save attempt.
func (m *IntegrationMetrics) RecordMappingSave(ctx context.Context, rt integration.RecordType, operation string, err error) {
	m.mappingSaves.Inc(ctx,
		attribute.String("record_type", rt.String()),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome(err)),
	)
}

// RecordDescribe counts one describe call and its latency.
func (m *IntegrationMetrics) RecordDescribe(ctx context.Context, sobject string, took time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("sobject", sobject),
		attribute.String("outcome", outcome(err)),
	}
	m.describeCalls.Inc(ctx, attrs...)
	m.describeLatency.RecordDuration(ctx, took, attrs...)
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
