package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/aevon-lab/event-worker/internal/core/config"
)

func TestInitTracing_Disabled(t *testing.T) {
	tracer, shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "process_message")
	require.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_Enabled(t *testing.T) {
	// The gRPC exporter connects lazily, so no collector is needed here.
	tracer, shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:        true,
		Endpoint:       "127.0.0.1:4317",
		Insecure:       true,
		ServiceName:    "event-worker",
		ServiceVersion: "test",
	})
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "process_message")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestNewResource_CarriesServiceIdentity(t *testing.T) {
	res, err := newResource(config.TracingConfig{ServiceName: "event-worker", ServiceVersion: "1.2.3"})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "event-worker", attrs[string(semconv.ServiceNameKey)])
	require.Equal(t, "1.2.3", attrs[string(semconv.ServiceVersionKey)])
}
