package observability

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const meterName = "timefold"

// Telemetry holds the initialized metric provider and, when metrics are
// enabled, the Prometheus registry the instruments export through.
type Telemetry struct {
	// Meter is the named meter for creating instruments.
	Meter metric.Meter

	// Registry is non-nil when metrics are enabled and can be served
	// with promhttp.
	Registry *prometheus.Registry

	// Shutdown flushes pending telemetry. Must be called before exit.
	Shutdown func(ctx context.Context) error
}

// InitTelemetry sets up the OTel meter backed by a Prometheus exporter.
// With enabled false it returns no-op instruments with zero overhead.
func InitTelemetry(serviceName, serviceVersion string, enabled bool) (Telemetry, error) {
	if !enabled {
		return Telemetry{
			Meter:    noopmetric.NewMeterProvider().Meter(meterName),
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return Telemetry{}, fmt.Errorf("build otel resource: %w", err)
	}

	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return Telemetry{}, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	return Telemetry{
		Meter:    mp.Meter(meterName),
		Registry: registry,
		Shutdown: mp.Shutdown,
	}, nil
}

// WriteMetricsText gathers the registry and writes every metric family
// to w in the Prometheus text exposition format. Short-lived commands
// use it to dump their instruments on exit instead of serving a
// scrape endpoint.
func WriteMetricsText(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))

	for _, family := range families {
		err = encoder.Encode(family)
		if err != nil {
			return fmt.Errorf("encode metric family %s: %w", family.GetName(), err)
		}
	}

	return nil
}
