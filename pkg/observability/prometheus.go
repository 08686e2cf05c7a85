package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// PrometheusMeter builds a MeterProvider backed by a Prometheus exporter and
// an [http.Handler] serving its /metrics scrape endpoint — an alternative to
// the OTLP push path in Init, for a campaign run scraped directly instead of
// exported to a collector. Each call creates an independent registry to
// avoid collector conflicts across repeated runs.
func PrometheusMeter(res *resource.Resource) (metric.Meter, http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	return mp.Meter(meterName), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
