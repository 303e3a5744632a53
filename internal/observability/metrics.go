// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics installs a meter provider backed by a Prometheus exporter.
// It returns the /metrics handler and a shutdown function.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// ActiveJobCounter reports the number of jobs that are not deleted.
type ActiveJobCounter interface {
	CountActiveJobs(ctx context.Context) (int64, error)
}

// RegisterActiveJobsGauge registers fieldops.jobs.active, which queries the
// store only when scraped. A failed count is logged and skipped so a scrape
// never fails because of the database.
func RegisterActiveJobsGauge(meter otelmetric.Meter, jobs ActiveJobCounter, logger *slog.Logger) error {
	_, err := meter.Int64ObservableGauge("fieldops.jobs.active",
		otelmetric.WithDescription("Jobs not deleted, any status"),
		otelmetric.WithInt64Callback(func(ctx context.Context, obs otelmetric.Int64Observer) error {
			count, err := jobs.CountActiveJobs(ctx)
			if err != nil {
				logger.Warn("failed to count active jobs", "error", err)
				return nil
			}
			obs.Observe(count)
			return nil
		}),
	)
	return err
}
