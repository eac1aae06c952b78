// Package metrics wires the OpenTelemetry meter provider to a Prometheus
// registry and serves it on the diag router.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const ServiceName = "articlehub"

// Provider owns the meter provider and the registry it exports to.
type Provider struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
}

// New creates a provider exporting to its own registry and installs it as
// the global meter provider.
func New() (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return &Provider{registry: registry, provider: provider}, nil
}

func (p *Provider) Meter() metric.Meter {
	return p.provider.Meter(ServiceName)
}

// Handler serves the registry in the Prometheus text format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// DiagRouter mounts /metrics and /ping.
func (p *Provider) DiagRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/metrics", p.Handler().ServeHTTP)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	return r
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}
