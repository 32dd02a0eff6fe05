// Package metrics owns the service's Prometheus registry and exposes it
// over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric registered by the service.
const Namespace = "counsel"

// System provides a registry for domain collectors and the scrape handler.
type System interface {
	Registerer() prometheus.Registerer
	Gatherer() prometheus.Gatherer
	Handler() http.Handler
}

type metrics struct {
	registry *prometheus.Registry
}

// New creates a registry preloaded with Go runtime and process collectors.
func New() System {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: Namespace}),
	)
	return &metrics{registry: registry}
}

func (m *metrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
