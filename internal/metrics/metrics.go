package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mamacare-sync/internal/cache"
)

// Metrics of the sync layer, on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	dashboards    *prometheus.CounterVec
	changeEvents  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Name:      "cache_fetches_total",
			Help:      "Cache fetch completions by entity and result (applied, discarded, failed).",
		}, []string{"entity", "result"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Name:      "cache_invalidations_total",
			Help:      "Cache invalidations by entity.",
		}, []string{"entity"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Name:      "mutations_total",
			Help:      "Mutations by entity, operation and result.",
		}, []string{"entity", "op", "result"}),
		dashboards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Name:      "dashboard_publishes_total",
			Help:      "Dashboard cache writes by result.",
		}, []string{"result"}),
		changeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Name:      "change_events_total",
			Help:      "Consumed change events by source and result (applied, skipped, invalid).",
		}, []string{"source", "result"}),
	}
	m.registry.MustRegister(m.fetches, m.invalidations, m.mutations, m.dashboards, m.changeEvents)
	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) FetchApplied(key cache.Key) {
	m.fetches.WithLabelValues(string(key.Entity), "applied").Inc()
}

func (m *Metrics) FetchDiscarded(key cache.Key) {
	m.fetches.WithLabelValues(string(key.Entity), "discarded").Inc()
}

func (m *Metrics) FetchFailed(key cache.Key, _ error) {
	m.fetches.WithLabelValues(string(key.Entity), "failed").Inc()
}

func (m *Metrics) Invalidated(key cache.Key) {
	m.invalidations.WithLabelValues(string(key.Entity)).Inc()
}

func (m *Metrics) MutationResult(entity cache.EntityType, op string, err error) {
	m.mutations.WithLabelValues(string(entity), op, result(err)).Inc()
}

func (m *Metrics) DashboardPublished(err error) {
	m.dashboards.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ChangeEventConsumed(source, outcome string) {
	m.changeEvents.WithLabelValues(source, outcome).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
