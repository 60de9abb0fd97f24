package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors, registered on an injected registry.
type Metrics struct {
	registry *prometheus.Registry

	// Activations counts finished attempts by final state
	Activations *prometheus.CounterVec
	// StageDuration tracks per-stage wall time
	StageDuration *prometheus.HistogramVec
	// ProviderCalls counts generation calls by provider and outcome
	ProviderCalls *prometheus.CounterVec
	// AuditRecords counts log records by write result
	AuditRecords *prometheus.CounterVec
}

// New registers every collector on reg. A nil registry gets a fresh one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Activations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_activation_activations_total",
				Help: "Activation attempts by final state",
			},
			[]string{"state"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "content_activation_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		ProviderCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_activation_provider_calls_total",
				Help: "Generation provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		AuditRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_activation_audit_records_total",
				Help: "Audit records by write result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) Activation(state string) {
	m.Activations.WithLabelValues(state).Inc()
}

func (m *Metrics) Stage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ProviderCall(provider, outcome string) {
	m.ProviderCalls.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) AuditRecord(result string) {
	m.AuditRecords.WithLabelValues(result).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
