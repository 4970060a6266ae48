// Package telemetry exposes prometheus metrics for the session controller.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "poa"

// Metrics holds every collector on a private registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	loadsCommitted  *prometheus.CounterVec
	loadsDiscarded  *prometheus.CounterVec
	loadFailures    *prometheus.CounterVec
	intents         *prometheus.CounterVec
	voiceSessions   *prometheus.CounterVec
	navigations     *prometheus.CounterVec
	authTransitions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with Go runtime metrics
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Requests sent to the POA backend, by endpoint and final status (0 = no response).",
	}, []string{"endpoint", "status"})

	m.apiDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Backend request latency including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	m.loadsCommitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "commits_total",
		Help:      "Load results written to the session, by operation.",
	}, []string{"operation"})

	m.loadsDiscarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "stale_discards_total",
		Help:      "Load results dropped because a newer request superseded them.",
	}, []string{"operation"})

	m.loadFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "failures_total",
		Help:      "Loads that failed, by operation and error code.",
	}, []string{"operation", "code"})

	m.intents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "commands",
		Name:      "intents_total",
		Help:      "Matched command intents, by intent.",
	}, []string{"intent"})

	m.voiceSessions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "voice",
		Name:      "sessions_total",
		Help:      "Finished voice sessions, by outcome.",
	}, []string{"outcome"})

	m.navigations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "navigator",
		Name:      "navigations_total",
		Help:      "Accepted view changes, by target view.",
	}, []string{"view"})

	m.authTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "transitions_total",
		Help:      "Auth gate transitions, by resulting status.",
	}, []string{"status"})

	m.registry.MustRegister(
		m.apiRequests,
		m.apiDuration,
		m.loadsCommitted,
		m.loadsDiscarded,
		m.loadFailures,
		m.intents,
		m.voiceSessions,
		m.navigations,
		m.authTransitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the text exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one backend call
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	m.apiRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) LoadCommitted(operation string) {
	m.loadsCommitted.WithLabelValues(operation).Inc()
}

func (m *Metrics) LoadDiscarded(operation string) {
	m.loadsDiscarded.WithLabelValues(operation).Inc()
}

func (m *Metrics) LoadFailed(operation, code string) {
	m.loadFailures.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) IntentMatched(intent string) {
	m.intents.WithLabelValues(intent).Inc()
}

func (m *Metrics) VoiceSessionEnded(outcome string) {
	m.voiceSessions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Navigated(view string) {
	m.navigations.WithLabelValues(view).Inc()
}

func (m *Metrics) AuthTransition(status string) {
	m.authTransitions.WithLabelValues(status).Inc()
}
