package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "chatflow"

// Metrics holds the collectors of the service on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ConnectAttempts    *prometheus.CounterVec
	SaveVerdicts       *prometheus.CounterVec
	HistoryOperations  *prometheus.CounterVec
	SuggestionDuration *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ConnectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "connect_attempts_total",
				Help:      "Committed connection attempts by result",
			},
			[]string{"result"},
		),
		SaveVerdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "save_verdicts_total",
				Help:      "Save validation outcomes by verdict",
			},
			[]string{"verdict"},
		),
		HistoryOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "history_operations_total",
				Help:      "History records, undos and redos",
			},
			[]string{"op"},
		),
		SuggestionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "suggestion_duration_seconds",
				Help:      "Latency of suggestion provider calls",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 5, 10},
			},
			[]string{"status"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		m.ConnectAttempts,
		m.SaveVerdicts,
		m.HistoryOperations,
		m.SuggestionDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry exposes the private registry, e.g. for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns editor hooks that feed the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnConnect: func(e *domain.ConnectEvent) {
			result := "rejected"
			if e.Accepted {
				result = "accepted"
			}
			m.ConnectAttempts.WithLabelValues(result).Inc()
		},
		OnRecord: func(*domain.HistoryEvent) {
			m.HistoryOperations.WithLabelValues("record").Inc()
		},
		OnUndo: func(*domain.HistoryEvent) {
			m.HistoryOperations.WithLabelValues("undo").Inc()
		},
		OnRedo: func(*domain.HistoryEvent) {
			m.HistoryOperations.WithLabelValues("redo").Inc()
		},
		OnSave: func(e *domain.SaveEvent) {
			m.SaveVerdicts.WithLabelValues(string(e.Verdict)).Inc()
		},
		OnSuggest: func(e *domain.SuggestEvent) {
			status := "ok"
			if e.IsError {
				status = "error"
			}
			m.SuggestionDuration.WithLabelValues(status).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
