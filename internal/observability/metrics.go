package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "ticket_triage"

// Metrics holds the service's prometheus instruments on a private registry.
// All record methods are safe on a nil receiver.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	errors          *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	classifications *prometheus.CounterVec
	tickets         *prometheus.GaugeVec
	avgPerDay       prometheus.Gauge
}

// NewMetrics registers all instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, labeled by route, method and status",
		}, []string{"path", "method", "status"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP requests that ended in a domain error, labeled by error code",
		}, []string{"path", "method", "code"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "classifier",
			Name:      "results_total",
			Help:      "Classification attempts, labeled by provider and outcome",
		}, []string{"provider", "outcome"}),
		tickets: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tickets",
			Name:      "count",
			Help:      "Ticket counts from the latest stats refresh",
		}, []string{"scope"}),
		avgPerDay: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tickets",
			Name:      "avg_per_day",
			Help:      "Average tickets per day from the latest stats refresh",
		}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordClassification counts one classification outcome.
func (m *Metrics) RecordClassification(provider, outcome string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(provider, outcome).Inc()
}

// SetTicketGauges publishes the latest aggregate counts.
func (m *Metrics) SetTicketGauges(total, open int64, avgPerDay float64) {
	if m == nil {
		return
	}
	m.tickets.WithLabelValues("total").Set(float64(total))
	m.tickets.WithLabelValues("open").Set(float64(open))
	m.avgPerDay.Set(avgPerDay)
}
