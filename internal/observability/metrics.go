package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	Registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	historyEntries  *prometheus.CounterVec
	queueSelections *prometheus.CounterVec
	queueAvailable  prometheus.Histogram
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callcenter_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "callcenter_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callcenter_http_errors_total",
			Help: "Error responses by route, method and error code.",
		}, []string{"path", "method", "code"}),
		historyEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callcenter_history_entries_total",
			Help: "History entries appended by entity type and action.",
		}, []string{"entity_type", "action"}),
		queueSelections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callcenter_queue_selections_total",
			Help: "Next-contact selections by outcome.",
		}, []string{"outcome"}),
		queueAvailable: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "callcenter_queue_available_contacts",
			Help:    "Eligible contacts at selection time.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordHistoryEntry counts an appended history entry.
func (m *Metrics) RecordHistoryEntry(entityType, action string) {
	if m == nil {
		return
	}
	m.historyEntries.WithLabelValues(entityType, action).Inc()
}

// RecordQueueSelection counts a selection and the size of the eligible set.
func (m *Metrics) RecordQueueSelection(found bool, available int) {
	if m == nil {
		return
	}
	outcome := "empty"
	if found {
		outcome = "found"
	}
	m.queueSelections.WithLabelValues(outcome).Inc()
	m.queueAvailable.Observe(float64(available))
}
