package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/v1/contacts", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/v1/contacts", "GET", 200, 20*time.Millisecond)
	m.RecordError("/api/v1/contacts", "POST", "VALIDATION_FAILED")
	m.RecordHistoryEntry("contacts", "create")
	m.RecordQueueSelection(false, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/contacts", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/v1/contacts", "POST", "VALIDATION_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.historyEntries.WithLabelValues("contacts", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueSelections.WithLabelValues("empty")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordQueueSelection(true, 3)
	})
}
