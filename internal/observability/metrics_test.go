package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/tickets/stats", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/tickets/stats", "GET", 200, 7*time.Millisecond)
	m.RecordError("/tickets/classify", "POST", "VALIDATION_FAILED")
	m.RecordClassification("anthropic", "config_missing")
	m.SetTicketGauges(3, 2, 1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/tickets/stats", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/tickets/classify", "POST", "VALIDATION_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues("anthropic", "config_missing")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tickets.WithLabelValues("total")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tickets.WithLabelValues("open")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.avgPerDay))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordClassification("p", "o")
		m.SetTicketGauges(1, 1, 1)
	})
	assert.Nil(t, m.Registry())
}
