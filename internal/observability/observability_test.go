package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.EventsDropped.Inc()

	assert.InDelta(t, 1, counterValue(t, a.EventsDropped), 0)
	assert.InDelta(t, 0, counterValue(t, b.EventsDropped), 0)
}

func TestMetrics_CollectorsRegisterCleanly(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()

	require.NotPanics(t, func() { reg.MustRegister(m.collectors()...) })
	assert.Len(t, m.collectors(), 17)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, c.Write(&metric))
	return metric.GetCounter().GetValue()
}
