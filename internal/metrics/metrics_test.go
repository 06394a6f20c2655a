package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMetric extracts a label-matched metric from a Collector.
func collectMetric(t *testing.T, c prometheus.Collector, labels map[string]string) *dto.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}

		match := true
		for k, v := range labels {
			found := false
			for _, lp := range d.GetLabel() {
				if lp.GetName() == k && lp.GetValue() == v {
					found = true
					break
				}
			}
			if !found {
				match = false
				break
			}
		}
		if match {
			return d
		}
	}
	return nil
}

func TestStockOperationsTotal_LabeledCounting(t *testing.T) {
	StockOperationsTotal.WithLabelValues("deduct", OutcomeSuccess).Inc()
	StockOperationsTotal.WithLabelValues("deduct", OutcomeSuccess).Inc()
	StockOperationsTotal.WithLabelValues("deduct", OutcomeConflict).Inc()

	m := collectMetric(t, StockOperationsTotal, map[string]string{
		"operation": "deduct",
		"outcome":   OutcomeSuccess,
	})
	require.NotNil(t, m, "counter should exist for deduct/success")
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(2))

	m = collectMetric(t, StockOperationsTotal, map[string]string{
		"operation": "deduct",
		"outcome":   OutcomeConflict,
	})
	require.NotNil(t, m, "counter should exist for deduct/conflict")
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(1))
}

func TestOrderTransitionsTotal_OutcomeLabels(t *testing.T) {
	OrderTransitionsTotal.WithLabelValues("restore", OutcomePartial).Inc()

	m := collectMetric(t, OrderTransitionsTotal, map[string]string{
		"action":  "restore",
		"outcome": OutcomePartial,
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(1))
}

func TestUnlabeledCounters(t *testing.T) {
	StockCASConflictsTotal.Inc()
	UnmatchedLineItemsTotal.Inc()

	m := collectMetric(t, StockCASConflictsTotal, nil)
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(1))

	m = collectMetric(t, UnmatchedLineItemsTotal, nil)
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(1))
}
