package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherValues(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[family.GetName()] += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				values[family.GetName()] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestPrometheusMetrics_RecordsReportingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg)

	metrics.IncrementCounter(MetricTransactionQuery, map[string]string{"operation": OperationList})
	metrics.IncrementCounter(MetricTransactionQuery, map[string]string{"operation": OperationExport, "status": "failed"})
	metrics.IncrementCounter(MetricAnalyticsPassFailure, map[string]string{"pass": PassMonthlyTrends})
	metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": AuthEventLoginSuccess})
	metrics.RecordProcessingTime(OperationAnalytics, 40*time.Millisecond)
	metrics.RecordGauge(MetricExportRows, 25, nil)
	metrics.RecordGauge(MetricExportFileBytes, 2048, nil)

	values := gatherValues(t, reg)
	assert.Equal(t, 2.0, values["transaction_queries_total"])
	assert.Equal(t, 1.0, values["analytics_pass_failures_total"])
	assert.Equal(t, 1.0, values["auth_events_total"])
	assert.Equal(t, 1.0, values["transaction_query_duration_seconds"])
	assert.Equal(t, 25.0, values["export_rows_total"])
	assert.Equal(t, 1.0, values["export_file_bytes"])
}

func TestPrometheusMetrics_IgnoresUnknownAndUnlabelled(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg)

	metrics.IncrementCounter("unknown_metric", nil)
	metrics.IncrementCounter(MetricTransactionQuery, map[string]string{})
	metrics.IncrementCounter(MetricAnalyticsPassFailure, nil)
	metrics.RecordProcessingTime("unknown", time.Second)
	metrics.RecordGauge("unknown", 1, nil)

	values := gatherValues(t, reg)
	assert.Zero(t, values["transaction_queries_total"])
	assert.Zero(t, values["analytics_pass_failures_total"])
	assert.Zero(t, values["transaction_query_duration_seconds"])
}
