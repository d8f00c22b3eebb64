package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricTransactionQuery     = "transaction_query"
	MetricAnalyticsPassFailure = "analytics_pass_failure"
	MetricAuthenticationEvent  = "authentication_event"
	MetricExportRows           = "export_rows"
	MetricExportFileBytes      = "export_file_bytes"

	OperationList      = "list"
	OperationAnalytics = "analytics"
	OperationExport    = "export"
	OperationFilters   = "filters"
)

type PrometheusMetrics struct {
	transactionQueries       *prometheus.CounterVec
	transactionQueryDuration *prometheus.HistogramVec
	analyticsPassFailures    *prometheus.CounterVec
	exportRows               prometheus.Counter
	exportFileBytes          prometheus.Histogram
	authEventsTotal          *prometheus.CounterVec
}

// NewPrometheusMetrics registers the reporting metrics with reg
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		transactionQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_queries_total",
				Help: "Total number of transaction queries by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		transactionQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transaction_query_duration_seconds",
				Help:    "Transaction query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		analyticsPassFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_pass_failures_total",
				Help: "Total number of failed analytics aggregation passes",
			},
			[]string{"pass"},
		),
		exportRows: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "export_rows_total",
				Help: "Total number of rows written to CSV exports",
			},
		),
		exportFileBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "export_file_bytes",
				Help:    "Size of generated CSV exports in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		authEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricTransactionQuery:
		if operation := tags["operation"]; operation != "" {
			m.transactionQueries.WithLabelValues(operation, statusOrDefault(tags)).Inc()
		}
	case MetricAnalyticsPassFailure:
		if pass := tags["pass"]; pass != "" {
			m.analyticsPassFailures.WithLabelValues(pass).Inc()
		}
	case MetricAuthenticationEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case OperationList, OperationAnalytics, OperationExport, OperationFilters:
		m.transactionQueryDuration.WithLabelValues(name).Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricExportRows:
		m.exportRows.Add(value)
	case MetricExportFileBytes:
		m.exportFileBytes.Observe(value)
	}
}

func statusOrDefault(tags map[string]string) string {
	if status := tags["status"]; status != "" {
		return status
	}
	return "success"
}
