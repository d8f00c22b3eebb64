package services

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestMetrics() MetricsRecorderInterface {
	return NewPrometheusMetrics(prometheus.NewRegistry())
}

func newTestLogger() ReportingLoggerInterface {
	return NewReportingLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
