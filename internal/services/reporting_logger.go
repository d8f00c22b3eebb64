package services

import (
	"context"
	"log/slog"
	"time"
)

type contextKey string

// RequestIDKey carries the request trace id through context.Context
const RequestIDKey contextKey = "request_id"

// ContextWithRequestID returns a copy of ctx that carries the request trace id
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// ReportingLogger provides structured event records for reporting operations
type ReportingLogger struct {
	logger *slog.Logger
}

func NewReportingLogger(logger *slog.Logger) ReportingLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportingLogger{
		logger: logger,
	}
}

// LogListCompleted logs a served page of the transaction listing
func (rl *ReportingLogger) LogListCompleted(ctx context.Context, total int64, returned int, durationMs int64) {
	rl.logger.InfoContext(ctx, "transaction list completed",
		slog.String("event_type", "transaction_list_completed"),
		slog.Int64("total", total),
		slog.Int("returned", returned),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", RequestIDFromContext(ctx)),
	)
}

// LogAnalyticsCompleted logs a finished analytics request
func (rl *ReportingLogger) LogAnalyticsCompleted(ctx context.Context, degraded bool, durationMs int64) {
	rl.logger.InfoContext(ctx, "analytics completed",
		slog.String("event_type", "analytics_completed"),
		slog.Bool("monthly_trends_degraded", degraded),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", RequestIDFromContext(ctx)),
	)
}

func (rl *ReportingLogger) LogAnalyticsPassFailed(ctx context.Context, pass string, errorMsg string) {
	rl.logger.WarnContext(ctx, "analytics pass failed",
		slog.String("event_type", "analytics_pass_failed"),
		slog.String("pass", pass),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", RequestIDFromContext(ctx)),
	)
}

func (rl *ReportingLogger) LogExportCreated(ctx context.Context, filename string, rows int, columns int, durationMs int64) {
	rl.logger.InfoContext(ctx, "export created",
		slog.String("event_type", "export_created"),
		slog.String("filename", filename),
		slog.Int("rows", rows),
		slog.Int("columns", columns),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", RequestIDFromContext(ctx)),
	)
}

func (rl *ReportingLogger) LogQueryFailed(ctx context.Context, operation string, errorMsg string, durationMs int64) {
	rl.logger.ErrorContext(ctx, "transaction query failed",
		slog.String("event_type", "transaction_query_failed"),
		slog.String("operation", operation),
		slog.String("error", errorMsg),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", RequestIDFromContext(ctx)),
	)
}

// LogAuthEvent logs register and login outcomes. Passwords never reach this logger.
func (rl *ReportingLogger) LogAuthEvent(ctx context.Context, eventType string, username string) {
	rl.logger.InfoContext(ctx, "authentication event",
		slog.String("event_type", eventType),
		slog.String("username", username),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", RequestIDFromContext(ctx)),
	)
}

// RequestIDFromContext returns the trace id set by ContextWithRequestID
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
