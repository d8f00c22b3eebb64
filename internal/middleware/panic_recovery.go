package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"finance-reporting/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var panicsRecovered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "panics_recovered_total",
		Help: "Total number of handler panics recovered by route",
	},
	[]string{"endpoint"},
)

// PanicRecovery turns a handler panic into a SYSTEM_001 response. A panic
// after the response was committed is only logged.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				err = recovered(c, r)
			}()

			return next(c)
		}
	}
}

func recovered(c echo.Context, r interface{}) error {
	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	panicsRecovered.WithLabelValues(c.Path()).Inc()
	slog.Error("Panic recovered",
		"trace_id", traceID,
		"panic", fmt.Sprintf("%v", r),
		"stack_trace", string(debug.Stack()),
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"committed", c.Response().Committed,
	)

	if c.Response().Committed {
		return nil
	}

	if err := c.JSON(http.StatusInternalServerError, errors.NewErrorResponse(errors.SystemInternalError, traceID)); err != nil {
		slog.Error("Failed to send panic recovery response", "trace_id", traceID, "error", err)
	}
	return nil
}
