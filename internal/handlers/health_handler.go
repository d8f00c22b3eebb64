package handlers

import (
	"context"
	"net/http"
	"time"

	"finance-reporting/internal/errors"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

// StorageChecker is implemented by both the SQL and the document store connections
type StorageChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse reports liveness plus storage reachability
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Storage   string  `json:"storage"`
}

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	storage   StorageChecker
	startedAt time.Time
	now       func() time.Time
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(storage StorageChecker) *HealthCheckHandler {
	return &HealthCheckHandler{storage: storage, startedAt: time.Now(), now: time.Now}
}

// HealthCheck reports service status
// @Summary Health check
// @Description Check API and storage connectivity status
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Storage unreachable"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := h.storage.HealthCheck(ctx); err != nil {
		return SendError(c, errors.SystemServiceUnavailable, errors.WithDetails("Storage connection failed"))
	}

	now := h.now()
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: now.UTC().Format(time.RFC3339),
		Uptime:    now.Sub(h.startedAt).Seconds(),
		Storage:   "up",
	})
}

// Root answers the liveness banner
func (h *HealthCheckHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "Financial Analytics API is running!"})
}
