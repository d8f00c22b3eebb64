package handlers

import (
	"context"
	"fmt"

	"finance-reporting/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// getUserIDFromContext extracts the authenticated user id set by RequireAuth
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userIDValue := c.Get("user_id")
	if userIDValue == nil {
		return uuid.UUID{}, ErrUnauthorized
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		return uuid.UUID{}, ErrUnauthorized
	}

	return userID, nil
}

// requestContext returns the request context tagged with the trace id so
// service-level event records can be correlated with the HTTP log line
func requestContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if traceID := getTraceID(c); traceID != "" {
		ctx = services.ContextWithRequestID(ctx, traceID)
	}
	return ctx
}
