package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"finance-reporting/internal/errors"
	"finance-reporting/internal/services"
	"finance-reporting/internal/validation"

	"github.com/labstack/echo/v4"
)

// STANDARDIZED ERROR HANDLING PATTERNS
//
// All handlers must use the following standardized error response functions:
//
// 1. SendError - For client errors (4xx responses)
//    Use cases:
//    - Validation errors: SendError(c, errors.ValidationGeneral, errors.WithDetails("..."))
//    - Parameter errors: SendFieldError(c, fieldErr)
//    - Authentication errors: SendError(c, errors.AuthInvalidCredentials)
//    - Not found errors: SendError(c, errors.ExportNoData)
//
// 2. SendSystemError / SendOperationError - For system/internal errors (500 responses)
//    Use cases:
//    - Storage errors from repositories
//    - Service layer internal errors
//    - Unexpected errors that should not expose internal details to client
//
// DO NOT USE:
//    - echo.NewHTTPError() - Use SendError or SendSystemError instead
//    - Direct c.JSON() for errors - Use the helper functions
//    - return err without wrapping - Use SendSystemError to protect internal details

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// MessageResponse is a bare acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

// getTraceID extracts the trace ID from the Echo context
func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	return c.JSON(errorResponse.HTTPStatus(), errorResponse)
}

// SendFieldError reports the first request parameter that failed validation
func SendFieldError(c echo.Context, fe *validation.FieldError) error {
	code := fe.Code
	if code == "" {
		code = errors.ValidationGeneral
	}
	return SendError(c, code, errors.WithDetails(fe.Message))
}

// SendSystemError wraps a system error with generic message and logs the internal error
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, internalErr := errors.WrapSystemError(err, traceID)
	slog.Error("Internal error",
		"trace_id", traceID,
		"path", c.Path(),
		"error", internalErr,
	)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

// SendOperationError logs the internal error and answers with an operation
// specific 5xx code so clients can tell which call failed. An open storage
// circuit answers 503 instead.
func SendOperationError(c echo.Context, code errors.ErrorCode, err error) error {
	if stderrors.Is(err, services.ErrCircuitBreakerOpen) {
		code = errors.SystemServiceUnavailable
	}

	traceID := getTraceID(c)
	slog.Error("Operation failed",
		"trace_id", traceID,
		"path", c.Path(),
		"code", string(code),
		"error", err,
	)
	return SendError(c, code)
}

// asFieldError reports whether err carries a parameter validation failure
func asFieldError(err error) (*validation.FieldError, bool) {
	var fe *validation.FieldError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
