package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"finance-reporting/internal/errors"
	"finance-reporting/internal/repositories"
	"finance-reporting/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	defaultGenerateCount = 100
	maxGenerateCount     = 5000
	defaultGenerateDays  = 365
	maxGenerateDays      = 3 * 365
)

// DevHandler handles development-only endpoints.
// Routes are only registered outside production.
type DevHandler struct {
	transactionRepo repositories.TransactionRepositoryInterface

	// the generator shares one seeded source
	mu        sync.Mutex
	generator services.TransactionGeneratorInterface
	now       func() time.Time
}

// NewDevHandler creates a new development handler
func NewDevHandler(
	transactionRepo repositories.TransactionRepositoryInterface,
	generator services.TransactionGeneratorInterface,
) *DevHandler {
	return &DevHandler{
		transactionRepo: transactionRepo,
		generator:       generator,
		now:             time.Now,
	}
}

// GenerateTestData inserts a batch of realistic demo transactions
//
// Method: POST /api/dev/transactions/generate
// Authentication: Required
// Environment: Development only
//
// Query parameters:
//   - count: Number of transactions to generate (default: 100, max: 5000)
//   - days: Number of days of history to spread them over (default: 365, max: 1095)
//
// Success Response: 201 Created
//   - message: Success message
//   - transactions_created: Number of transactions created
//   - date_range: start and end of the generated history
func (h *DevHandler) GenerateTestData(c echo.Context) error {
	count := clamp(getIntQueryParam(c, "count", defaultGenerateCount), 1, maxGenerateCount)
	days := clamp(getIntQueryParam(c, "days", defaultGenerateDays), 1, maxGenerateDays)

	endDate := h.now().UTC()
	startDate := endDate.AddDate(0, 0, -days)

	h.mu.Lock()
	transactions := h.generator.Generate(count, startDate, endDate)
	h.mu.Unlock()

	if err := h.transactionRepo.CreateBatch(requestContext(c), transactions); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":              "test data generated successfully",
		"transactions_created": len(transactions),
		"date_range": map[string]string{
			"start": startDate.Format(time.RFC3339),
			"end":   endDate.Format(time.RFC3339),
		},
	})
}

// RejectOutsideDevelopment guards the dev routes when they are mounted in a
// shared router
func RejectOutsideDevelopment(environment string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if environment == "production" {
				return SendError(c, errors.SystemRouteNotFound)
			}
			return next(c)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Helper function to get integer query parameters
func getIntQueryParam(c echo.Context, key string, defaultValue int) int {
	valueStr := c.QueryParam(key)
	if valueStr == "" {
		return defaultValue
	}

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return defaultValue
	}

	return value
}
