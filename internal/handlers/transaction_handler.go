package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"finance-reporting/internal/dto"
	"finance-reporting/internal/errors"
	"finance-reporting/internal/services"
	"finance-reporting/internal/validation"

	"github.com/labstack/echo/v4"
)

// TransactionHandler serves the reporting endpoints over the transaction store
type TransactionHandler struct {
	queryService     services.TransactionQueryServiceInterface
	analyticsService services.AnalyticsServiceInterface
	exportService    services.ExportServiceInterface
	binder           echo.DefaultBinder
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	queryService services.TransactionQueryServiceInterface,
	analyticsService services.AnalyticsServiceInterface,
	exportService services.ExportServiceInterface,
) *TransactionHandler {
	return &TransactionHandler{
		queryService:     queryService,
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// ListTransactions retrieves a page of transactions
// @Summary List transactions
// @Description Filtered, sorted and paginated transaction listing
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (1-100)" default(10)
// @Param sortBy query string false "Sort field" Enums(id, date, amount, category, status, user_id)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Param category query string false "Category" Enums(Revenue, Expense)
// @Param status query string false "Status" Enums(Paid, Pending)
// @Param user_id query string false "User id"
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC3339)"
// @Param search query string false "Case-insensitive search over category, status, user_id and user_profile"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_00x - Invalid parameter"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002"
// @Failure 500 {object} errors.ErrorResponse "TRANSACTION_001"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	var q dto.ListTransactionsQuery
	if err := h.binder.BindQueryParams(c, &q); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid query parameters"))
	}

	params, err := validation.ParseListParams(validation.ListInput{
		FilterInput: validation.FilterInput{
			Category:  q.Category,
			Status:    q.Status,
			UserID:    q.UserID,
			MinAmount: q.MinAmount,
			MaxAmount: q.MaxAmount,
			StartDate: q.StartDate,
			EndDate:   q.EndDate,
			Search:    q.Search,
		},
		Page:   q.Page,
		Limit:  q.Limit,
		SortBy: q.SortBy,
		Order:  q.Order,
	})
	if err != nil {
		if fe, ok := asFieldError(err); ok {
			return SendFieldError(c, fe)
		}
		return SendSystemError(c, err)
	}

	page, err := h.queryService.ListTransactions(requestContext(c), params)
	if err != nil {
		return SendOperationError(c, errors.TransactionQueryFailed, err)
	}

	return c.JSON(http.StatusOK, dto.NewListTransactionsResponse(page))
}

// GetAnalytics returns the dashboard aggregations
// @Summary Transaction analytics
// @Description Category totals, status totals, monthly trends and top users over an optional date range
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC3339)"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_005 - Invalid date"
// @Failure 500 {object} errors.ErrorResponse "TRANSACTION_002"
// @Router /transactions/analytics [get]
func (h *TransactionHandler) GetAnalytics(c echo.Context) error {
	var q dto.AnalyticsQuery
	if err := h.binder.BindQueryParams(c, &q); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid query parameters"))
	}

	dateRange, err := validation.ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		if fe, ok := asFieldError(err); ok {
			return SendFieldError(c, fe)
		}
		return SendSystemError(c, err)
	}

	report, err := h.analyticsService.GetAnalytics(requestContext(c), *dateRange)
	if err != nil {
		return SendOperationError(c, errors.TransactionAnalyticsFailed, err)
	}

	return c.JSON(http.StatusOK, dto.NewAnalyticsResponse(report, *dateRange))
}

// GetFilterOptions lists the distinct categories, statuses and users
// @Summary Filter options
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.FilterOptionsResponse
// @Failure 500 {object} errors.ErrorResponse "TRANSACTION_003"
// @Router /transactions/filters [get]
func (h *TransactionHandler) GetFilterOptions(c echo.Context) error {
	opts, err := h.queryService.FilterOptions(requestContext(c))
	if err != nil {
		return SendOperationError(c, errors.TransactionFiltersFailed, err)
	}

	return c.JSON(http.StatusOK, dto.NewFilterOptionsResponse(opts))
}

// ExportTransactions streams the filtered transactions as a CSV attachment
// @Summary Export transactions as CSV
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce text/csv
// @Param request body dto.ExportRequest false "Columns, filters and sort"
// @Success 200 {file} file "transactions_YYYY-MM-DD.csv"
// @Failure 400 {object} errors.ErrorResponse "EXPORT_001 - Invalid columns, VALIDATION_00x - Invalid filter"
// @Failure 404 {object} errors.ErrorResponse "EXPORT_002 - No transactions match"
// @Failure 500 {object} errors.ErrorResponse "EXPORT_003"
// @Router /transactions/export [post]
func (h *TransactionHandler) ExportTransactions(c echo.Context) error {
	var req dto.ExportRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	params, err := validation.ParseExportParams(validation.ExportInput{
		FilterInput: validation.FilterInput{
			Category:  req.Category.String(),
			Status:    req.Status.String(),
			UserID:    req.UserID.String(),
			MinAmount: req.MinAmount.String(),
			MaxAmount: req.MaxAmount.String(),
			StartDate: req.StartDate.String(),
			EndDate:   req.EndDate.String(),
			Search:    req.Search.String(),
		},
		Columns: req.Columns,
		SortBy:  req.SortBy.String(),
		Order:   req.Order.String(),
	})
	if err != nil {
		if fe, ok := asFieldError(err); ok {
			return SendFieldError(c, fe)
		}
		return SendSystemError(c, err)
	}

	artifact, err := h.exportService.CreateExportFile(requestContext(c), params)
	if err != nil {
		if stderrors.Is(err, services.ErrNoExportData) {
			return SendError(c, errors.ExportNoData)
		}
		return SendOperationError(c, errors.ExportFailed, err)
	}
	defer func() {
		if cleanupErr := artifact.Cleanup(); cleanupErr != nil {
			slog.Warn("Failed to remove export file",
				"trace_id", getTraceID(c),
				"path", artifact.Path,
				"error", cleanupErr,
			)
		}
	}()

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	return c.Attachment(artifact.Path, artifact.Filename)
}
