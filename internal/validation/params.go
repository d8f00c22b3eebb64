package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finance-reporting/internal/errors"
	"finance-reporting/internal/models"
	"finance-reporting/internal/query"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	MaxSearchLength = 100

	dateOnlyLayout = "2006-01-02"
)

// FieldError names the first request parameter that failed validation
type FieldError struct {
	Field   string
	Message string
	Code    errors.ErrorCode
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newFieldError(code errors.ErrorCode, field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...), Code: code}
}

// FilterInput holds the raw filter parameters. An empty string means absent.
type FilterInput struct {
	Category  string
	Status    string
	UserID    string
	MinAmount string
	MaxAmount string
	StartDate string
	EndDate   string
	Search    string
}

// ListInput holds the raw listing query string
type ListInput struct {
	FilterInput
	Page   string
	Limit  string
	SortBy string
	Order  string
}

// ExportInput holds the raw export request body
type ExportInput struct {
	FilterInput
	Columns []string
	SortBy  string
	Order   string
}

// ListParams is a fully validated listing request
type ListParams struct {
	Page   int
	Limit  int
	Sort   query.Sort
	Filter query.Filter
}

// ExportParams is a fully validated export request
type ExportParams struct {
	Columns []models.ExportColumn
	Sort    query.Sort
	Filter  query.Filter
}

// ParseListParams validates a listing request. Rules run in a fixed order and
// the first failure is returned; nothing is clamped or coerced.
func ParseListParams(raw ListInput) (*ListParams, error) {
	v := GetValidator()

	page, err := parseInt(v, "page", raw.Page, DefaultPage, "min=1",
		"page must be an integer greater than or equal to 1")
	if err != nil {
		return nil, err
	}

	limit, err := parseInt(v, "limit", raw.Limit, DefaultLimit, fmt.Sprintf("min=1,max=%d", MaxLimit),
		fmt.Sprintf("limit must be an integer between 1 and %d", MaxLimit))
	if err != nil {
		return nil, err
	}

	sort, err := parseSort(v, raw.SortBy, raw.Order)
	if err != nil {
		return nil, err
	}

	filter, err := ParseFilterParams(raw.FilterInput)
	if err != nil {
		return nil, err
	}

	return &ListParams{Page: page, Limit: limit, Sort: sort, Filter: *filter}, nil
}

// ParseExportParams validates an export request. Columns are checked first so
// an invalid column is reported before any filter.
func ParseExportParams(raw ExportInput) (*ExportParams, error) {
	v := GetValidator()

	columns, err := ParseExportColumns(raw.Columns)
	if err != nil {
		return nil, err
	}

	filter, err := ParseFilterParams(raw.FilterInput)
	if err != nil {
		return nil, err
	}

	sort, err := parseSort(v, raw.SortBy, raw.Order)
	if err != nil {
		return nil, err
	}

	return &ExportParams{Columns: columns, Sort: sort, Filter: *filter}, nil
}

// ParseFilterParams validates the filter subset shared by listing and export
func ParseFilterParams(raw FilterInput) (*query.Filter, error) {
	v := GetValidator()

	dates, err := ParseDateRange(raw.StartDate, raw.EndDate)
	if err != nil {
		return nil, err
	}

	minAmount, err := parseAmount("minAmount", raw.MinAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := parseAmount("maxAmount", raw.MaxAmount)
	if err != nil {
		return nil, err
	}
	if minAmount != nil && maxAmount != nil && minAmount.GreaterThan(*maxAmount) {
		return nil, newFieldError(errors.ValidationOutOfRange, "minAmount",
			"minAmount must be less than or equal to maxAmount")
	}

	if raw.Category != "" && !v.Var(raw.Category, "transaction_category") {
		return nil, newFieldError(errors.ValidationInvalidFormat, "category",
			"category must be one of: %s", strings.Join(models.Categories(), ", "))
	}

	if raw.Status != "" && !v.Var(raw.Status, "transaction_status") {
		return nil, newFieldError(errors.ValidationInvalidFormat, "status",
			"status must be one of: %s", strings.Join(models.Statuses(), ", "))
	}

	userID := strings.TrimSpace(raw.UserID)
	if raw.UserID != "" && userID == "" {
		return nil, newFieldError(errors.ValidationRequiredField, "user_id", "user_id must not be empty")
	}

	search := strings.TrimSpace(raw.Search)
	if raw.Search != "" && !v.Var(search, fmt.Sprintf("min=1,max=%d", MaxSearchLength)) {
		return nil, newFieldError(errors.ValidationOutOfRange, "search",
			"search must be between 1 and %d characters", MaxSearchLength)
	}

	return &query.Filter{
		Category:  raw.Category,
		Status:    raw.Status,
		UserID:    userID,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		StartDate: dates.Start,
		EndDate:   dates.End,
		Search:    search,
	}, nil
}

// ParseDateRange validates each bound that is present and their order when
// both are. A date-only end bound covers its whole day.
func ParseDateRange(start, end string) (*query.DateRange, error) {
	var r query.DateRange

	if start != "" {
		t, _, err := parseDate(start)
		if err != nil {
			return nil, newFieldError(errors.ValidationInvalidDate, "startDate",
				"startDate must be a valid date (YYYY-MM-DD or RFC3339)")
		}
		r.Start = &t
	}

	if end != "" {
		t, dateOnly, err := parseDate(end)
		if err != nil {
			return nil, newFieldError(errors.ValidationInvalidDate, "endDate",
				"endDate must be a valid date (YYYY-MM-DD or RFC3339)")
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		if r.Start != nil && r.Start.After(t) {
			return nil, newFieldError(errors.ValidationInvalidDate, "startDate",
				"startDate must be on or before endDate")
		}
		r.End = &t
	}

	return &r, nil
}

// ParseExportColumns validates requested export columns against the closed
// column set. No columns selects the default set. The error names every
// offending column.
func ParseExportColumns(cols []string) ([]models.ExportColumn, error) {
	if len(cols) == 0 {
		return models.DefaultExportColumns(), nil
	}

	v := GetValidator()
	columns := make([]models.ExportColumn, 0, len(cols))
	var invalid []string
	for _, c := range cols {
		if !v.Var(c, "export_column") {
			invalid = append(invalid, strconv.Quote(c))
			continue
		}
		columns = append(columns, models.ExportColumn(c))
	}

	if len(invalid) > 0 {
		return nil, newFieldError(errors.ExportInvalidColumns, "columns",
			"invalid columns: %s. Allowed columns: %s",
			strings.Join(invalid, ", "), models.JoinExportColumns(", "))
	}

	return columns, nil
}

func parseInt(v *Validator, field, raw string, def int, tag, message string) (int, error) {
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !v.Var(n, tag) {
		return 0, newFieldError(errors.ValidationOutOfRange, field, "%s", message)
	}
	return n, nil
}

func parseSort(v *Validator, sortBy, order string) (query.Sort, error) {
	sort := query.DefaultSort()

	if sortBy != "" {
		if !v.Var(sortBy, "sort_field") {
			return sort, newFieldError(errors.ValidationInvalidFormat, "sortBy",
				"sortBy must be one of: %s", models.JoinSortFields(", "))
		}
		sort.Field = models.SortField(sortBy)
	}

	if order != "" {
		if !v.Var(order, "sort_order") {
			return sort, newFieldError(errors.ValidationInvalidFormat, "order",
				"order must be one of: %s", models.JoinSortOrders(", "))
		}
		sort.Order = models.SortOrder(order)
	}

	return sort, nil
}

func parseAmount(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, newFieldError(errors.ValidationInvalidFormat, field, "%s must be a finite number", field)
	}
	return &d, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339 and normalizes to UTC
func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t.UTC(), true, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
