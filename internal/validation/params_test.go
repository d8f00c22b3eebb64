package validation

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"finance-reporting/internal/errors"
	"finance-reporting/internal/models"
	"finance-reporting/internal/query"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestParamsSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func (s *ParamsTestSuite) requireFieldError(err error, field string) *FieldError {
	s.Require().Error(err)
	var fe *FieldError
	s.Require().True(stderrors.As(err, &fe), "expected *FieldError, got %T", err)
	s.Equal(field, fe.Field)
	s.NotEmpty(fe.Message)
	return fe
}

func (s *ParamsTestSuite) TestParseListParams_Defaults() {
	params, err := ParseListParams(ListInput{})

	s.Require().NoError(err)
	s.Equal(1, params.Page)
	s.Equal(10, params.Limit)
	s.Equal(query.Sort{Field: models.SortByDate, Order: models.SortDesc}, params.Sort)
	s.Equal(query.Filter{}, params.Filter)
}

func (s *ParamsTestSuite) TestParseListParams_FullyTyped() {
	params, err := ParseListParams(ListInput{
		Page:   "3",
		Limit:  "25",
		SortBy: "amount",
		Order:  "asc",
		FilterInput: FilterInput{
			Category:  "Revenue",
			Status:    "Paid",
			UserID:    " user_001 ",
			MinAmount: "100",
			MaxAmount: "250.50",
			StartDate: "2024-01-01",
			EndDate:   "2024-01-31",
			Search:    "  alice ",
		},
	})

	s.Require().NoError(err)
	s.Equal(3, params.Page)
	s.Equal(25, params.Limit)
	s.Equal(models.SortByAmount, params.Sort.Field)
	s.Equal(models.SortAsc, params.Sort.Order)
	s.Equal("Revenue", params.Filter.Category)
	s.Equal("Paid", params.Filter.Status)
	s.Equal("user_001", params.Filter.UserID)
	s.Equal("alice", params.Filter.Search)
	s.True(params.Filter.MinAmount.Equal(decimal.NewFromInt(100)))
	s.True(params.Filter.MaxAmount.Equal(decimal.RequireFromString("250.50")))
	s.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *params.Filter.StartDate)
	s.Equal(time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *params.Filter.EndDate)
}

func (s *ParamsTestSuite) TestParseListParams_RejectsInvalidInput() {
	testCases := []struct {
		name  string
		input ListInput
		field string
	}{
		{name: "limit zero", input: ListInput{Limit: "0"}, field: "limit"},
		{name: "limit above max", input: ListInput{Limit: "101"}, field: "limit"},
		{name: "limit not a number", input: ListInput{Limit: "ten"}, field: "limit"},
		{name: "page zero", input: ListInput{Page: "0"}, field: "page"},
		{name: "page negative", input: ListInput{Page: "-2"}, field: "page"},
		{name: "page fractional", input: ListInput{Page: "1.5"}, field: "page"},
		{name: "unknown sort field", input: ListInput{SortBy: "foo"}, field: "sortBy"},
		{name: "user_profile is not sortable", input: ListInput{SortBy: "user_profile"}, field: "sortBy"},
		{name: "unknown order", input: ListInput{Order: "sideways"}, field: "order"},
		{name: "unknown category", input: ListInput{FilterInput: FilterInput{Category: "Other"}}, field: "category"},
		{name: "category is case sensitive", input: ListInput{FilterInput: FilterInput{Category: "revenue"}}, field: "category"},
		{name: "unknown status", input: ListInput{FilterInput: FilterInput{Status: "Failed"}}, field: "status"},
		{name: "min above max", input: ListInput{FilterInput: FilterInput{MinAmount: "500", MaxAmount: "100"}}, field: "minAmount"},
		{name: "min not a number", input: ListInput{FilterInput: FilterInput{MinAmount: "abc"}}, field: "minAmount"},
		{name: "max infinite", input: ListInput{FilterInput: FilterInput{MaxAmount: "Infinity"}}, field: "maxAmount"},
		{name: "max NaN", input: ListInput{FilterInput: FilterInput{MaxAmount: "NaN"}}, field: "maxAmount"},
		{name: "start after end", input: ListInput{FilterInput: FilterInput{StartDate: "2024-02-01", EndDate: "2024-01-01"}}, field: "startDate"},
		{name: "start not a date", input: ListInput{FilterInput: FilterInput{StartDate: "yesterday"}}, field: "startDate"},
		{name: "end not a calendar date", input: ListInput{FilterInput: FilterInput{EndDate: "2024-02-30"}}, field: "endDate"},
		{name: "blank user id", input: ListInput{FilterInput: FilterInput{UserID: "   "}}, field: "user_id"},
		{name: "search too long", input: ListInput{FilterInput: FilterInput{Search: strings.Repeat("a", 101)}}, field: "search"},
		{name: "blank search", input: ListInput{FilterInput: FilterInput{Search: "   "}}, field: "search"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			params, err := ParseListParams(tc.input)

			s.Nil(params)
			s.requireFieldError(err, tc.field)
		})
	}
}

func (s *ParamsTestSuite) TestParseListParams_FirstFailureWins() {
	_, err := ParseListParams(ListInput{
		Page:        "0",
		Limit:       "500",
		SortBy:      "foo",
		FilterInput: FilterInput{Category: "Other"},
	})
	s.requireFieldError(err, "page")

	_, err = ParseListParams(ListInput{
		Limit:       "500",
		Order:       "sideways",
		FilterInput: FilterInput{Status: "Unknown"},
	})
	s.requireFieldError(err, "limit")

	_, err = ParseListParams(ListInput{
		FilterInput: FilterInput{MinAmount: "x", Category: "Other", StartDate: "bad"},
	})
	s.requireFieldError(err, "startDate")
}

func (s *ParamsTestSuite) TestParseListParams_SearchBoundaries() {
	params, err := ParseListParams(ListInput{FilterInput: FilterInput{Search: strings.Repeat("é", 100)}})
	s.Require().NoError(err)
	s.Equal(100, len([]rune(params.Filter.Search)))

	params, err = ParseListParams(ListInput{FilterInput: FilterInput{Search: "a"}})
	s.Require().NoError(err)
	s.Equal("a", params.Filter.Search)
}

func (s *ParamsTestSuite) TestParseListParams_LimitBoundaries() {
	for _, limit := range []string{"1", "100"} {
		_, err := ParseListParams(ListInput{Limit: limit})
		s.NoError(err, limit)
	}
}

func (s *ParamsTestSuite) TestParseFilterParams_EqualAmountsAllowed() {
	filter, err := ParseFilterParams(FilterInput{MinAmount: "100", MaxAmount: "100.00"})

	s.Require().NoError(err)
	s.True(filter.MinAmount.Equal(*filter.MaxAmount))
}

func (s *ParamsTestSuite) TestParseFilterParams_NegativeAmounts() {
	filter, err := ParseFilterParams(FilterInput{MinAmount: "-50", MaxAmount: "-10"})

	s.Require().NoError(err)
	s.True(filter.MinAmount.Equal(decimal.NewFromInt(-50)))
}

func (s *ParamsTestSuite) TestParseFilterParams_ErrorCodes() {
	_, err := ParseFilterParams(FilterInput{StartDate: "nope"})
	fe := s.requireFieldError(err, "startDate")
	s.Equal(errors.ValidationInvalidDate, fe.Code)

	_, err = ParseFilterParams(FilterInput{MinAmount: "2", MaxAmount: "1"})
	fe = s.requireFieldError(err, "minAmount")
	s.Equal(errors.ValidationOutOfRange, fe.Code)
}

func (s *ParamsTestSuite) TestParseDateRange() {
	testCases := []struct {
		name      string
		start     string
		end       string
		wantStart *time.Time
		wantEnd   *time.Time
	}{
		{name: "absent"},
		{
			name:      "start only",
			start:     "2024-03-01",
			wantStart: ptrTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "end only covers whole day",
			end:     "2024-03-31",
			wantEnd: ptrTime(time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)),
		},
		{
			name:      "rfc3339 bounds are kept exact and normalized to UTC",
			start:     "2024-03-01T10:00:00+02:00",
			end:       "2024-03-01T12:30:00Z",
			wantStart: ptrTime(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
			wantEnd:   ptrTime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)),
		},
		{
			name:      "same day",
			start:     "2024-03-05",
			end:       "2024-03-05",
			wantStart: ptrTime(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
			wantEnd:   ptrTime(time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC)),
		},
		{
			name:      "start later in the day of a date-only end",
			start:     "2024-01-05T12:00:00Z",
			end:       "2024-01-05",
			wantStart: ptrTime(time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)),
			wantEnd:   ptrTime(time.Date(2024, 1, 5, 23, 59, 59, 999999999, time.UTC)),
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			r, err := ParseDateRange(tc.start, tc.end)

			s.Require().NoError(err)
			s.Equal(tc.wantStart, r.Start)
			s.Equal(tc.wantEnd, r.End)
		})
	}
}

func (s *ParamsTestSuite) TestParseDateRange_ValidatesEachBound() {
	_, err := ParseDateRange("not-a-date", "")
	s.requireFieldError(err, "startDate")

	_, err = ParseDateRange("", "2024-13-01")
	s.requireFieldError(err, "endDate")

	_, err = ParseDateRange("2024-05-02", "2024-05-01")
	s.requireFieldError(err, "startDate")

	_, err = ParseDateRange("2024-05-02T00:00:00Z", "2024-05-01T23:59:59Z")
	s.requireFieldError(err, "startDate")
}

func (s *ParamsTestSuite) TestParseExportColumns() {
	cols, err := ParseExportColumns(nil)
	s.Require().NoError(err)
	s.Equal(models.DefaultExportColumns(), cols)

	cols, err = ParseExportColumns([]string{"amount", "id", "user_profile"})
	s.Require().NoError(err)
	s.Equal([]models.ExportColumn{models.ColumnAmount, models.ColumnID, models.ColumnUserProfile}, cols)
}

func (s *ParamsTestSuite) TestParseExportColumns_NamesEveryInvalidColumn() {
	_, err := ParseExportColumns([]string{"id", "password", "Amount", "balance"})

	fe := s.requireFieldError(err, "columns")
	s.Contains(fe.Message, `"password"`)
	s.Contains(fe.Message, `"Amount"`)
	s.Contains(fe.Message, `"balance"`)
	s.NotContains(fe.Message, `"id"`)
	s.Contains(fe.Message, "user_profile")
	s.Equal(errors.ExportInvalidColumns, fe.Code)
}

func (s *ParamsTestSuite) TestParseExportParams_ColumnsCheckedBeforeFilters() {
	_, err := ParseExportParams(ExportInput{
		Columns:     []string{"nope"},
		FilterInput: FilterInput{Category: "Other"},
		SortBy:      "foo",
	})
	s.requireFieldError(err, "columns")

	_, err = ParseExportParams(ExportInput{
		FilterInput: FilterInput{Category: "Other"},
		SortBy:      "foo",
	})
	s.requireFieldError(err, "category")

	_, err = ParseExportParams(ExportInput{SortBy: "foo"})
	s.requireFieldError(err, "sortBy")
}

func (s *ParamsTestSuite) TestParseExportParams_Valid() {
	params, err := ParseExportParams(ExportInput{
		Columns:     []string{"id", "amount"},
		Order:       "asc",
		FilterInput: FilterInput{Category: "Expense", MinAmount: "10"},
	})

	s.Require().NoError(err)
	s.Equal([]models.ExportColumn{models.ColumnID, models.ColumnAmount}, params.Columns)
	s.Equal(query.Sort{Field: models.SortByDate, Order: models.SortAsc}, params.Sort)
	s.Equal("Expense", params.Filter.Category)
}

func TestFieldError_Error(t *testing.T) {
	err := &FieldError{Field: "limit", Message: "limit must be an integer between 1 and 100"}

	assert.Equal(t, "limit: limit must be an integer between 1 and 100", err.Error())
}

func TestValidator_CustomTags(t *testing.T) {
	v := NewValidator()

	require.True(t, v.Var("Revenue", "transaction_category"))
	require.False(t, v.Var("Income", "transaction_category"))
	require.True(t, v.Var("Pending", "transaction_status"))
	require.False(t, v.Var("pending", "transaction_status"))
	require.True(t, v.Var("user_id", "sort_field"))
	require.False(t, v.Var("user_profile", "sort_field"))
	require.True(t, v.Var("desc", "sort_order"))
	require.False(t, v.Var("DESC", "sort_order"))
	require.True(t, v.Var("user_profile", "export_column"))
	require.False(t, v.Var("password", "export_column"))
	require.True(t, v.Var("john_doe_42", "username"))
	require.False(t, v.Var("jd", "username"))
	require.False(t, v.Var("john-doe", "username"))
}

func TestGetValidator_ReturnsSharedInstance(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
