package dto

import (
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"
)

// GroupTotalResponse is one grouped total. The key is serialized as _id for
// dashboard compatibility.
type GroupTotalResponse struct {
	ID    string  `json:"_id"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// MonthKey identifies a monthly trend bucket
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type MonthlyTrendResponse struct {
	ID       MonthKey `json:"_id"`
	Revenue  float64  `json:"revenue"`
	Expenses float64  `json:"expenses"`
	Count    int64    `json:"count"`
}

// DateRangeResponse echoes the bounds applied to an analytics request
type DateRangeResponse struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type AnalyticsResponse struct {
	RevenueExpenses []GroupTotalResponse   `json:"revenueExpenses"`
	StatusBreakdown []GroupTotalResponse   `json:"statusBreakdown"`
	MonthlyTrends   []MonthlyTrendResponse `json:"monthlyTrends"`
	TopUsers        []GroupTotalResponse   `json:"topUsers"`
	DateRange       DateRangeResponse      `json:"dateRange"`
}

func NewAnalyticsResponse(report *models.AnalyticsReport, dateRange query.DateRange) AnalyticsResponse {
	trends := make([]MonthlyTrendResponse, 0, len(report.MonthlyTrends))
	for _, m := range report.MonthlyTrends {
		trends = append(trends, MonthlyTrendResponse{
			ID:       MonthKey{Year: m.Year, Month: m.Month},
			Revenue:  m.Revenue.InexactFloat64(),
			Expenses: m.Expenses.InexactFloat64(),
			Count:    m.Count,
		})
	}

	return AnalyticsResponse{
		RevenueExpenses: newGroupTotals(report.RevenueExpenses),
		StatusBreakdown: newGroupTotals(report.StatusBreakdown),
		MonthlyTrends:   trends,
		TopUsers:        newGroupTotals(report.TopUsers),
		DateRange: DateRangeResponse{
			StartDate: utcPtr(dateRange.Start),
			EndDate:   utcPtr(dateRange.End),
		},
	}
}

func newGroupTotals(rows []models.GroupTotal) []GroupTotalResponse {
	out := make([]GroupTotalResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, GroupTotalResponse{
			ID:    row.Key,
			Total: row.Total.InexactFloat64(),
			Count: row.Count,
		})
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
