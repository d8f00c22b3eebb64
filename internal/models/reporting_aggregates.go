package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// GroupTotal is one row of a group-by-key aggregation (category, status or user)
type GroupTotal struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// MonthlyTrend is one (year, month) bucket of the monthly trend series
type MonthlyTrend struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Count    int64           `json:"count"`
}

// AnalyticsReport combines the four independent groupings of one analytics request
type AnalyticsReport struct {
	RevenueExpenses []GroupTotal
	StatusBreakdown []GroupTotal
	MonthlyTrends   []MonthlyTrend
	TopUsers        []GroupTotal
	// MonthlyTrendsDegraded is set when the trend pass failed and was replaced by an empty series
	MonthlyTrendsDegraded bool
}

// FilterOptions lists the distinct values currently present in storage
type FilterOptions struct {
	Categories []string
	Statuses   []string
	Users      []string
}

// TransactionPage is one page of a filtered, sorted listing
type TransactionPage struct {
	Data       []Transaction
	Pagination PageInfo
	// AppliedFilters names the filter keys that constrained the listing, search excluded
	AppliedFilters []string
	Search         string
}

// PageInfo is the metadata of one page of a listing
type PageInfo struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// NewPageInfo derives page metadata from the unwindowed total
func NewPageInfo(page, limit int, total int64) PageInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PageInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Skip returns the number of records before the first record of the page,
// saturating at math.MaxInt instead of wrapping
func (p PageInfo) Skip() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// InRange reports whether the page can hold any record
func (p PageInfo) InRange() bool {
	return p.Page >= 1 && p.Page <= p.TotalPages
}
