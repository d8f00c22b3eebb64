package dto

import (
	"time"

	"finance-reporting/internal/models"
)

// ListTransactionsQuery binds the listing query string. Every field is kept as
// raw text so the validation layer sees exactly what the client sent.
type ListTransactionsQuery struct {
	Page      string `query:"page"`
	Limit     string `query:"limit"`
	SortBy    string `query:"sortBy"`
	Order     string `query:"order"`
	Category  string `query:"category"`
	Status    string `query:"status"`
	UserID    string `query:"user_id"`
	MinAmount string `query:"minAmount"`
	MaxAmount string `query:"maxAmount"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Search    string `query:"search"`
}

// AnalyticsQuery binds the analytics date range
type AnalyticsQuery struct {
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

// TransactionResponse is one record of a listing
type TransactionResponse struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	UserID      string    `json:"user_id"`
	UserProfile string    `json:"user_profile"`
}

// PaginationResponse contains page metadata
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// AppliedFiltersResponse echoes the filters that constrained a listing
type AppliedFiltersResponse struct {
	Applied []string `json:"applied"`
	Search  *string  `json:"search"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Data       []TransactionResponse  `json:"data"`
	Pagination PaginationResponse     `json:"pagination"`
	Filters    AppliedFiltersResponse `json:"filters"`
}

// FilterOptionsResponse lists the distinct values available for filtering
type FilterOptionsResponse struct {
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
	Users      []string `json:"users"`
}

func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Date:        t.Date.UTC(),
		Amount:      t.Amount.InexactFloat64(),
		Category:    t.Category,
		Status:      t.Status,
		UserID:      t.UserID,
		UserProfile: t.UserProfile,
	}
}

func NewListTransactionsResponse(page *models.TransactionPage) ListTransactionsResponse {
	data := make([]TransactionResponse, 0, len(page.Data))
	for i := range page.Data {
		data = append(data, NewTransactionResponse(&page.Data[i]))
	}

	applied := page.AppliedFilters
	if applied == nil {
		applied = []string{}
	}

	var search *string
	if page.Search != "" {
		s := page.Search
		search = &s
	}

	return ListTransactionsResponse{
		Data: data,
		Pagination: PaginationResponse{
			Page:       page.Pagination.Page,
			Limit:      page.Pagination.Limit,
			Total:      page.Pagination.Total,
			TotalPages: page.Pagination.TotalPages,
			HasNext:    page.Pagination.HasNext,
			HasPrev:    page.Pagination.HasPrev,
		},
		Filters: AppliedFiltersResponse{
			Applied: applied,
			Search:  search,
		},
	}
}

func NewFilterOptionsResponse(opts *models.FilterOptions) FilterOptionsResponse {
	return FilterOptionsResponse{
		Categories: nonNil(opts.Categories),
		Statuses:   nonNil(opts.Statuses),
		Users:      nonNil(opts.Users),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
