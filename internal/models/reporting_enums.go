package models

import "strings"

// Closed enums shared by the listing, analytics and export paths.

const (
	CategoryRevenue = "Revenue"
	CategoryExpense = "Expense"

	StatusPaid    = "Paid"
	StatusPending = "Pending"
)

// SortField is a column the listing and export paths may order by
type SortField string

const (
	SortByID       SortField = "id"
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByCategory SortField = "category"
	SortByStatus   SortField = "status"
	SortByUserID   SortField = "user_id"
)

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ExportColumn is a column that may appear in a CSV export
type ExportColumn string

const (
	ColumnID          ExportColumn = "id"
	ColumnDate        ExportColumn = "date"
	ColumnAmount      ExportColumn = "amount"
	ColumnCategory    ExportColumn = "category"
	ColumnStatus      ExportColumn = "status"
	ColumnUserID      ExportColumn = "user_id"
	ColumnUserProfile ExportColumn = "user_profile"
)

// DistinctField is a column whose distinct stored values feed the filter options
type DistinctField string

const (
	DistinctCategory DistinctField = "category"
	DistinctStatus   DistinctField = "status"
	DistinctUserID   DistinctField = "user_id"
)

var (
	categories    = []string{CategoryRevenue, CategoryExpense}
	statuses      = []string{StatusPaid, StatusPending}
	sortFields    = []SortField{SortByID, SortByDate, SortByAmount, SortByCategory, SortByStatus, SortByUserID}
	sortOrders    = []SortOrder{SortAsc, SortDesc}
	exportColumns = []ExportColumn{ColumnID, ColumnDate, ColumnAmount, ColumnCategory, ColumnStatus, ColumnUserID, ColumnUserProfile}
	defaultExport = []ExportColumn{ColumnID, ColumnDate, ColumnAmount, ColumnCategory, ColumnStatus, ColumnUserID}
)

func Categories() []string {
	return append([]string(nil), categories...)
}

func Statuses() []string {
	return append([]string(nil), statuses...)
}

func ExportColumns() []ExportColumn {
	return append([]ExportColumn(nil), exportColumns...)
}

// DefaultExportColumns is used when an export request names no columns
func DefaultExportColumns() []ExportColumn {
	return append([]ExportColumn(nil), defaultExport...)
}

func IsValidCategory(category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

func IsValidStatus(status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidSortField(field string) bool {
	for _, f := range sortFields {
		if string(f) == field {
			return true
		}
	}
	return false
}

func IsValidSortOrder(order string) bool {
	for _, o := range sortOrders {
		if string(o) == order {
			return true
		}
	}
	return false
}

func IsValidExportColumn(column string) bool {
	for _, c := range exportColumns {
		if string(c) == column {
			return true
		}
	}
	return false
}

// Title returns the CSV header for the column: the name with its first letter upper-cased
func (c ExportColumn) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// JoinSortFields renders the sort field set for error messages
func JoinSortFields(sep string) string {
	names := make([]string, len(sortFields))
	for i, f := range sortFields {
		names[i] = string(f)
	}
	return strings.Join(names, sep)
}

// JoinSortOrders renders the sort order set for error messages
func JoinSortOrders(sep string) string {
	names := make([]string, len(sortOrders))
	for i, o := range sortOrders {
		names[i] = string(o)
	}
	return strings.Join(names, sep)
}

// JoinExportColumns renders the export column set for error messages
func JoinExportColumns(sep string) string {
	names := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		names[i] = string(c)
	}
	return strings.Join(names, sep)
}
