package query

import (
	"time"

	"finance-reporting/internal/models"

	"github.com/shopspring/decimal"
)

// Op is a comparison applied by a single condition
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Column names shared by every backend
const (
	FieldCategory    = "category"
	FieldStatus      = "status"
	FieldUserID      = "user_id"
	FieldUserProfile = "user_profile"
	FieldDate        = "date"
	FieldAmount      = "amount"
)

// SearchFields are matched case-insensitively as substrings by a search term
var SearchFields = []string{FieldCategory, FieldStatus, FieldUserID, FieldUserProfile}

// Filter is the validated, typed filter set of one request
type Filter struct {
	Category  string
	Status    string
	UserID    string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// DateRange is the only filter dimension analytics accepts
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Condition constrains one column. Value is a string, decimal.Decimal or time.Time.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Predicate is an immutable conjunction of conditions plus an optional search
// disjunction over SearchFields. The zero value matches every record.
type Predicate struct {
	conditions []Condition
	search     string
}

// Build translates a filter set into a predicate. It performs no I/O and the
// same filter always yields an equal predicate.
func Build(f Filter) Predicate {
	var conds []Condition

	if f.Category != "" {
		conds = append(conds, Condition{Field: FieldCategory, Op: OpEq, Value: f.Category})
	}
	if f.Status != "" {
		conds = append(conds, Condition{Field: FieldStatus, Op: OpEq, Value: f.Status})
	}
	if f.UserID != "" {
		conds = append(conds, Condition{Field: FieldUserID, Op: OpEq, Value: f.UserID})
	}
	if f.StartDate != nil {
		conds = append(conds, Condition{Field: FieldDate, Op: OpGte, Value: f.StartDate.UTC()})
	}
	if f.EndDate != nil {
		conds = append(conds, Condition{Field: FieldDate, Op: OpLte, Value: f.EndDate.UTC()})
	}
	if f.MinAmount != nil {
		conds = append(conds, Condition{Field: FieldAmount, Op: OpGte, Value: *f.MinAmount})
	}
	if f.MaxAmount != nil {
		conds = append(conds, Condition{Field: FieldAmount, Op: OpLte, Value: *f.MaxAmount})
	}

	return Predicate{conditions: conds, search: f.Search}
}

// ForDateRange builds the analytics predicate
func ForDateRange(r DateRange) Predicate {
	return Build(Filter{StartDate: r.Start, EndDate: r.End})
}

// Conditions returns a copy of the AND-ed conditions
func (p Predicate) Conditions() []Condition {
	return append([]Condition(nil), p.conditions...)
}

// Search returns the search term, empty when absent
func (p Predicate) Search() string {
	return p.search
}

func (p Predicate) HasSearch() bool {
	return p.search != ""
}

// IsEmpty reports whether the predicate matches every record
func (p Predicate) IsEmpty() bool {
	return len(p.conditions) == 0 && p.search == ""
}

// AppliedFields lists each constrained column once, in build order. The search
// term is not included.
func (p Predicate) AppliedFields() []string {
	applied := make([]string, 0, len(p.conditions))
	seen := make(map[string]bool, len(p.conditions))
	for _, c := range p.conditions {
		if seen[c.Field] {
			continue
		}
		seen[c.Field] = true
		applied = append(applied, c.Field)
	}
	return applied
}

// Sort orders a result set by one field
type Sort struct {
	Field models.SortField
	Order models.SortOrder
}

// DefaultSort is newest first
func DefaultSort() Sort {
	return Sort{Field: models.SortByDate, Order: models.SortDesc}
}

func (s Sort) Descending() bool {
	return s.Order == models.SortDesc
}

// Window selects Take records after skipping Skip records
type Window struct {
	Skip int
	Take int
}

// WindowFor converts page metadata into a window
func WindowFor(page models.PageInfo) Window {
	return Window{Skip: page.Skip(), Take: page.Limit}
}
