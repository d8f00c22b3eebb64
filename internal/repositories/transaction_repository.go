package repositories

import (
	"context"
	"fmt"
	"strings"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const createBatchSize = 500

// TransactionRepository serves reporting queries from a SQL store through gorm
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &TransactionRepository{db: db}
}

type groupRow struct {
	GroupKey string          `gorm:"column:group_key"`
	Total    decimal.Decimal `gorm:"column:total"`
	TxnCount int64           `gorm:"column:txn_count"`
}

type monthRow struct {
	BucketYear  int             `gorm:"column:bucket_year"`
	BucketMonth int             `gorm:"column:bucket_month"`
	Revenue     decimal.Decimal `gorm:"column:revenue"`
	Expenses    decimal.Decimal `gorm:"column:expenses"`
	TxnCount    int64           `gorm:"column:txn_count"`
}

func (r *TransactionRepository) scoped(ctx context.Context, pred query.Predicate) *gorm.DB {
	return applyPredicate(r.db.WithContext(ctx).Model(&models.Transaction{}), pred)
}

// applyPredicate ANDs every condition and, when present, the search disjunction
func applyPredicate(q *gorm.DB, pred query.Predicate) *gorm.DB {
	for _, c := range pred.Conditions() {
		col := clause.Column{Name: c.Field}
		switch c.Op {
		case query.OpEq:
			q = q.Where(clause.Eq{Column: col, Value: c.Value})
		case query.OpGte:
			q = q.Where(clause.Gte{Column: col, Value: c.Value})
		case query.OpLte:
			q = q.Where(clause.Lte{Column: col, Value: c.Value})
		}
	}

	if pred.HasSearch() {
		pattern := "%" + escapeLike(foldSearch(q.Dialector.Name(), pred.Search())) + "%"
		exprs := make([]clause.Expression, 0, len(query.SearchFields))
		for _, field := range query.SearchFields {
			exprs = append(exprs, clause.Expr{
				SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
				Vars: []interface{}{clause.Column{Name: field}, pattern},
			})
		}
		q = q.Where(clause.Or(exprs...))
	}

	return q
}

// foldSearch lowercases the search term the way the dialect's LOWER() folds
// the column. SQLite only folds ASCII letters.
func foldSearch(dialect, s string) string {
	if dialect != "sqlite" {
		return strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Find returns matching records ordered by the sort field, then by insertion
// order so equal keys page deterministically
func (r *TransactionRepository) Find(ctx context.Context, pred query.Predicate, sort query.Sort, window *query.Window) ([]models.Transaction, error) {
	if !models.IsValidSortField(string(sort.Field)) {
		return nil, fmt.Errorf("%w: sort by %q", ErrUnsupportedField, sort.Field)
	}

	q := r.scoped(ctx, pred).
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(sort.Field)}, Desc: sort.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "record_id"}})

	if window != nil {
		q = q.Offset(window.Skip).Limit(window.Take)
	}

	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	return transactions, nil
}

func (r *TransactionRepository) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	var total int64
	if err := r.scoped(ctx, pred).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

func (r *TransactionRepository) TotalsByCategory(ctx context.Context, pred query.Predicate) ([]models.GroupTotal, error) {
	return r.totalsBy(ctx, pred, query.FieldCategory)
}

func (r *TransactionRepository) TotalsByStatus(ctx context.Context, pred query.Predicate) ([]models.GroupTotal, error) {
	return r.totalsBy(ctx, pred, query.FieldStatus)
}

func (r *TransactionRepository) totalsBy(ctx context.Context, pred query.Predicate, field string) ([]models.GroupTotal, error) {
	var rows []groupRow
	err := r.scoped(ctx, pred).
		Select(fmt.Sprintf("%s AS group_key, SUM(amount) AS total, COUNT(*) AS txn_count", field)).
		Group(field).
		Order("group_key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to total transactions by %s: %w", field, err)
	}

	return toGroupTotals(rows), nil
}

func (r *TransactionRepository) TopUsers(ctx context.Context, pred query.Predicate, limit int) ([]models.GroupTotal, error) {
	var rows []groupRow
	err := r.scoped(ctx, pred).
		Select("user_id AS group_key, SUM(amount) AS total, COUNT(*) AS txn_count").
		Group("user_id").
		Order("total DESC, group_key ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank users: %w", err)
	}

	return toGroupTotals(rows), nil
}

func (r *TransactionRepository) MonthlyTrends(ctx context.Context, pred query.Predicate, limit int) ([]models.MonthlyTrend, error) {
	yearExpr, monthExpr := monthPartExprs(r.db.Dialector.Name())

	var rows []monthRow
	err := r.scoped(ctx, pred).
		Select(fmt.Sprintf(
			"%s AS bucket_year, %s AS bucket_month, "+
				"SUM(CASE WHEN category = ? THEN amount ELSE 0 END) AS revenue, "+
				"SUM(CASE WHEN category = ? THEN amount ELSE 0 END) AS expenses, "+
				"COUNT(*) AS txn_count", yearExpr, monthExpr),
			models.CategoryRevenue, models.CategoryExpense).
		Group("bucket_year, bucket_month").
		Order("bucket_year ASC, bucket_month ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly trends: %w", err)
	}

	trends := make([]models.MonthlyTrend, len(rows))
	for i, row := range rows {
		trends[i] = models.MonthlyTrend{
			Year:     row.BucketYear,
			Month:    row.BucketMonth,
			Revenue:  row.Revenue,
			Expenses: row.Expenses,
			Count:    row.TxnCount,
		}
	}
	return trends, nil
}

// monthPartExprs extracts the UTC year and month of the date column
func monthPartExprs(dialect string) (string, string) {
	if dialect == "sqlite" {
		return `CAST(strftime('%Y', "date") AS INTEGER)`, `CAST(strftime('%m', "date") AS INTEGER)`
	}
	return `CAST(EXTRACT(YEAR FROM "date" AT TIME ZONE 'UTC') AS INTEGER)`,
		`CAST(EXTRACT(MONTH FROM "date" AT TIME ZONE 'UTC') AS INTEGER)`
}

// Distinct returns the sorted distinct stored values of a filterable column
func (r *TransactionRepository) Distinct(ctx context.Context, field models.DistinctField) ([]string, error) {
	switch field {
	case models.DistinctCategory, models.DistinctStatus, models.DistinctUserID:
	default:
		return nil, fmt.Errorf("%w: distinct %q", ErrUnsupportedField, field)
	}

	var values []string
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Distinct().
		Order(string(field)).
		Pluck(string(field), &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", field, err)
	}

	return values, nil
}

func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(transactions, createBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}

func toGroupTotals(rows []groupRow) []models.GroupTotal {
	totals := make([]models.GroupTotal, len(rows))
	for i, row := range rows {
		totals[i] = models.GroupTotal{Key: row.GroupKey, Total: row.Total, Count: row.TxnCount}
	}
	return totals
}
