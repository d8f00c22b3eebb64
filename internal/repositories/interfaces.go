package repositories

import (
	"context"
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"

	"github.com/google/uuid"
)

// TransactionRepositoryInterface is the query and aggregation capability the
// reporting services consume. Every method evaluates the predicate it is given
// and nothing else.
type TransactionRepositoryInterface interface {
	// Find returns matching records in sort order. A nil window returns every match.
	Find(ctx context.Context, pred query.Predicate, sort query.Sort, window *query.Window) ([]models.Transaction, error)
	Count(ctx context.Context, pred query.Predicate) (int64, error)

	TotalsByCategory(ctx context.Context, pred query.Predicate) ([]models.GroupTotal, error)
	TotalsByStatus(ctx context.Context, pred query.Predicate) ([]models.GroupTotal, error)
	// MonthlyTrends returns at most limit buckets ascending by (year, month)
	MonthlyTrends(ctx context.Context, pred query.Predicate, limit int) ([]models.MonthlyTrend, error)
	// TopUsers returns at most limit users by descending total, ties by ascending user_id
	TopUsers(ctx context.Context, pred query.Predicate, limit int) ([]models.GroupTotal, error)

	Distinct(ctx context.Context, field models.DistinctField) ([]string, error)
	CreateBatch(ctx context.Context, transactions []models.Transaction) error
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
