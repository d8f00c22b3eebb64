package services

import (
	"context"
	"time"

	"finance-reporting/internal/dto"
	"finance-reporting/internal/models"
	"finance-reporting/internal/query"
	"finance-reporting/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionQueryServiceInterface serves the paginated listing and the filter options
type TransactionQueryServiceInterface interface {
	ListTransactions(ctx context.Context, params *validation.ListParams) (*models.TransactionPage, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

// AnalyticsServiceInterface computes the dashboard aggregations over an optional date range
type AnalyticsServiceInterface interface {
	GetAnalytics(ctx context.Context, dateRange query.DateRange) (*models.AnalyticsReport, error)
}

// ExportServiceInterface renders filtered transactions into a downloadable CSV file
type ExportServiceInterface interface {
	CreateExportFile(ctx context.Context, params *validation.ExportParams) (*ExportArtifact, error)
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type ReportingLoggerInterface interface {
	LogListCompleted(ctx context.Context, total int64, returned int, durationMs int64)
	LogAnalyticsCompleted(ctx context.Context, degraded bool, durationMs int64)
	LogAnalyticsPassFailed(ctx context.Context, pass string, errorMsg string)
	LogExportCreated(ctx context.Context, filename string, rows int, columns int, durationMs int64)
	LogQueryFailed(ctx context.Context, operation string, errorMsg string, durationMs int64)
	LogAuthEvent(ctx context.Context, eventType string, username string)
}

// TransactionGeneratorInterface produces realistic demo records for seeding
type TransactionGeneratorInterface interface {
	Generate(count int, startDate, endDate time.Time) []models.Transaction
	GenerateUsers(count int) []string
	GenerateAmount(category string) decimal.Decimal
	GenerateTimestamp(startDate, endDate time.Time) time.Time
}
