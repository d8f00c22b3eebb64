package services

import (
	"context"
	"fmt"
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"
	"finance-reporting/internal/repositories"

	"golang.org/x/sync/errgroup"
)

const (
	TopUsersLimit      = 5
	MonthlyTrendsLimit = 12

	PassRevenueExpenses = "revenue_expenses"
	PassStatusBreakdown = "status_breakdown"
	PassMonthlyTrends   = "monthly_trends"
	PassTopUsers        = "top_users"
)

// AnalyticsService runs the dashboard aggregations
type AnalyticsService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          ReportingLoggerInterface
}

func NewAnalyticsService(
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger ReportingLoggerInterface,
) AnalyticsServiceInterface {
	return &AnalyticsService{
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
	}
}

// GetAnalytics runs the four aggregation passes concurrently over the same
// date-range predicate. A failed monthly-trends pass degrades to an empty
// series; any other failure fails the whole report and cancels the rest.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, dateRange query.DateRange) (*models.AnalyticsReport, error) {
	start := time.Now()
	pred := query.ForDateRange(dateRange)
	report := &models.AnalyticsReport{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := s.transactionRepo.TotalsByCategory(gctx, pred)
		if err != nil {
			return s.passFailed(gctx, PassRevenueExpenses, err)
		}
		report.RevenueExpenses = totals
		return nil
	})

	g.Go(func() error {
		totals, err := s.transactionRepo.TotalsByStatus(gctx, pred)
		if err != nil {
			return s.passFailed(gctx, PassStatusBreakdown, err)
		}
		report.StatusBreakdown = totals
		return nil
	})

	g.Go(func() error {
		trends, err := s.transactionRepo.MonthlyTrends(gctx, pred, MonthlyTrendsLimit)
		if err != nil {
			s.passFailed(gctx, PassMonthlyTrends, err)
			report.MonthlyTrends = []models.MonthlyTrend{}
			report.MonthlyTrendsDegraded = true
			return nil
		}
		report.MonthlyTrends = trends
		return nil
	})

	g.Go(func() error {
		users, err := s.transactionRepo.TopUsers(gctx, pred, TopUsersLimit)
		if err != nil {
			return s.passFailed(gctx, PassTopUsers, err)
		}
		report.TopUsers = users
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrementCounter(MetricTransactionQuery, map[string]string{
			"operation": OperationAnalytics,
			"status":    "failed",
		})
		s.logger.LogQueryFailed(ctx, OperationAnalytics, err.Error(), time.Since(start).Milliseconds())
		return nil, err
	}

	if report.RevenueExpenses == nil {
		report.RevenueExpenses = []models.GroupTotal{}
	}
	if report.StatusBreakdown == nil {
		report.StatusBreakdown = []models.GroupTotal{}
	}
	if report.MonthlyTrends == nil {
		report.MonthlyTrends = []models.MonthlyTrend{}
	}
	if report.TopUsers == nil {
		report.TopUsers = []models.GroupTotal{}
	}

	duration := time.Since(start)
	s.metrics.IncrementCounter(MetricTransactionQuery, map[string]string{"operation": OperationAnalytics})
	s.metrics.RecordProcessingTime(OperationAnalytics, duration)
	s.logger.LogAnalyticsCompleted(ctx, report.MonthlyTrendsDegraded, duration.Milliseconds())

	return report, nil
}

func (s *AnalyticsService) passFailed(ctx context.Context, pass string, err error) error {
	s.metrics.IncrementCounter(MetricAnalyticsPassFailure, map[string]string{"pass": pass})
	s.logger.LogAnalyticsPassFailed(ctx, pass, err.Error())
	return fmt.Errorf("analytics %s failed: %w", pass, err)
}
