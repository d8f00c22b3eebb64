package services

import (
	"context"
	"fmt"
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"
	"finance-reporting/internal/repositories"
	"finance-reporting/internal/validation"
)

// TransactionQueryService serves paginated listings and filter options
type TransactionQueryService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          ReportingLoggerInterface
}

func NewTransactionQueryService(
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger ReportingLoggerInterface,
) TransactionQueryServiceInterface {
	return &TransactionQueryService{
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
	}
}

// ListTransactions counts and fetches one page with the same predicate, so the
// reported total always matches the records the page was cut from. A page past
// the end yields empty data with the real total.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, params *validation.ListParams) (*models.TransactionPage, error) {
	start := time.Now()
	pred := query.Build(params.Filter)

	total, err := s.transactionRepo.Count(ctx, pred)
	if err != nil {
		s.recordFailure(ctx, OperationList, err, start)
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	pageInfo := models.NewPageInfo(params.Page, params.Limit, total)
	window := query.WindowFor(pageInfo)

	data := []models.Transaction{}
	if pageInfo.InRange() {
		data, err = s.transactionRepo.Find(ctx, pred, params.Sort, &window)
		if err != nil {
			s.recordFailure(ctx, OperationList, err, start)
			return nil, fmt.Errorf("failed to fetch transactions: %w", err)
		}
	}

	duration := time.Since(start)
	s.metrics.IncrementCounter(MetricTransactionQuery, map[string]string{"operation": OperationList})
	s.metrics.RecordProcessingTime(OperationList, duration)
	s.logger.LogListCompleted(ctx, total, len(data), duration.Milliseconds())

	return &models.TransactionPage{
		Data:           data,
		Pagination:     pageInfo,
		AppliedFilters: pred.AppliedFields(),
		Search:         pred.Search(),
	}, nil
}

// FilterOptions lists the distinct categories, statuses and users in storage
func (s *TransactionQueryService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	start := time.Now()

	categories, err := s.transactionRepo.Distinct(ctx, models.DistinctCategory)
	if err != nil {
		s.recordFailure(ctx, OperationFilters, err, start)
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	statuses, err := s.transactionRepo.Distinct(ctx, models.DistinctStatus)
	if err != nil {
		s.recordFailure(ctx, OperationFilters, err, start)
		return nil, fmt.Errorf("failed to load statuses: %w", err)
	}

	users, err := s.transactionRepo.Distinct(ctx, models.DistinctUserID)
	if err != nil {
		s.recordFailure(ctx, OperationFilters, err, start)
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	s.metrics.IncrementCounter(MetricTransactionQuery, map[string]string{"operation": OperationFilters})
	s.metrics.RecordProcessingTime(OperationFilters, time.Since(start))

	return &models.FilterOptions{
		Categories: categories,
		Statuses:   statuses,
		Users:      users,
	}, nil
}

func (s *TransactionQueryService) recordFailure(ctx context.Context, operation string, err error, start time.Time) {
	s.metrics.IncrementCounter(MetricTransactionQuery, map[string]string{
		"operation": operation,
		"status":    "failed",
	})
	s.logger.LogQueryFailed(ctx, operation, err.Error(), time.Since(start).Milliseconds())
}
