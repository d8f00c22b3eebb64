package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"
	"finance-reporting/internal/repositories"
	"finance-reporting/internal/validation"
)

const exportDateLayout = "2006-01-02"

var (
	ErrNoExportData = errors.New("no transactions match the export filters")
	ErrNoColumns    = errors.New("export requires at least one column")
)

// ExportArtifact is a rendered CSV on local disk. The owner must call Cleanup
// once the file has been sent or abandoned.
type ExportArtifact struct {
	Path     string
	Filename string
	Rows     int
	Size     int64

	cleanupOnce sync.Once
	cleanupErr  error
}

// Cleanup removes the temporary file. Safe to call more than once.
func (a *ExportArtifact) Cleanup() error {
	a.cleanupOnce.Do(func() {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.cleanupErr = err
		}
	})
	return a.cleanupErr
}

// ExportService renders filtered transactions as CSV
type ExportService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          ReportingLoggerInterface
	tempDir         string
	now             func() time.Time
}

func NewExportService(
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger ReportingLoggerInterface,
	tempDir string,
) ExportServiceInterface {
	return &ExportService{
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
		tempDir:         tempDir,
		now:             time.Now,
	}
}

// CreateExportFile fetches every match in sort order and writes it to a
// request-scoped temporary file. The file is removed on any failure.
func (s *ExportService) CreateExportFile(ctx context.Context, params *validation.ExportParams) (*ExportArtifact, error) {
	start := time.Now()

	columns := params.Columns
	if len(columns) == 0 {
		columns = models.DefaultExportColumns()
	}

	transactions, err := s.transactionRepo.Find(ctx, query.Build(params.Filter), params.Sort, nil)
	if err != nil {
		s.recordFailure(ctx, err, start)
		return nil, fmt.Errorf("failed to fetch transactions for export: %w", err)
	}

	if len(transactions) == 0 {
		return nil, ErrNoExportData
	}

	file, err := os.CreateTemp(s.tempDir, "transactions_*.csv")
	if err != nil {
		s.recordFailure(ctx, err, start)
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}

	artifact := &ExportArtifact{
		Path:     file.Name(),
		Filename: ExportFilename(s.now()),
		Rows:     len(transactions),
	}

	writeErr := WriteCSV(file, transactions, columns)
	closeErr := file.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = artifact.Cleanup()
		s.recordFailure(ctx, err, start)
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	if info, err := os.Stat(artifact.Path); err == nil {
		artifact.Size = info.Size()
	}

	duration := time.Since(start)
	s.metrics.IncrementCounter(MetricTransactionQuery, map[string]string{"operation": OperationExport})
	s.metrics.RecordProcessingTime(OperationExport, duration)
	s.metrics.RecordGauge(MetricExportRows, float64(artifact.Rows), nil)
	s.metrics.RecordGauge(MetricExportFileBytes, float64(artifact.Size), nil)
	s.logger.LogExportCreated(ctx, artifact.Filename, artifact.Rows, len(columns), duration.Milliseconds())

	return artifact, nil
}

func (s *ExportService) recordFailure(ctx context.Context, err error, start time.Time) {
	s.metrics.IncrementCounter(MetricTransactionQuery, map[string]string{
		"operation": OperationExport,
		"status":    "failed",
	})
	s.logger.LogQueryFailed(ctx, OperationExport, err.Error(), time.Since(start).Milliseconds())
}

// ExportFilename names the attachment after the export date
func ExportFilename(at time.Time) string {
	return "transactions_" + at.UTC().Format(exportDateLayout) + ".csv"
}

// WriteCSV writes a header row of column titles followed by one row per
// transaction, holding only the requested columns in the requested order.
func WriteCSV(w io.Writer, transactions []models.Transaction, columns []models.ExportColumn) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}

	writer := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Title()
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for i := range transactions {
		for j, col := range columns {
			record[j] = columnValue(&transactions[i], col)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func columnValue(t *models.Transaction, col models.ExportColumn) string {
	switch col {
	case models.ColumnID:
		return strconv.FormatInt(t.ID, 10)
	case models.ColumnDate:
		return t.Date.UTC().Format(time.RFC3339)
	case models.ColumnAmount:
		return t.Amount.StringFixed(2)
	case models.ColumnCategory:
		return t.Category
	case models.ColumnStatus:
		return t.Status
	case models.ColumnUserID:
		return t.UserID
	case models.ColumnUserProfile:
		return t.UserProfile
	default:
		return ""
	}
}
