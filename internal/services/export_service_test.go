package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"
	"finance-reporting/internal/repositories/repository_mocks"
	"finance-reporting/internal/validation"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ExportServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *repository_mocks.MockTransactionRepositoryInterface
	service *ExportService
	tempDir string
	ctx     context.Context
}

func TestExportServiceSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceTestSuite))
}

func (s *ExportServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.tempDir = s.T().TempDir()
	s.service = NewExportService(s.repo, newTestMetrics(), newTestLogger(), s.tempDir).(*ExportService)
	s.service.now = func() time.Time { return time.Date(2024, 3, 9, 22, 15, 0, 0, time.UTC) }
	s.ctx = context.Background()
}

func (s *ExportServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func exportFixture() []models.Transaction {
	return []models.Transaction{
		{
			ID:          1,
			Date:        time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Amount:      decimal.RequireFromString("1500.5"),
			Category:    models.CategoryRevenue,
			Status:      models.StatusPaid,
			UserID:      "user_001",
			UserProfile: "https://example.com/u1.png",
		},
		{
			ID:          2,
			Date:        time.Date(2024, 2, 1, 8, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			Amount:      decimal.RequireFromString("75"),
			Category:    models.CategoryExpense,
			Status:      models.StatusPending,
			UserID:      "user,with,commas",
			UserProfile: "profile \"quoted\"",
		},
	}
}

func readCSV(s *suite.Suite, data []byte) [][]string {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	s.Require().NoError(err)
	return records
}

func (s *ExportServiceTestSuite) TestWriteCSV_RequestedColumnsInOrder() {
	var buf bytes.Buffer
	columns := []models.ExportColumn{models.ColumnAmount, models.ColumnUserID, models.ColumnDate}

	s.Require().NoError(WriteCSV(&buf, exportFixture(), columns))

	records := readCSV(&s.Suite, buf.Bytes())
	s.Equal([][]string{
		{"Amount", "User_id", "Date"},
		{"1500.50", "user_001", "2024-01-15T10:30:00Z"},
		{"75.00", "user,with,commas", "2024-02-01T13:00:00Z"},
	}, records)
}

func (s *ExportServiceTestSuite) TestWriteCSV_AllColumns() {
	var buf bytes.Buffer
	s.Require().NoError(WriteCSV(&buf, exportFixture()[:1], models.ExportColumns()))

	records := readCSV(&s.Suite, buf.Bytes())
	s.Equal([]string{"Id", "Date", "Amount", "Category", "Status", "User_id", "User_profile"}, records[0])
	s.Equal([]string{"1", "2024-01-15T10:30:00Z", "1500.50", "Revenue", "Paid", "user_001", "https://example.com/u1.png"}, records[1])
}

func (s *ExportServiceTestSuite) TestWriteCSV_OmitsUnrequestedFields() {
	var buf bytes.Buffer
	s.Require().NoError(WriteCSV(&buf, exportFixture(), []models.ExportColumn{models.ColumnID}))

	s.NotContains(buf.String(), "user_001")
	s.Equal("Id\n1\n2\n", buf.String())
}

func (s *ExportServiceTestSuite) TestWriteCSV_NoColumns() {
	var buf bytes.Buffer
	s.ErrorIs(WriteCSV(&buf, exportFixture(), nil), ErrNoColumns)
}

func (s *ExportServiceTestSuite) TestCreateExportFile_Success() {
	params := &validation.ExportParams{
		Columns: []models.ExportColumn{models.ColumnID, models.ColumnStatus},
		Sort:    query.Sort{Field: models.SortByID, Order: models.SortAsc},
		Filter:  query.Filter{Category: models.CategoryRevenue},
	}

	s.repo.EXPECT().
		Find(s.ctx, query.Build(params.Filter), params.Sort, (*query.Window)(nil)).
		Return(exportFixture(), nil)

	artifact, err := s.service.CreateExportFile(s.ctx, params)
	s.Require().NoError(err)
	defer artifact.Cleanup()

	s.Equal("transactions_2024-03-09.csv", artifact.Filename)
	s.Equal(2, artifact.Rows)
	s.Equal(s.tempDir, filepath.Dir(artifact.Path))
	s.Positive(artifact.Size)

	content, err := os.ReadFile(artifact.Path)
	s.Require().NoError(err)
	s.Equal("Id,Status\n1,Paid\n2,Pending\n", string(content))
}

func (s *ExportServiceTestSuite) TestCreateExportFile_DefaultColumns() {
	s.repo.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any(), gomock.Nil()).Return(exportFixture(), nil)

	artifact, err := s.service.CreateExportFile(s.ctx, &validation.ExportParams{Sort: query.DefaultSort()})
	s.Require().NoError(err)
	defer artifact.Cleanup()

	content, err := os.ReadFile(artifact.Path)
	s.Require().NoError(err)
	header := strings.SplitN(string(content), "\n", 2)[0]
	s.Equal("Id,Date,Amount,Category,Status,User_id", header)
}

func (s *ExportServiceTestSuite) TestCreateExportFile_EmptyResultIsNotFound() {
	s.repo.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any(), gomock.Nil()).Return([]models.Transaction{}, nil)

	artifact, err := s.service.CreateExportFile(s.ctx, &validation.ExportParams{Columns: models.ExportColumns()})
	s.ErrorIs(err, ErrNoExportData)
	s.Nil(artifact)
	s.Empty(s.listTempDir())
}

func (s *ExportServiceTestSuite) TestCreateExportFile_BackendFailure() {
	backendErr := errors.New("connection reset")
	s.repo.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any(), gomock.Nil()).Return(nil, backendErr)

	artifact, err := s.service.CreateExportFile(s.ctx, &validation.ExportParams{})
	s.ErrorIs(err, backendErr)
	s.Nil(artifact)
	s.Empty(s.listTempDir())
}

func (s *ExportServiceTestSuite) TestCreateExportFile_UniquePathPerRequest() {
	s.repo.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any(), gomock.Nil()).Return(exportFixture(), nil).Times(2)

	first, err := s.service.CreateExportFile(s.ctx, &validation.ExportParams{})
	s.Require().NoError(err)
	defer first.Cleanup()

	second, err := s.service.CreateExportFile(s.ctx, &validation.ExportParams{})
	s.Require().NoError(err)
	defer second.Cleanup()

	s.NotEqual(first.Path, second.Path)
	s.Equal(first.Filename, second.Filename)
}

func (s *ExportServiceTestSuite) TestCleanup_Idempotent() {
	s.repo.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any(), gomock.Nil()).Return(exportFixture(), nil)

	artifact, err := s.service.CreateExportFile(s.ctx, &validation.ExportParams{})
	s.Require().NoError(err)

	s.NoError(artifact.Cleanup())
	s.NoError(artifact.Cleanup())

	_, statErr := os.Stat(artifact.Path)
	s.True(errors.Is(statErr, os.ErrNotExist))
	s.Empty(s.listTempDir())
}

func (s *ExportServiceTestSuite) TestCreateExportFile_MissingTempDir() {
	s.service.tempDir = filepath.Join(s.tempDir, "does-not-exist")
	s.repo.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any(), gomock.Nil()).Return(exportFixture(), nil)

	artifact, err := s.service.CreateExportFile(s.ctx, &validation.ExportParams{})
	s.Error(err)
	s.Nil(artifact)
}

func (s *ExportServiceTestSuite) listTempDir() []os.DirEntry {
	entries, err := os.ReadDir(s.tempDir)
	s.Require().NoError(err)
	return entries
}

func (s *ExportServiceTestSuite) TestExportFilename() {
	at := time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))
	s.Equal("transactions_2025-01-01.csv", ExportFilename(at))
}
