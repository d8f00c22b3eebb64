package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finance-reporting/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type RequestIDTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *RequestIDTestSuite) SetupTest() {
	s.echo = echo.New()
}

func TestRequestIDTestSuite(t *testing.T) {
	suite.Run(t, new(RequestIDTestSuite))
}

// run passes a request with headers through RequestID and returns the trace ID
// the handler observed together with the recorder
func (s *RequestIDTestSuite) run(headers map[string]string) (string, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	var seen string
	err := RequestID()(func(c echo.Context) error {
		seen = GetTraceID(c)
		s.Equal(seen, services.RequestIDFromContext(c.Request().Context()))
		return c.NoContent(http.StatusOK)
	})(c)
	s.Require().NoError(err)

	s.Equal(seen, rec.Header().Get(TraceIDHeader))
	return seen, rec
}

func (s *RequestIDTestSuite) assertGenerated(traceID string) {
	_, err := uuid.Parse(traceID)
	s.NoError(err, "expected a generated uuid, got %q", traceID)
}

func (s *RequestIDTestSuite) TestGeneratesTraceID() {
	traceID, _ := s.run(nil)
	s.assertGenerated(traceID)
}

func (s *RequestIDTestSuite) TestGeneratesDistinctIDs() {
	first, _ := s.run(nil)
	second, _ := s.run(nil)
	s.NotEqual(first, second)
}

func (s *RequestIDTestSuite) TestReusesClientTraceID() {
	traceID, _ := s.run(map[string]string{TraceIDHeader: "dashboard-7f3a:42"})
	s.Equal("dashboard-7f3a:42", traceID)
}

func (s *RequestIDTestSuite) TestTraceHeaderWinsOverRequestID() {
	traceID, _ := s.run(map[string]string{
		TraceIDHeader:         "from-trace",
		echo.HeaderXRequestID: "from-request",
	})
	s.Equal("from-trace", traceID)
}

func (s *RequestIDTestSuite) TestFallsBackToRequestIDHeader() {
	traceID, _ := s.run(map[string]string{echo.HeaderXRequestID: "lb-request-1"})
	s.Equal("lb-request-1", traceID)
}

func (s *RequestIDTestSuite) TestReplacesUnsafeTraceIDs() {
	for name, value := range map[string]string{
		"oversized":   strings.Repeat("a", maxTraceIDLength+1),
		"spaces":      "trace id",
		"log forging": "abc\" level=ERROR",
	} {
		s.Run(name, func() {
			traceID, _ := s.run(map[string]string{TraceIDHeader: value})
			s.assertGenerated(traceID)
		})
	}
}

func (s *RequestIDTestSuite) TestAcceptsMaxLengthTraceID() {
	id := strings.Repeat("b", maxTraceIDLength)
	traceID, _ := s.run(map[string]string{TraceIDHeader: id})
	s.Equal(id, traceID)
}

func (s *RequestIDTestSuite) TestGetTraceID_EmptyOutsideMiddleware() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	s.Empty(GetTraceID(c))

	c.Set(TraceIDContextKey, 42)
	s.Empty(GetTraceID(c))
}
