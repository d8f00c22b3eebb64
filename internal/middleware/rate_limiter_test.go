package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func limitedRequest(e *echo.Echo, handler echo.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec
}

func TestRateLimiter_AllowsBurstThenLimits(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter(2, 4)
	fixed := time.Now()
	limiter.now = func() time.Time { return fixed }
	handler := limiter.Middleware()(okHandler)

	for i := 0; i < 4; i++ {
		rec := limitedRequest(e, handler, "192.168.1.2:12345")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := limitedRequest(e, handler, "192.168.1.2:12345")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "SYSTEM_006")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter(1, 1)
	current := time.Now()
	limiter.now = func() time.Time { return current }
	handler := limiter.Middleware()(okHandler)

	assert.Equal(t, http.StatusOK, limitedRequest(e, handler, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(e, handler, "10.0.0.1:1").Code)

	current = current.Add(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, limitedRequest(e, handler, "10.0.0.1:1").Code)
}

func TestRateLimiter_DifferentIPsAreIndependent(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter(5, 5)
	fixed := time.Now()
	limiter.now = func() time.Time { return fixed }
	handler := limiter.Middleware()(okHandler)

	ips := []string{"192.168.1.1:1234", "192.168.1.2:1234", "192.168.1.3:1234"}
	for _, ip := range ips {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, limitedRequest(e, handler, ip).Code, "ip %s request %d", ip, i)
		}
		assert.Equal(t, http.StatusTooManyRequests, limitedRequest(e, handler, ip).Code)
	}
}

func TestRateLimiter_UsesForwardedFor(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter(1, 1)
	fixed := time.Now()
	limiter.now = func() time.Time { return fixed }
	handler := limiter.Middleware()(okHandler)

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "10.0.0.254:80"
		req.Header.Set(echo.HeaderXForwardedFor, forwarded)
		rec := httptest.NewRecorder()
		_ = handler(e.NewContext(req, rec))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	current := time.Now()
	limiter.now = func() time.Time { return current }

	limiter.allow("198.51.100.1")
	limiter.allow("198.51.100.2")

	current = current.Add(visitorIdleTimeout / 2)
	limiter.allow("198.51.100.2")

	current = current.Add(visitorIdleTimeout/2 + time.Second)
	limiter.evictIdle()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.visitors, "198.51.100.1")
	assert.Contains(t, limiter.visitors, "198.51.100.2")
}

func TestRateLimiter_RunStopsOnCancel(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		limiter.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter(1000, 1000)
	handler := limiter.Middleware()(okHandler)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := limitedRequest(e, handler, "172.16.0.1:5000")
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()
}

func TestNewRateLimiter_NormalizesConfig(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	assert.Equal(t, 1, limiter.burst)
	assert.Equal(t, 1, limiter.retryAfterSeconds())
}
