package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"
	"finance-reporting/internal/repositories"
)

var (
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

type CircuitBreakerConfig struct {
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 3,
	}
}

type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker trips after consecutive storage failures and lets a trial
// request through once ResetTimeout has passed since the last failure
type CircuitBreaker struct {
	mu                sync.Mutex
	config            CircuitBreakerConfig
	state             BreakerState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
	now               func() time.Time
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Allow reports whether a call may proceed, moving an expired open breaker to half-open
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.lastFailureTime) > cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenSuccesses = 0
	}

	return cb.state != StateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.config.HalfOpenMaxSucc {
			cb.transitionTo(StateClosed)
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateHalfOpen:
		cb.transitionTo(StateOpen)
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.transitionTo(StateOpen)
		}
	}
}

func (cb *CircuitBreaker) transitionTo(state BreakerState) {
	if cb.state != state {
		slog.Warn("Storage circuit breaker changed state", "from", cb.state.String(), "to", state.String())
	}
	cb.state = state
	cb.halfOpenSuccesses = 0
	if state == StateClosed {
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// guardedTransactionRepository short-circuits storage calls while the breaker is open
type guardedTransactionRepository struct {
	repo    repositories.TransactionRepositoryInterface
	breaker *CircuitBreaker
}

// GuardTransactionRepository wraps repo so storage outages fail fast with
// ErrCircuitBreakerOpen. Cancelled requests do not count as failures.
func GuardTransactionRepository(repo repositories.TransactionRepositoryInterface, breaker *CircuitBreaker) repositories.TransactionRepositoryInterface {
	return &guardedTransactionRepository{repo: repo, breaker: breaker}
}

func (g *guardedTransactionRepository) call(fn func() error) error {
	if !g.breaker.Allow() {
		return ErrCircuitBreakerOpen
	}

	err := fn()
	switch {
	case err == nil:
		g.breaker.RecordSuccess()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	default:
		g.breaker.RecordFailure()
	}
	return err
}

func (g *guardedTransactionRepository) Find(ctx context.Context, pred query.Predicate, sort query.Sort, window *query.Window) (out []models.Transaction, err error) {
	err = g.call(func() error {
		out, err = g.repo.Find(ctx, pred, sort, window)
		return err
	})
	return out, err
}

func (g *guardedTransactionRepository) Count(ctx context.Context, pred query.Predicate) (n int64, err error) {
	err = g.call(func() error {
		n, err = g.repo.Count(ctx, pred)
		return err
	})
	return n, err
}

func (g *guardedTransactionRepository) TotalsByCategory(ctx context.Context, pred query.Predicate) (out []models.GroupTotal, err error) {
	err = g.call(func() error {
		out, err = g.repo.TotalsByCategory(ctx, pred)
		return err
	})
	return out, err
}

func (g *guardedTransactionRepository) TotalsByStatus(ctx context.Context, pred query.Predicate) (out []models.GroupTotal, err error) {
	err = g.call(func() error {
		out, err = g.repo.TotalsByStatus(ctx, pred)
		return err
	})
	return out, err
}

func (g *guardedTransactionRepository) MonthlyTrends(ctx context.Context, pred query.Predicate, limit int) (out []models.MonthlyTrend, err error) {
	err = g.call(func() error {
		out, err = g.repo.MonthlyTrends(ctx, pred, limit)
		return err
	})
	return out, err
}

func (g *guardedTransactionRepository) TopUsers(ctx context.Context, pred query.Predicate, limit int) (out []models.GroupTotal, err error) {
	err = g.call(func() error {
		out, err = g.repo.TopUsers(ctx, pred, limit)
		return err
	})
	return out, err
}

func (g *guardedTransactionRepository) Distinct(ctx context.Context, field models.DistinctField) (out []string, err error) {
	err = g.call(func() error {
		out, err = g.repo.Distinct(ctx, field)
		return err
	})
	return out, err
}

func (g *guardedTransactionRepository) CreateBatch(ctx context.Context, transactions []models.Transaction) error {
	return g.call(func() error {
		return g.repo.CreateBatch(ctx, transactions)
	})
}
