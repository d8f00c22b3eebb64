package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"finance-reporting/internal/config"
	"finance-reporting/internal/models"
	"finance-reporting/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "reporting.db"),
		AutoMigrate: true,
	}}

	store, err := OpenStorage(ctx, cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close(ctx)) }()

	require.NoError(t, store.HealthCheck(ctx))

	require.NoError(t, store.Transactions.CreateBatch(ctx, []models.Transaction{
		newTransaction(1, day(2024, 1, 10), "100.00", models.CategoryRevenue, models.StatusPaid, "user_a", "Alice Analyst"),
		newTransaction(2, day(2024, 1, 20), "40.00", models.CategoryExpense, models.StatusPending, "user_b", "Bob Builder"),
	}))

	count, err := store.Transactions.Count(ctx, query.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = store.Users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}}

	store, err := OpenStorage(context.Background(), cfg)

	assert.Error(t, err)
	assert.Nil(t, store)
}
