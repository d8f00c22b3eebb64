package repositories

import (
	"context"
	"testing"
	"time"

	"finance-reporting/internal/models"
	"finance-reporting/internal/query"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoFilter_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoFilter(query.Predicate{}))
}

func TestMongoFilter_EqualityAndRanges(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	min := decimal.RequireFromString("100.5")
	max := decimal.NewFromInt(900)

	filter := mongoFilter(query.Build(query.Filter{
		Category:  models.CategoryRevenue,
		Status:    models.StatusPaid,
		UserID:    "user_001",
		StartDate: &start,
		EndDate:   &end,
		MinAmount: &min,
		MaxAmount: &max,
	}))

	assert.Equal(t, bson.M{
		"category": "Revenue",
		"status":   "Paid",
		"user_id":  "user_001",
		"date":     bson.M{"$gte": start, "$lte": end},
		"amount":   bson.M{"$gte": 100.5, "$lte": 900.0},
	}, filter)
}

func TestMongoFilter_HalfOpenRange(t *testing.T) {
	min := decimal.NewFromInt(10)

	filter := mongoFilter(query.Build(query.Filter{MinAmount: &min}))

	assert.Equal(t, bson.M{"amount": bson.M{"$gte": 10.0}}, filter)
}

func TestMongoFilter_SearchIsEscapedCaseInsensitiveDisjunction(t *testing.T) {
	filter := mongoFilter(query.Build(query.Filter{Status: models.StatusPending, Search: "a.b*"}))

	regex := primitive.Regex{Pattern: `a\.b\*`, Options: "i"}
	assert.Equal(t, bson.M{
		"status": "Pending",
		"$or": bson.A{
			bson.M{"category": regex},
			bson.M{"status": regex},
			bson.M{"user_id": regex},
			bson.M{"user_profile": regex},
		},
	}, filter)
}

func TestFindOptions(t *testing.T) {
	window := query.Window{Skip: 20, Take: 10}

	opts := findOptions(query.Sort{Field: models.SortByAmount, Order: models.SortDesc}, &window)

	assert.Equal(t, bson.D{{Key: "amount", Value: -1}, {Key: "_id", Value: 1}}, opts.Sort)
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(20), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)

	unbounded := findOptions(query.DefaultSort(), nil)
	assert.Nil(t, unbounded.Skip)
	assert.Nil(t, unbounded.Limit)
}

func TestTotalsPipeline(t *testing.T) {
	pipeline := totalsPipeline(query.Build(query.Filter{Status: models.StatusPaid}), query.FieldCategory)

	require.Len(t, pipeline, 3)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.M{"status": "Paid"}}}, pipeline[0])
	assert.Equal(t, groupStage("$category"), pipeline[1])
}

func TestTopUsersPipeline(t *testing.T) {
	pipeline := topUsersPipeline(query.Predicate{}, 5)

	require.Len(t, pipeline, 4)
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}}, pipeline[2])
	assert.Equal(t, bson.D{{Key: "$limit", Value: 5}}, pipeline[3])
}

func TestMonthlyTrendsPipeline(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pipeline := monthlyTrendsPipeline(query.ForDateRange(query.DateRange{Start: &start}), 12)

	require.Len(t, pipeline, 4)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": start}}}}, pipeline[0])
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}}, pipeline[2])
	assert.Equal(t, bson.D{{Key: "$limit", Value: 12}}, pipeline[3])
}

func TestTransactionDocument_RoundTrip(t *testing.T) {
	tx := models.Transaction{
		ID:          42,
		Date:        time.Date(2024, 2, 29, 8, 0, 0, 0, time.FixedZone("CET", 3600)),
		Amount:      decimal.RequireFromString("-12.5"),
		Category:    models.CategoryExpense,
		Status:      models.StatusPending,
		UserID:      "user_042",
		UserProfile: "Dana",
	}

	got := newTransactionDocument(tx).toModel()

	assert.Equal(t, tx.ID, got.ID)
	assert.True(t, tx.Date.Equal(got.Date))
	assert.Equal(t, time.UTC, got.Date.Location())
	assert.True(t, tx.Amount.Equal(got.Amount))
	assert.Equal(t, tx.UserProfile, got.UserProfile)
}

func TestMongoTransactionRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find decodes documents", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "id", Value: int64(7)},
				{Key: "date", Value: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
				{Key: "amount", Value: 99.5},
				{Key: "category", Value: "Revenue"},
				{Key: "status", Value: "Paid"},
				{Key: "user_id", Value: "user_007"},
				{Key: "user_profile", Value: "Bond"},
			}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)
		repo := &MongoTransactionRepository{coll: mt.Coll}

		got, err := repo.Find(ctx, query.Predicate{}, query.DefaultSort(), nil)

		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, int64(7), got[0].ID)
		assert.True(mt, decimal.RequireFromString("99.5").Equal(got[0].Amount))
		assert.Equal(mt, "user_007", got[0].UserID)
	})

	mt.Run("top users decode group rows", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "user_b"}, {Key: "total", Value: 500.0}, {Key: "count", Value: int32(3)}},
				bson.D{{Key: "_id", Value: "user_a"}, {Key: "total", Value: int32(120)}, {Key: "count", Value: int32(1)}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)
		repo := &MongoTransactionRepository{coll: mt.Coll}

		top, err := repo.TopUsers(ctx, query.Predicate{}, 5)

		require.NoError(mt, err)
		require.Len(mt, top, 2)
		assert.Equal(mt, "user_b", top[0].Key)
		assert.Equal(mt, int64(3), top[0].Count)
		assert.True(mt, decimal.NewFromInt(120).Equal(top[1].Total))
	})

	mt.Run("monthly trends decode bucket keys", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: bson.D{{Key: "year", Value: int32(2024)}, {Key: "month", Value: int32(3)}}},
				{Key: "revenue", Value: 300.0},
				{Key: "expenses", Value: 45.5},
				{Key: "count", Value: int32(4)},
			}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)
		repo := &MongoTransactionRepository{coll: mt.Coll}

		trends, err := repo.MonthlyTrends(ctx, query.Predicate{}, 12)

		require.NoError(mt, err)
		require.Len(mt, trends, 1)
		assert.Equal(mt, 2024, trends[0].Year)
		assert.Equal(mt, 3, trends[0].Month)
		assert.True(mt, decimal.RequireFromString("45.5").Equal(trends[0].Expenses))
		assert.Equal(mt, int64(4), trends[0].Count)
	})

	mt.Run("aggregation failure surfaces", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad pipeline"}))
		repo := &MongoTransactionRepository{coll: mt.Coll}

		_, err := repo.TotalsByCategory(ctx, query.Predicate{})

		assert.Error(mt, err)
	})

	mt.Run("distinct sorts values", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"user_c", "user_a", "user_b"}}))
		repo := &MongoTransactionRepository{coll: mt.Coll}

		users, err := repo.Distinct(ctx, models.DistinctUserID)

		require.NoError(mt, err)
		assert.Equal(mt, []string{"user_a", "user_b", "user_c"}, users)
	})

	mt.Run("count", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(23)}}))
		repo := &MongoTransactionRepository{coll: mt.Coll}

		total, err := repo.Count(ctx, query.Predicate{})

		require.NoError(mt, err)
		assert.Equal(mt, int64(23), total)
	})
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		repo := &MongoUserRepository{coll: mt.Coll}

		err := repo.Create(ctx, &models.User{Username: "analyst_1", PasswordHash: "hash"})

		assert.ErrorIs(mt, err, ErrUserAlreadyExists)
	})

	mt.Run("not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := &MongoUserRepository{coll: mt.Coll}

		_, err := repo.GetByUsername(ctx, "ghost")

		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("create assigns identity", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := &MongoUserRepository{coll: mt.Coll}
		user := &models.User{Username: "analyst_1", PasswordHash: "hash"}

		require.NoError(mt, repo.Create(ctx, user))
		assert.NotEmpty(mt, user.ID.String())
		assert.False(mt, user.CreatedAt.IsZero())
	})
}
