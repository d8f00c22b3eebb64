package repositories

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"finance-reporting/internal/database"
	"finance-reporting/internal/models"
	"finance-reporting/internal/query"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTransactionRepository serves reporting queries from the transactions collection
type MongoTransactionRepository struct {
	coll *mongo.Collection
}

func NewMongoTransactionRepository(db *mongo.Database) TransactionRepositoryInterface {
	return &MongoTransactionRepository{coll: db.Collection(database.TransactionsCollection)}
}

// transactionDocument is the stored shape; amounts are doubles in the collection
type transactionDocument struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          int64              `bson:"id"`
	Date        time.Time          `bson:"date"`
	Amount      float64            `bson:"amount"`
	Category    string             `bson:"category"`
	Status      string             `bson:"status"`
	UserID      string             `bson:"user_id"`
	UserProfile string             `bson:"user_profile"`
}

func (d transactionDocument) toModel() models.Transaction {
	return models.Transaction{
		ID:          d.ID,
		Date:        d.Date.UTC(),
		Amount:      decimal.NewFromFloat(d.Amount),
		Category:    d.Category,
		Status:      d.Status,
		UserID:      d.UserID,
		UserProfile: d.UserProfile,
	}
}

func newTransactionDocument(t models.Transaction) transactionDocument {
	return transactionDocument{
		ID:          t.ID,
		Date:        t.Date.UTC(),
		Amount:      t.Amount.InexactFloat64(),
		Category:    t.Category,
		Status:      t.Status,
		UserID:      t.UserID,
		UserProfile: t.UserProfile,
	}
}

type groupDocument struct {
	Key   string  `bson:"_id"`
	Total float64 `bson:"total"`
	Count int64   `bson:"count"`
}

type monthDocument struct {
	Key struct {
		Year  int `bson:"year"`
		Month int `bson:"month"`
	} `bson:"_id"`
	Revenue  float64 `bson:"revenue"`
	Expenses float64 `bson:"expenses"`
	Count    int64   `bson:"count"`
}

// mongoValue converts predicate values into BSON-native types
func mongoValue(v interface{}) interface{} {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.InexactFloat64()
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}

// mongoFilter translates a predicate into a find/$match document. Range bounds
// on one field merge into a single operator document.
func mongoFilter(pred query.Predicate) bson.M {
	filter := bson.M{}

	for _, c := range pred.Conditions() {
		value := mongoValue(c.Value)
		switch c.Op {
		case query.OpEq:
			filter[c.Field] = value
		case query.OpGte, query.OpLte:
			ops, ok := filter[c.Field].(bson.M)
			if !ok {
				ops = bson.M{}
				filter[c.Field] = ops
			}
			if c.Op == query.OpGte {
				ops["$gte"] = value
			} else {
				ops["$lte"] = value
			}
		}
	}

	if pred.HasSearch() {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(pred.Search()), Options: "i"}
		or := make(bson.A, 0, len(query.SearchFields))
		for _, field := range query.SearchFields {
			or = append(or, bson.M{field: pattern})
		}
		filter["$or"] = or
	}

	return filter
}

func sortDirection(s query.Sort) int {
	if s.Descending() {
		return -1
	}
	return 1
}

func findOptions(s query.Sort, window *query.Window) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{
		{Key: string(s.Field), Value: sortDirection(s)},
		{Key: "_id", Value: 1},
	})
	if window != nil {
		opts.SetSkip(int64(window.Skip)).SetLimit(int64(window.Take))
	}
	return opts
}

func groupStage(key interface{}) bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: key},
		{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}
}

func totalsPipeline(pred query.Predicate, field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: mongoFilter(pred)}},
		groupStage("$" + field),
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func topUsersPipeline(pred query.Predicate, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: mongoFilter(pred)}},
		groupStage("$user_id"),
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

func sumWhenCategory(category string) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$category", category}}},
		"$amount",
		0,
	}}}}}
}

func monthlyTrendsPipeline(pred query.Predicate, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: mongoFilter(pred)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: "$date"}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: "$date"}}},
			}},
			{Key: "revenue", Value: sumWhenCategory(models.CategoryRevenue)},
			{Key: "expenses", Value: sumWhenCategory(models.CategoryExpense)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

func (r *MongoTransactionRepository) Find(ctx context.Context, pred query.Predicate, s query.Sort, window *query.Window) ([]models.Transaction, error) {
	if !models.IsValidSortField(string(s.Field)) {
		return nil, fmt.Errorf("%w: sort by %q", ErrUnsupportedField, s.Field)
	}

	cursor, err := r.coll.Find(ctx, mongoFilter(pred), findOptions(s, window))
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	transactions := make([]models.Transaction, len(docs))
	for i, doc := range docs {
		transactions[i] = doc.toModel()
	}
	return transactions, nil
}

func (r *MongoTransactionRepository) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, mongoFilter(pred))
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

func (r *MongoTransactionRepository) TotalsByCategory(ctx context.Context, pred query.Predicate) ([]models.GroupTotal, error) {
	return r.aggregateTotals(ctx, totalsPipeline(pred, query.FieldCategory))
}

func (r *MongoTransactionRepository) TotalsByStatus(ctx context.Context, pred query.Predicate) ([]models.GroupTotal, error) {
	return r.aggregateTotals(ctx, totalsPipeline(pred, query.FieldStatus))
}

func (r *MongoTransactionRepository) TopUsers(ctx context.Context, pred query.Predicate, limit int) ([]models.GroupTotal, error) {
	return r.aggregateTotals(ctx, topUsersPipeline(pred, limit))
}

func (r *MongoTransactionRepository) aggregateTotals(ctx context.Context, pipeline mongo.Pipeline) ([]models.GroupTotal, error) {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	var docs []groupDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}

	totals := make([]models.GroupTotal, len(docs))
	for i, doc := range docs {
		totals[i] = models.GroupTotal{Key: doc.Key, Total: decimal.NewFromFloat(doc.Total), Count: doc.Count}
	}
	return totals, nil
}

func (r *MongoTransactionRepository) MonthlyTrends(ctx context.Context, pred query.Predicate, limit int) ([]models.MonthlyTrend, error) {
	cursor, err := r.coll.Aggregate(ctx, monthlyTrendsPipeline(pred, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly trends: %w", err)
	}

	var docs []monthDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode monthly trends: %w", err)
	}

	trends := make([]models.MonthlyTrend, len(docs))
	for i, doc := range docs {
		trends[i] = models.MonthlyTrend{
			Year:     doc.Key.Year,
			Month:    doc.Key.Month,
			Revenue:  decimal.NewFromFloat(doc.Revenue),
			Expenses: decimal.NewFromFloat(doc.Expenses),
			Count:    doc.Count,
		}
	}
	return trends, nil
}

func (r *MongoTransactionRepository) Distinct(ctx context.Context, field models.DistinctField) ([]string, error) {
	switch field {
	case models.DistinctCategory, models.DistinctStatus, models.DistinctUserID:
	default:
		return nil, fmt.Errorf("%w: distinct %q", ErrUnsupportedField, field)
	}

	raw, err := r.coll.Distinct(ctx, string(field), bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}

func (r *MongoTransactionRepository) CreateBatch(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	docs := make([]interface{}, len(transactions))
	for i, t := range transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		docs[i] = newTransactionDocument(t)
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}
