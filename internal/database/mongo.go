package database

import (
	"context"
	"fmt"
	"log/slog"

	"finance-reporting/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	TransactionsCollection = "transactions"
	UsersCollection        = "users"
)

// Mongo holds a connected client and the reporting database
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// ConnectMongo connects, verifies the primary answers and ensures indexes exist
func ConnectMongo(ctx context.Context, cfg *config.MongoConfig) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	m := &Mongo{Client: client, Database: client.Database(cfg.Database)}

	if err := m.EnsureIndexes(ctx); err != nil {
		slog.Warn("Failed to create some mongo indexes", "error", err)
	}

	slog.Info("Mongo connected", "database", cfg.Database)
	return m, nil
}

// EnsureIndexes creates the indexes the listing and analytics queries rely on
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.Database.Collection(TransactionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "amount", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}

	_, err = m.Database.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}

func (m *Mongo) HealthCheck(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
