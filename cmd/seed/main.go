package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"finance-reporting/internal/config"
	"finance-reporting/internal/repositories"
	"finance-reporting/internal/services"

	"github.com/joho/godotenv"
)

const batchSize = 1000

func main() {
	count := flag.Int("count", 5000, "number of transactions to generate")
	days := flag.Int("days", 365, "days of history to spread them over")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	store, err := repositories.OpenStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			slog.Warn("Failed to close storage", "error", err)
		}
	}()

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	generator := services.NewTransactionGenerator(*seed)

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -*days)
	transactions := generator.Generate(*count, startDate, endDate)

	for start := 0; start < len(transactions); start += batchSize {
		end := min(start+batchSize, len(transactions))
		if err := store.Transactions.CreateBatch(ctx, transactions[start:end]); err != nil {
			slog.Error("Failed to insert batch", "offset", start, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Seeded transactions",
		"count", len(transactions),
		"seed", *seed,
		"start", startDate.Format(time.RFC3339),
		"end", endDate.Format(time.RFC3339),
	)
}
