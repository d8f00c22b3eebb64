package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"finance-reporting/internal/config"
	"finance-reporting/internal/database"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	path := flag.String("path", "db/migrations", "directory holding the versioned SQL migrations")
	seedsPath := flag.String("seeds", "db/seeds", "directory holding optional *.sql seed files")
	seed := flag.Bool("seed", false, "load seed files after migrating up")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] up|down|status\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment")
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if cfg.Database.Driver != config.DriverPostgres {
		slog.Error("Versioned migrations only run against postgres", "driver", cfg.Database.Driver)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL())
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	runner := database.NewMigrationRunner(db,
		database.WithMigrationsPath(*path),
		database.WithSeedsPath(*seedsPath),
		database.WithSeeds(*seed),
	)

	if err := run(context.Background(), runner, flag.Arg(0)); err != nil {
		slog.Error("Migration command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, runner *database.MigrationRunner, command string) error {
	switch command {
	case "up":
		if err := runner.WaitForDatabase(ctx); err != nil {
			return err
		}
		if err := runner.Up(); err != nil {
			return err
		}
		return runner.LoadSeeds()
	case "down":
		if err := runner.Down(); err != nil {
			return err
		}
		slog.Info("Rolled back all migrations")
		return nil
	case "status":
		version, dirty, err := runner.Status()
		if err != nil {
			return err
		}
		slog.Info("Migration status", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
