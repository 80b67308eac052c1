// Command migrate applies the embedded schema migrations to the configured databases.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"steam-price-lab/internal/config"
	"steam-price-lab/internal/logger"
	"steam-price-lab/internal/storage/migrations"
	pgstore "steam-price-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides config)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickHouseDSN = *clickhouseDSN
	}

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Storage.PostgresDSN == "" && cfg.Storage.ClickHouseDSN == "" {
		log.Fatal("no database configured: set SPL_STORAGE_POSTGRES_DSN and/or SPL_STORAGE_CLICKHOUSE_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			log.Fatal("connect postgres", "error", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			log.Fatal("apply postgres migrations", "error", err)
		}
		pool.Close()
		log.Info("postgres migrations applied")
	}

	if dsn := cfg.Storage.ClickHouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			log.Fatal("apply clickhouse migrations", "error", err)
		}
		conn.Close()
		log.Info("clickhouse migrations applied")
	}
}
