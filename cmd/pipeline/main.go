// Command pipeline loads the storefront dataset, runs the processing stages
// and writes the artifacts (CSV, summary, report, workbook, chart).
// Titles, features and price history are also persisted when DSNs are configured.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"steam-price-lab/internal/cleaning"
	"steam-price-lab/internal/config"
	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/ingest"
	"steam-price-lab/internal/logger"
	"steam-price-lab/internal/observability"
	"steam-price-lab/internal/pipeline"
	"steam-price-lab/internal/plotting"
	"steam-price-lab/internal/reporting"
	"steam-price-lab/internal/splitting"
	"steam-price-lab/internal/storage"
	chstore "steam-price-lab/internal/storage/clickhouse"
	"steam-price-lab/internal/storage/memory"
	"steam-price-lab/internal/storage/migrations"
	pgstore "steam-price-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	dataDir := flag.String("data-dir", "", "Directory containing applicationInformation.csv and PriceHistory/ (overrides config)")
	outputDir := flag.String("output-dir", "", "Output directory for generated files (overrides config)")
	sampleSize := flag.Int("sample-size", -1, "Maximum number of price files to load, 0 for all (overrides config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *sampleSize >= 0 {
		cfg.Data.SampleSize = *sampleSize
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("run failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	var m *observability.Metrics
	if cfg.Metrics.Enabled {
		m = observability.NewMetrics(cfg.Metrics.Namespace)
		srv := startMetricsServer(cfg.Metrics.Addr, m, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// 1. Ingest
	start := time.Now()
	loader := ingest.NewLoader(cfg.Data.Dir, cfg.Data.SampleSize, log)
	ds, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	m.ObserveStage("ingest", time.Since(start))
	m.RecordIngest(len(ds.Titles), ds.Report.PriceFilesLoaded, len(ds.Report.PriceFilesSkipped))

	// 2. Process
	opts := pipeline.Options{
		Cleaning: cleaning.Options{MinObservations: cfg.Data.MinObservations},
		Workers:  cfg.Data.Workers,
		Split: splitting.Options{
			TestSize: cfg.Split.TestSize,
			ValSize:  cfg.Split.ValSize,
			Seed:     cfg.Split.Seed,
		},
	}
	res, err := pipeline.New(opts).WithLogger(log).WithMetrics(m).Run(ctx, ds)
	if err != nil {
		return err
	}

	// 3. Artifacts
	written, err := reporting.NewWriter(cfg.Output.Dir, log).
		WithWorkbook(cfg.Output.Workbook).
		Write(ctx, reporting.Artifacts{
			Titles:   res.Catalog.Titles,
			Features: res.Features,
			Summary:  res.Summary,
			Report:   res.Report,
		})
	if err != nil {
		return fmt.Errorf("write artifacts: %w", err)
	}
	if cfg.Output.Chart {
		path := filepath.Join(cfg.Output.Dir, plotting.ChartFile)
		if err := plotting.Save(path, res.Features); err != nil {
			// The chart is optional output
			log.Warn("chart not written", "path", path, "error", err)
		} else {
			written = append(written, path)
		}
	}

	// 4. Persistence
	if err := persist(ctx, cfg.Storage, res, m, log); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}

	log.Info("run completed",
		"run_id", res.RunID,
		"files", written,
		"total_games_original", res.Summary.TotalGamesOriginal,
		"total_games_with_price_data", res.Summary.TotalGamesWithPriceData,
		"total_features_created", res.Summary.TotalFeaturesCreated)
	return nil
}

// persist writes titles and features to Postgres and observations to ClickHouse.
// A backend without a DSN is replaced by an in-memory store.
func persist(ctx context.Context, sc config.StorageConfig, res *pipeline.Result, m *observability.Metrics, log *logger.Logger) error {
	if sc.PostgresDSN == "" && sc.ClickHouseDSN == "" {
		log.Debug("no storage configured, skipping persistence")
		return nil
	}

	var (
		titleStore   storage.TitleStore        = memory.NewTitleStore()
		featureStore storage.FeatureStore      = memory.NewFeatureStore()
		priceStore   storage.PriceHistoryStore = memory.NewPriceHistoryStore()
	)

	if sc.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, sc.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		pool.WithMetrics(m)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		titleStore = pgstore.NewTitleStore(pool)
		featureStore = pgstore.NewFeatureStore(pool)
	}

	if sc.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, sc.ClickHouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()
		priceStore = chstore.NewPriceHistoryStore(conn.WithMetrics(m))
	}

	if err := storage.SaveCatalog(ctx, titleStore, priceStore, res.Catalog); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("catalog already stored (tables are append-only): %w", err)
		}
		return err
	}

	records := make([]*domain.FeatureRecord, len(res.Features))
	for i := range res.Features {
		records[i] = &res.Features[i]
	}
	if err := featureStore.InsertBulk(ctx, records); err != nil {
		return fmt.Errorf("insert feature records: %w", err)
	}

	log.Info("persisted results",
		"titles", len(res.Catalog.Titles),
		"series", len(res.Catalog.Prices),
		"feature_records", len(records),
		"postgres", sc.PostgresDSN != "",
		"clickhouse", sc.ClickHouseDSN != "")
	return nil
}

func startMetricsServer(addr string, m *observability.Metrics, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
