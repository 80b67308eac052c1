// Package pipeline runs the processing stages over an ingested dataset:
// clean → transform → aggregate features → synthesize labels → split.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"steam-price-lab/internal/cleaning"
	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/features"
	"steam-price-lab/internal/ingest"
	"steam-price-lab/internal/labeling"
	"steam-price-lab/internal/logger"
	"steam-price-lab/internal/observability"
	"steam-price-lab/internal/reporting"
	"steam-price-lab/internal/splitting"
	"steam-price-lab/internal/transform"
)

// Stage names used in logs and metrics.
const (
	StageClean     = "clean"
	StageTransform = "transform"
	StageFeatures  = "features"
	StageLabel     = "label"
	StageSplit     = "split"
)

// Options configures the stages.
type Options struct {
	Cleaning cleaning.Options
	Workers  int // feature aggregation workers
	Split    splitting.Options
}

// DefaultOptions returns the default stage options.
func DefaultOptions() Options {
	return Options{
		Cleaning: cleaning.DefaultOptions(),
		Workers:  1,
		Split:    splitting.DefaultOptions(),
	}
}

// Pipeline threads a dataset through the processing stages.
type Pipeline struct {
	opts    Options
	clock   func() time.Time
	newID   func() string
	log     *logger.Logger
	metrics *observability.Metrics
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		opts:  opts,
		clock: func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
		log:   logger.Nop(),
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// WithRunID fixes the run identifier instead of generating one.
func (p *Pipeline) WithRunID(id string) *Pipeline {
	p.newID = func() string { return id }
	return p
}

// WithLogger sets the stage logger.
func (p *Pipeline) WithLogger(log *logger.Logger) *Pipeline {
	if log != nil {
		p.log = log
	}
	return p
}

// WithMetrics records stage counts and durations on m.
func (p *Pipeline) WithMetrics(m *observability.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// Result holds every intermediate table of a run.
type Result struct {
	RunID    string
	Catalog  *domain.Catalog
	Features []domain.FeatureRecord // labeled
	Labels   *labeling.Result
	Dataset  *splitting.Dataset
	Summary  domain.Summary
	Report   *reporting.Report

	Cleaning  cleaning.Report
	Transform transform.Report
	Join      features.Report
}

// Run executes all stages. The context is checked between stages.
func (p *Pipeline) Run(ctx context.Context, in *ingest.Dataset) (res *Result, err error) {
	if in == nil {
		return nil, fmt.Errorf("run pipeline: nil dataset")
	}

	res = &Result{RunID: p.newID()}
	log := p.log.With("run_id", res.RunID)
	defer func() {
		status := observability.StatusSuccess
		if err != nil {
			status = observability.StatusFailure
			log.Error("pipeline failed", "error", err)
		}
		p.metrics.RecordPipelineRun(status, p.clock())
	}()

	// Stage 1: clean
	var cleaned *cleaning.Result
	if err := p.stage(ctx, StageClean, func() error {
		cleaned = cleaning.Clean(in.Titles, in.Prices, p.opts.Cleaning)
		res.Cleaning = cleaned.Report
		r := cleaned.Report
		log.Info("cleaned data",
			"titles_in", r.TitlesIn, "titles_out", r.TitlesOut,
			"missing_required", r.MissingRequired, "duplicates", r.Duplicates,
			"series_in", r.SeriesIn, "series_out", r.SeriesOut,
			"incomplete_rows", r.IncompleteRows, "invalid_dates", r.InvalidDates, "short_series", len(r.ShortSeriesKeys))
		p.metrics.RecordDropped("titles", "missing_required", r.MissingRequired)
		p.metrics.RecordDropped("titles", "duplicate", r.Duplicates)
		p.metrics.RecordDropped("prices", "incomplete_row", r.IncompleteRows)
		p.metrics.RecordDropped("prices", "invalid_date", r.InvalidDates)
		p.metrics.RecordDropped("prices", "short_series", len(r.ShortSeriesKeys))
		return nil
	}); err != nil {
		return nil, err
	}

	// Stage 2: transform
	if err := p.stage(ctx, StageTransform, func() error {
		catalog, tr := transform.Apply(cleaned.Titles, cleaned.Prices)
		res.Catalog = catalog
		res.Transform = tr
		log.Info("transformed data",
			"titles", len(catalog.Titles), "series", len(catalog.Prices),
			"unparsed_release_dates", tr.UnparsedReleaseDates,
			"unparsed_rows", tr.UnparsedRows, "non_numeric_keys", len(tr.NonNumericKeys))
		p.metrics.RecordDropped("prices", "unparsed_date", tr.UnparsedRows)
		return nil
	}); err != nil {
		return nil, err
	}

	// Stage 3: features
	var records []domain.FeatureRecord
	if err := p.stage(ctx, StageFeatures, func() error {
		var err error
		records, res.Join, err = features.NewAggregator(p.opts.Workers).Aggregate(ctx, res.Catalog)
		if err != nil {
			return err
		}
		log.Info("computed features",
			"records", len(records), "columns", len(domain.FeatureColumns()),
			"unjoined", len(res.Join.Unjoined), "duplicate_keys", len(res.Join.Duplicates))
		p.metrics.RecordFeatures(len(records), len(res.Join.Unjoined))
		return nil
	}); err != nil {
		return nil, err
	}

	// Stage 4: labels
	if err := p.stage(ctx, StageLabel, func() error {
		labels, err := labeling.Synthesize(records)
		if err != nil {
			return err
		}
		res.Labels = labels
		res.Features = labels.Records
		log.Info("synthesized labels",
			"discount_frequency_median", labels.Thresholds.DiscountFrequency,
			"avg_discount_median", labels.Thresholds.AvgDiscount,
			"max_savings_median", labels.Thresholds.MaxSavings,
			"positives", labels.Positives, "negatives", labels.Negatives)
		p.metrics.RecordLabels(labels.Negatives, labels.Positives)
		return nil
	}); err != nil {
		return nil, err
	}

	// Stage 5: split
	if err := p.stage(ctx, StageSplit, func() error {
		ds, err := splitting.Split(res.Features, p.opts.Split)
		if err != nil {
			return err
		}
		res.Dataset = ds
		s := ds.Sizes()
		log.Info("split dataset",
			"train", s.Train, "train_pct", s.TrainPct,
			"val", s.Val, "val_pct", s.ValPct,
			"test", s.Test, "test_pct", s.TestPct,
			"features", len(ds.FeatureNames))
		p.metrics.RecordSplit(s.Train, s.Val, s.Test)
		return nil
	}); err != nil {
		return nil, err
	}

	now := p.clock()
	res.Summary = domain.Summary{
		RunID:                   res.RunID,
		TotalGamesOriginal:      len(res.Catalog.Titles),
		TotalGamesWithPriceData: len(res.Features),
		TotalFeaturesCreated:    len(domain.FeatureColumns()),
		ProcessedAt:             now,
	}
	res.Report = buildReport(res, in.Report, now)
	log.Info("pipeline completed",
		"titles", res.Summary.TotalGamesOriginal,
		"feature_rows", res.Summary.TotalGamesWithPriceData)
	return res, nil
}

// stage checks for cancellation, runs fn and records its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	err := fn()
	p.metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func buildReport(res *Result, ingestReport ingest.Report, now time.Time) *reporting.Report {
	sizes := res.Dataset.Sizes()
	return &reporting.Report{
		GeneratedAt: now,
		RunID:       res.RunID,
		Ingest: reporting.IngestSection{
			TitlesRead:        res.Cleaning.TitlesIn,
			PriceFilesFound:   ingestReport.PriceFilesFound,
			PriceFilesLoaded:  ingestReport.PriceFilesLoaded,
			PriceFilesSkipped: ingestReport.PriceFilesSkipped,
		},
		Cleaning: reporting.CleaningSection{
			TitlesIn:        res.Cleaning.TitlesIn,
			TitlesOut:       res.Cleaning.TitlesOut,
			MissingRequired: res.Cleaning.MissingRequired,
			Duplicates:      res.Cleaning.Duplicates,
			SeriesIn:        res.Cleaning.SeriesIn,
			SeriesOut:       res.Cleaning.SeriesOut,
			IncompleteRows:  res.Cleaning.IncompleteRows,
			InvalidDates:    res.Cleaning.InvalidDates,
			ShortSeries:     len(res.Cleaning.ShortSeriesKeys),
		},
		Transform: reporting.TransformSection{
			UnparsedReleaseDates: res.Transform.UnparsedReleaseDates,
			UnparsedRows:         res.Transform.UnparsedRows,
		},
		Features: reporting.FeatureSection{
			Rows:     len(res.Features),
			Columns:  len(domain.FeatureColumns()),
			Unjoined: res.Join.Unjoined,
		},
		Labels: reporting.LabelSection{
			DiscountFrequencyMedian: res.Labels.Thresholds.DiscountFrequency,
			AvgDiscountMedian:       res.Labels.Thresholds.AvgDiscount,
			MaxSavingsMedian:        res.Labels.Thresholds.MaxSavings,
			Positives:               res.Labels.Positives,
			Negatives:               res.Labels.Negatives,
		},
		Split: reporting.SplitSection{
			Train:    sizes.Train,
			Val:      sizes.Val,
			Test:     sizes.Test,
			TrainPct: sizes.TrainPct,
			ValPct:   sizes.ValPct,
			TestPct:  sizes.TestPct,
		},
	}
}
