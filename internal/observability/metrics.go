// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// Every method is safe to call on a nil *Metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Ingestion metrics
	TitlesRead        prometheus.Counter
	PriceFilesLoaded  prometheus.Counter
	PriceFilesSkipped prometheus.Counter

	// Cleaning metrics
	RowsDropped *prometheus.CounterVec

	// Feature metrics
	FeaturesComputed prometheus.Counter
	UnjoinedSeries   prometheus.Counter
	LabelClasses     *prometheus.GaugeVec
	PartitionRows    *prometheus.GaugeVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	return NewMetricsWith(namespace, reg, reg)
}

// NewMetricsWith registers the metrics on reg and serves them from g.
func NewMetricsWith(namespace string, reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	if namespace == "" {
		namespace = "steam_price_lab"
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: g,

		// Ingestion metrics
		TitlesRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "titles_read_total",
			Help:      "Total number of metadata rows read",
		}),
		PriceFilesLoaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "price_files_loaded_total",
			Help:      "Total number of price history files loaded",
		}),
		PriceFilesSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "price_files_skipped_total",
			Help:      "Total number of price history files that failed to load",
		}),

		// Cleaning metrics
		RowsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cleaning",
			Name:      "rows_dropped_total",
			Help:      "Total number of rows or series dropped by reason",
		}, []string{"table", "reason"}),

		// Feature metrics
		FeaturesComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "records_computed_total",
			Help:      "Total number of feature records computed",
		}),
		UnjoinedSeries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "unjoined_series_total",
			Help:      "Total number of price series without a matching title",
		}),
		LabelClasses: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "label_rows",
			Help:      "Number of rows per good_buy_time class in the last run",
		}, []string{"class"}),
		PartitionRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "split",
			Name:      "partition_rows",
			Help:      "Number of rows per partition in the last run",
		}, []string{"partition"}),

		// Pipeline metrics
		PipelineRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"stage"}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulPipeline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordIngest records what the loader read.
func (m *Metrics) RecordIngest(titles, loaded, skipped int) {
	if m == nil {
		return
	}
	m.TitlesRead.Add(float64(titles))
	m.PriceFilesLoaded.Add(float64(loaded))
	m.PriceFilesSkipped.Add(float64(skipped))
}

// RecordDropped records n rows of table dropped for reason.
func (m *Metrics) RecordDropped(table, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDropped.WithLabelValues(table, reason).Add(float64(n))
}

// RecordFeatures records the join outcome.
func (m *Metrics) RecordFeatures(computed, unjoined int) {
	if m == nil {
		return
	}
	m.FeaturesComputed.Add(float64(computed))
	m.UnjoinedSeries.Add(float64(unjoined))
}

// RecordLabels records the class balance of the last run.
func (m *Metrics) RecordLabels(negatives, positives int) {
	if m == nil {
		return
	}
	m.LabelClasses.WithLabelValues("0").Set(float64(negatives))
	m.LabelClasses.WithLabelValues("1").Set(float64(positives))
}

// RecordSplit records partition sizes of the last run.
func (m *Metrics) RecordSplit(train, val, test int) {
	if m == nil {
		return
	}
	m.PartitionRows.WithLabelValues("train").Set(float64(train))
	m.PartitionRows.WithLabelValues("val").Set(float64(val))
	m.PartitionRows.WithLabelValues("test").Set(float64(test))
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordPipelineRun records a pipeline run; success also stamps the health gauge.
func (m *Metrics) RecordPipelineRun(status string, at time.Time) {
	if m == nil {
		return
	}
	m.PipelineRunsTotal.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		m.LastSuccessfulPipeline.Set(float64(at.Unix()))
	}
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// Pipeline run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
