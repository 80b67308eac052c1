package reporting

import "time"

// Report represents the run report written to processing_report.md.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	Ingest    IngestSection
	Cleaning  CleaningSection
	Transform TransformSection
	Features  FeatureSection
	Labels    LabelSection
	Split     SplitSection
}

// IngestSection counts what was read from disk.
type IngestSection struct {
	TitlesRead        int
	PriceFilesFound   int
	PriceFilesLoaded  int
	PriceFilesSkipped []string
}

// CleaningSection contains the cleaner's counts.
type CleaningSection struct {
	TitlesIn        int
	TitlesOut       int
	MissingRequired int
	Duplicates      int
	SeriesIn        int
	SeriesOut       int
	IncompleteRows  int
	InvalidDates    int
	ShortSeries     int
}

// TransformSection counts values the transformer could not parse.
type TransformSection struct {
	UnparsedReleaseDates int
	UnparsedRows         int
}

// FeatureSection describes the joined feature table.
type FeatureSection struct {
	Rows     int
	Columns  int
	Unjoined []string // price keys with no matching title
}

// LabelSection contains label thresholds and class balance.
type LabelSection struct {
	DiscountFrequencyMedian float64
	AvgDiscountMedian       float64
	MaxSavingsMedian        float64
	Positives               int
	Negatives               int
}

// SplitSection contains partition sizes.
type SplitSection struct {
	Train    int
	Val      int
	Test     int
	TrainPct float64
	ValPct   float64
	TestPct  float64
}
