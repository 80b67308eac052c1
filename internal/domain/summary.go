package domain

import "time"

// SummaryTimeLayout is the layout of Summary.ProcessedAt in processing_summary.txt.
const SummaryTimeLayout = "2006-01-02 15:04:05"

// Summary is the small textual record emitted at the end of a run.
type Summary struct {
	RunID                   string
	TotalGamesOriginal      int // cleaned metadata rows
	TotalGamesWithPriceData int // feature rows
	TotalFeaturesCreated    int // feature table columns
	ProcessedAt             time.Time
}
