package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Processing Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))
	}

	// Ingestion
	sb.WriteString("## Ingestion\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Titles Read | %d |\n", r.Ingest.TitlesRead))
	sb.WriteString(fmt.Sprintf("| Price Files Found | %d |\n", r.Ingest.PriceFilesFound))
	sb.WriteString(fmt.Sprintf("| Price Files Loaded | %d |\n", r.Ingest.PriceFilesLoaded))
	sb.WriteString(fmt.Sprintf("| Price Files Skipped | %d |\n", len(r.Ingest.PriceFilesSkipped)))
	sb.WriteString("\n")
	if len(r.Ingest.PriceFilesSkipped) > 0 {
		for _, p := range r.Ingest.PriceFilesSkipped {
			sb.WriteString(fmt.Sprintf("- %s\n", p))
		}
		sb.WriteString("\n")
	}

	// Cleaning
	sb.WriteString("## Cleaning\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Titles In | %d |\n", r.Cleaning.TitlesIn))
	sb.WriteString(fmt.Sprintf("| Titles Out | %d |\n", r.Cleaning.TitlesOut))
	sb.WriteString(fmt.Sprintf("| Missing Id Or Name | %d |\n", r.Cleaning.MissingRequired))
	sb.WriteString(fmt.Sprintf("| Duplicate Ids | %d |\n", r.Cleaning.Duplicates))
	sb.WriteString(fmt.Sprintf("| Price Series In | %d |\n", r.Cleaning.SeriesIn))
	sb.WriteString(fmt.Sprintf("| Price Series Out | %d |\n", r.Cleaning.SeriesOut))
	sb.WriteString(fmt.Sprintf("| Incomplete Price Rows | %d |\n", r.Cleaning.IncompleteRows))
	sb.WriteString(fmt.Sprintf("| Unparseable Price Dates | %d |\n", r.Cleaning.InvalidDates))
	sb.WriteString(fmt.Sprintf("| Short Series Dropped | %d |\n", r.Cleaning.ShortSeries))
	sb.WriteString("\n")

	// Transformation
	sb.WriteString("## Transformation\n\n")
	sb.WriteString(fmt.Sprintf("Unparsed release dates: %d\n\n", r.Transform.UnparsedReleaseDates))
	sb.WriteString(fmt.Sprintf("Unparsed price rows: %d\n\n", r.Transform.UnparsedRows))

	// Features
	sb.WriteString("## Features\n\n")
	sb.WriteString(fmt.Sprintf("Rows: %d | Columns: %d\n\n", r.Features.Rows, r.Features.Columns))
	if len(r.Features.Unjoined) > 0 {
		sb.WriteString(fmt.Sprintf("Price series without a title: %s\n\n", strings.Join(r.Features.Unjoined, ", ")))
	}

	// Labels
	sb.WriteString("## Labels\n\n")
	sb.WriteString("| Input | Median |\n")
	sb.WriteString("|-------|--------|\n")
	sb.WriteString(fmt.Sprintf("| discount_frequency | %.4f |\n", r.Labels.DiscountFrequencyMedian))
	sb.WriteString(fmt.Sprintf("| avg_discount | %.4f |\n", r.Labels.AvgDiscountMedian))
	sb.WriteString(fmt.Sprintf("| max_savings | %.4f |\n", r.Labels.MaxSavingsMedian))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Good buy: %d | Bad buy: %d\n\n", r.Labels.Positives, r.Labels.Negatives))

	// Split
	sb.WriteString("## Split\n\n")
	sb.WriteString("| Partition | Rows | Share |\n")
	sb.WriteString("|-----------|------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Train | %d | %.1f%% |\n", r.Split.Train, r.Split.TrainPct))
	sb.WriteString(fmt.Sprintf("| Validation | %d | %.1f%% |\n", r.Split.Val, r.Split.ValPct))
	sb.WriteString(fmt.Sprintf("| Test | %d | %.1f%% |\n", r.Split.Test, r.Split.TestPct))
	sb.WriteString("\n")

	return sb.String()
}
