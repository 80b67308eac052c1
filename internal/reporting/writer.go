// Package reporting renders run artifacts: CSV tables, the summary text,
// the Markdown run report and the spreadsheet export.
package reporting

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/logger"
)

// Artifact file names written into the output directory.
const (
	TitlesFile   = "processed_application_info.csv"
	FeaturesFile = "engineered_features.csv"
	SummaryFile  = "processing_summary.txt"
	ReportFile   = "processing_report.md"
	WorkbookFile = "engineered_features.xlsx"
)

// Artifacts is everything a run persists to disk.
type Artifacts struct {
	Titles   []domain.Title
	Features []domain.FeatureRecord
	Summary  domain.Summary
	Report   *Report // optional
}

// Writer persists artifacts into one directory.
type Writer struct {
	dir      string
	workbook bool
	log      *logger.Logger
}

// NewWriter creates a writer for dir. The directory is created on first write.
func NewWriter(dir string, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{dir: dir, log: log}
}

// WithWorkbook enables the engineered_features.xlsx export.
func (w *Writer) WithWorkbook(enabled bool) *Writer {
	w.workbook = enabled
	return w
}

// Write renders and writes every artifact, returning the written paths in order.
func (w *Writer) Write(ctx context.Context, a Artifacts) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	type job struct {
		name   string
		render func(*bytes.Buffer) error
	}
	jobs := []job{
		{TitlesFile, func(b *bytes.Buffer) error { return RenderTitlesCSV(b, a.Titles) }},
		{FeaturesFile, func(b *bytes.Buffer) error { return RenderFeaturesCSV(b, a.Features) }},
		{SummaryFile, func(b *bytes.Buffer) error { _, err := b.WriteString(RenderSummary(a.Summary)); return err }},
	}
	if a.Report != nil {
		jobs = append(jobs, job{ReportFile, func(b *bytes.Buffer) error { _, err := b.WriteString(RenderMarkdown(a.Report)); return err }})
	}
	if w.workbook {
		jobs = append(jobs, job{WorkbookFile, func(b *bytes.Buffer) error { return RenderWorkbook(b, a.Titles, a.Features) }})
	}

	var written []string
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		var buf bytes.Buffer
		if err := j.render(&buf); err != nil {
			return written, fmt.Errorf("render %s: %w", j.name, err)
		}
		path := filepath.Join(w.dir, j.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		w.log.Debug("wrote artifact", "path", path, "bytes", buf.Len())
		written = append(written, path)
	}

	w.log.Info("artifacts written", "dir", w.dir, "files", len(written))
	return written, nil
}
