// Package ingest reads the metadata file and the per-title price files from disk.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/logger"
)

const (
	// TitlesFile is the metadata file name under the data directory.
	TitlesFile = "applicationInformation.csv"
	// PriceDir is the directory of per-title price files under the data directory.
	PriceDir = "PriceHistory"
)

// Report counts what was read and skipped.
type Report struct {
	PriceFilesFound   int
	PriceFilesLoaded  int
	PriceFilesSkipped []string
}

// Dataset is everything loaded from the data directory.
type Dataset struct {
	Titles []domain.RawTitle
	Prices domain.RawPriceTables
	Report Report
}

// Loader reads a data directory laid out as
// <dir>/applicationInformation.csv and <dir>/PriceHistory/<appid>.csv.
type Loader struct {
	dir        string
	sampleSize int
	log        *logger.Logger
}

// NewLoader creates a loader. sampleSize caps the number of price files read
// (in lexical path order); 0 reads all of them.
func NewLoader(dir string, sampleSize int, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{dir: dir, sampleSize: sampleSize, log: log}
}

// Load reads the metadata file and the sampled price files.
// A metadata read failure is fatal; a failing price file is logged and skipped.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	titles, err := l.LoadTitles(ctx)
	if err != nil {
		return nil, err
	}
	prices, report, err := l.LoadPrices(ctx)
	if err != nil {
		return nil, err
	}
	return &Dataset{Titles: titles, Prices: prices, Report: report}, nil
}

// LoadTitles reads applicationInformation.csv.
func (l *Loader) LoadTitles(ctx context.Context) ([]domain.RawTitle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(l.dir, TitlesFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open titles: %w", err)
	}
	defer f.Close()

	titles, err := ReadTitles(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	exp := Explore(titles)
	l.log.Info("loaded titles",
		"path", path,
		"rows", exp.Rows,
		"types", exp.TypeCounts,
		"free_to_play", exp.FreeToPlay,
		"paid", exp.Paid,
		"free_to_play_missing", exp.FreeToPlayMissing,
	)
	return titles, nil
}

// LoadPrices reads up to sampleSize price files.
func (l *Loader) LoadPrices(ctx context.Context) (domain.RawPriceTables, Report, error) {
	var report Report
	files, err := l.priceFiles()
	if err != nil {
		return nil, report, err
	}
	report.PriceFilesFound = len(files)
	if l.sampleSize > 0 && len(files) > l.sampleSize {
		files = files[:l.sampleSize]
	}

	tables := make(domain.RawPriceTables, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		rows, err := readPriceFile(path)
		if err != nil {
			l.log.Warn("skipping price file", "path", path, "error", err)
			report.PriceFilesSkipped = append(report.PriceFilesSkipped, path)
			continue
		}
		tables[key] = rows
		report.PriceFilesLoaded++
	}

	l.log.Info("loaded price files",
		"found", report.PriceFilesFound,
		"loaded", report.PriceFilesLoaded,
		"skipped", len(report.PriceFilesSkipped),
	)
	if key, rows := firstTable(tables); key != "" {
		first, last := dateRange(rows)
		l.log.Debug("price file sample", "app", key, "rows", len(rows), "from", first, "to", last)
	}
	return tables, report, nil
}

func (l *Loader) priceFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.dir, PriceDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list price files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func readPriceFile(path string) ([]domain.RawPriceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPriceRows(f)
}

func firstTable(t domain.RawPriceTables) (string, []domain.RawPriceRow) {
	keys := t.SortedKeys()
	if len(keys) == 0 {
		return "", nil
	}
	return keys[0], t[keys[0]]
}

// dateRange returns the lexical min and max of the present date cells.
func dateRange(rows []domain.RawPriceRow) (string, string) {
	var first, last string
	for _, r := range rows {
		if r.Date == nil {
			continue
		}
		if first == "" || *r.Date < first {
			first = *r.Date
		}
		if *r.Date > last {
			last = *r.Date
		}
	}
	return first, last
}

// Exploration is the descriptive summary of the raw metadata table.
type Exploration struct {
	Rows              int
	TypeCounts        map[string]int // missing type counted under ""
	FreeToPlay        int
	Paid              int
	FreeToPlayMissing int
}

// Explore summarizes raw titles.
func Explore(titles []domain.RawTitle) Exploration {
	exp := Exploration{Rows: len(titles), TypeCounts: make(map[string]int)}
	for _, t := range titles {
		typ := ""
		if t.Type != nil {
			typ = *t.Type
		}
		exp.TypeCounts[typ]++

		switch {
		case t.FreeToPlay == nil:
			exp.FreeToPlayMissing++
		case *t.FreeToPlay:
			exp.FreeToPlay++
		default:
			exp.Paid++
		}
	}
	return exp
}
