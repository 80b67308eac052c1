package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"steam-price-lab/internal/domain"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// Column headers of the metadata file.
var titleColumns = []string{"appid", "type", "name", "releasedate", "freetoplay"}

// Column headers of a price history file.
var priceColumns = []string{"date", "initialprice", "finalprice", "discount"}

// newLatin1Reader decodes ISO-8859-1 input to UTF-8 for encoding/csv.
func newLatin1Reader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// utf8BOMAsLatin1 is a UTF-8 byte order mark after latin-1 decoding.
const utf8BOMAsLatin1 = "\u00ef\u00bb\u00bf"

// headerIndex maps each wanted column (case-insensitive) to its position.
func headerIndex(header []string, wanted []string) (map[string]int, error) {
	idx := make(map[string]int, len(wanted))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, utf8BOMAsLatin1)))] = i
	}
	out := make(map[string]int, len(wanted))
	for _, w := range wanted {
		i, ok := idx[w]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, w)
		}
		out[w] = i
	}
	return out, nil
}

// cell returns the trimmed cell or nil when empty or out of range.
func cell(record []string, i int) *string {
	if i >= len(record) {
		return nil
	}
	v := strings.TrimSpace(record[i])
	if v == "" || strings.EqualFold(v, "nan") {
		return nil
	}
	return &v
}

// ReadTitles parses applicationInformation.csv. Missing or malformed cells become nil.
func ReadTitles(r io.Reader) ([]domain.RawTitle, error) {
	cr := newLatin1Reader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col, err := headerIndex(header, titleColumns)
	if err != nil {
		return nil, err
	}

	var titles []domain.RawTitle
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(titles)+2, err)
		}
		titles = append(titles, domain.RawTitle{
			AppID:       parseID(cell(record, col["appid"])),
			Type:        cell(record, col["type"]),
			Name:        cell(record, col["name"]),
			ReleaseDate: cell(record, col["releasedate"]),
			FreeToPlay:  parseFlag(cell(record, col["freetoplay"])),
		})
	}
	return titles, nil
}

// ReadPriceRows parses one PriceHistory/<appid>.csv file.
func ReadPriceRows(r io.Reader) ([]domain.RawPriceRow, error) {
	cr := newLatin1Reader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col, err := headerIndex(header, priceColumns)
	if err != nil {
		return nil, err
	}

	var rows []domain.RawPriceRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, domain.RawPriceRow{
			Date:         cell(record, col["date"]),
			InitialPrice: parseNumber(cell(record, col["initialprice"])),
			FinalPrice:   parseNumber(cell(record, col["finalprice"])),
			Discount:     parseNumber(cell(record, col["discount"])),
		})
	}
	return rows, nil
}

// parseID accepts integer ids and integral floats such as "570.0".
func parseID(s *string) *int64 {
	if s == nil {
		return nil
	}
	if v, err := strconv.ParseInt(*s, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil
	}
	v := int64(f)
	return &v
}

func parseNumber(s *string) *float64 {
	if s == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseFlag accepts 0/1, 0.0/1.0 and true/false.
func parseFlag(s *string) *bool {
	if s == nil {
		return nil
	}
	if b, err := strconv.ParseBool(*s); err == nil {
		return &b
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	b := f != 0
	return &b
}
