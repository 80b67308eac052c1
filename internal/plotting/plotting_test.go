package plotting

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-price-lab/internal/domain"
)

func chartRecords() []domain.FeatureRecord {
	out := make([]domain.FeatureRecord, 20)
	for i := range out {
		label := i % 3 / 2
		out[i] = domain.FeatureRecord{
			AppID:             int64(i + 1),
			ReleaseYear:       2010 + i%5,
			AvgInitialPrice:   float64(i),
			DiscountFrequency: float64(i) / 20,
			MaxDiscount:       float64(20 - i),
			PriceVolatility:   1.5,
			GoodBuyTime:       &label,
		}
	}
	return out
}

func TestHistogram(t *testing.T) {
	edges, counts := Histogram([]float64{0, 1, 2, 3, 4, 10}, 5)
	require.Len(t, edges, 6)
	require.Len(t, counts, 5)
	assert.Equal(t, 0.0, edges[0])
	assert.Equal(t, 10.0, edges[5])
	assert.Equal(t, []int{2, 2, 1, 0, 1}, counts)

	edges, counts = Histogram([]float64{3, 3, 3}, 4)
	assert.Len(t, edges, 5)
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 3, total)

	edges, counts = Histogram(nil, 10)
	assert.Nil(t, edges)
	assert.Nil(t, counts)
}

func TestCorrelationMatrix(t *testing.T) {
	corr := CorrelationMatrix(chartRecords(), CorrelationFeatures)
	require.NotNil(t, corr)

	// price and frequency rise together; max discount falls
	assert.InDelta(t, 1, corr.At(0, 1), 1e-9)
	assert.InDelta(t, -1, corr.At(0, 2), 1e-9)
	// volatility is constant, so its row is undefined and reported as 0
	assert.Equal(t, 0.0, corr.At(0, 3))
	assert.Equal(t, corr.At(1, 2), corr.At(2, 1))

	assert.Nil(t, CorrelationMatrix(chartRecords()[:1], CorrelationFeatures))
}

func TestColumn(t *testing.T) {
	records := chartRecords()

	values, ok := Column(records, "max_discount")
	require.True(t, ok)
	assert.Equal(t, 20.0, values[0])
	assert.Equal(t, 1.0, values[19])

	values, ok = Column(records, "max_discounts")
	assert.False(t, ok)
	assert.Nil(t, values)

	_, ok = Column(records, "game_name")
	assert.False(t, ok, "non-numeric columns are not plottable")

	for _, name := range CorrelationFeatures {
		_, ok := Column(records, name)
		assert.True(t, ok, name)
	}

	assert.Panics(t, func() { mustColumn(records, "avg_intial_price") })
	assert.Nil(t, CorrelationMatrix(records, []string{"avg_initial_price", "typo"}))
}

func TestReleaseYearCounts(t *testing.T) {
	records := append(chartRecords(), domain.FeatureRecord{ReleaseYear: 0})
	years, counts := ReleaseYearCounts(records)
	assert.Equal(t, []int{2010, 2011, 2012, 2013, 2014}, years)
	assert.Equal(t, []int{4, 4, 4, 4, 4}, counts)
}

func TestLabelCounts(t *testing.T) {
	records := append(chartRecords(), domain.FeatureRecord{})
	bad, good := LabelCounts(records)
	assert.Equal(t, 20, bad+good)
	assert.Equal(t, 6, good)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, chartRecords()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
	assert.Equal(t, height, img.Bounds().Dy())
}

func TestRender_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil))
	assert.NotZero(t, buf.Len())
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), ChartFile)
	require.NoError(t, Save(path, chartRecords()))
	assert.FileExists(t, path)
}
