// Package plotting renders the six-panel exploratory chart of the feature table.
package plotting

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"

	"steam-price-lab/internal/domain"
)

// ChartFile is the default file name of the rendered chart.
const ChartFile = "steam_games_analysis.png"

const (
	width     = 1800
	height    = 1200
	titleBand = 60
	cols      = 3
	rows      = 2
	margin    = 60
)

var (
	background = color.White
	axisColor  = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	barColor   = color.RGBA{R: 76, G: 114, B: 176, A: 200}
	dotColor   = color.RGBA{R: 221, G: 132, B: 82, A: 160}
	lineColor  = color.RGBA{R: 85, G: 168, B: 104, A: 255}
)

// panel is the drawable area of one subplot.
type panel struct {
	x, y, w, h float64
}

func panels() []panel {
	pw := float64(width) / cols
	ph := float64(height-titleBand) / rows
	out := make([]panel, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, panel{
				x: float64(c)*pw + margin,
				y: titleBand + float64(r)*ph + margin,
				w: pw - 2*margin,
				h: ph - 2*margin,
			})
		}
	}
	return out
}

// Render draws the chart for records and encodes it as PNG.
func Render(w io.Writer, records []domain.FeatureRecord) error {
	dc := draw(records)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

// Save draws the chart and writes it to path.
func Save(path string, records []domain.FeatureRecord) error {
	return draw(records).SavePNG(path)
}

func draw(records []domain.FeatureRecord) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	dc.SetColor(axisColor)
	dc.DrawStringAnchored("Exploratory Analysis - Steam Game Prices", width/2, titleBand/2, 0.5, 0.5)

	p := panels()
	initial := mustColumn(records, "avg_initial_price")

	_, counts := Histogram(initial, 50)
	drawBars(dc, p[0], "Initial Price Distribution", "avg initial price", "frequency", counts, nil)

	drawScatter(dc, p[1], "Price vs Discount Frequency", "avg initial price", "discount frequency",
		initial, mustColumn(records, "discount_frequency"))

	_, counts = Histogram(mustColumn(records, "max_discount"), 30)
	drawBars(dc, p[2], "Max Discount Distribution", "max discount (%)", "frequency", counts, nil)

	years, yearCounts := ReleaseYearCounts(records)
	drawLine(dc, p[3], "Titles per Release Year", "release year", "titles", years, yearCounts)

	drawHeatmap(dc, p[4], "Correlation Matrix", records)

	bad, good := LabelCounts(records)
	drawBars(dc, p[5], "Target Distribution", "", "titles", []int{bad, good}, []string{"bad time", "good time"})

	return dc
}

func drawFrame(dc *gg.Context, p panel, title, xLabel, yLabel string) {
	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(p.x, p.y+p.h, p.x+p.w, p.y+p.h)
	dc.DrawLine(p.x, p.y, p.x, p.y+p.h)
	dc.Stroke()

	dc.DrawStringAnchored(title, p.x+p.w/2, p.y-20, 0.5, 0.5)
	if xLabel != "" {
		dc.DrawStringAnchored(xLabel, p.x+p.w/2, p.y+p.h+30, 0.5, 0.5)
	}
	if yLabel != "" {
		dc.Push()
		dc.RotateAbout(-math.Pi/2, p.x-35, p.y+p.h/2)
		dc.DrawStringAnchored(yLabel, p.x-35, p.y+p.h/2, 0.5, 0.5)
		dc.Pop()
	}
}

func drawEmpty(dc *gg.Context, p panel) {
	dc.SetColor(axisColor)
	dc.DrawStringAnchored("no data", p.x+p.w/2, p.y+p.h/2, 0.5, 0.5)
}

func maxInt(v []int) int {
	m := 0
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

func drawBars(dc *gg.Context, p panel, title, xLabel, yLabel string, counts []int, labels []string) {
	drawFrame(dc, p, title, xLabel, yLabel)
	top := maxInt(counts)
	if top == 0 {
		drawEmpty(dc, p)
		return
	}

	slot := p.w / float64(len(counts))
	gap := slot * 0.1
	for i, c := range counts {
		h := p.h * float64(c) / float64(top)
		x := p.x + float64(i)*slot
		dc.SetColor(barColor)
		dc.DrawRectangle(x+gap/2, p.y+p.h-h, slot-gap, h)
		dc.Fill()
		if labels != nil {
			dc.SetColor(axisColor)
			dc.DrawStringAnchored(labels[i], x+slot/2, p.y+p.h+15, 0.5, 0.5)
			dc.DrawStringAnchored(strconv.Itoa(c), x+slot/2, p.y+p.h-h-10, 0.5, 0.5)
		}
	}
	dc.SetColor(axisColor)
	dc.DrawStringAnchored(strconv.Itoa(top), p.x-5, p.y, 1, 0.5)
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi
}

func drawScatter(dc *gg.Context, p panel, title, xLabel, yLabel string, xs, ys []float64) {
	drawFrame(dc, p, title, xLabel, yLabel)
	if len(xs) == 0 {
		drawEmpty(dc, p)
		return
	}

	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)
	dc.SetColor(dotColor)
	for i := range xs {
		px := p.x + p.w*(xs[i]-xlo)/(xhi-xlo)
		py := p.y + p.h - p.h*(ys[i]-ylo)/(yhi-ylo)
		dc.DrawCircle(px, py, 3)
		dc.Fill()
	}
}

func drawLine(dc *gg.Context, p panel, title, xLabel, yLabel string, xs []int, ys []int) {
	drawFrame(dc, p, title, xLabel, yLabel)
	if len(xs) == 0 {
		drawEmpty(dc, p)
		return
	}

	xf := make([]float64, len(xs))
	yf := make([]float64, len(ys))
	for i := range xs {
		xf[i] = float64(xs[i])
		yf[i] = float64(ys[i])
	}
	xlo, xhi := bounds(xf)
	_, yhi := bounds(append(yf, 0))

	dc.SetColor(lineColor)
	dc.SetLineWidth(2)
	for i := range xf {
		px := p.x + p.w*(xf[i]-xlo)/(xhi-xlo)
		py := p.y + p.h - p.h*yf[i]/yhi
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.Stroke()

	dc.SetColor(axisColor)
	dc.DrawStringAnchored(strconv.Itoa(xs[0]), p.x, p.y+p.h+15, 0, 0.5)
	dc.DrawStringAnchored(strconv.Itoa(xs[len(xs)-1]), p.x+p.w, p.y+p.h+15, 1, 0.5)
}

// coolwarm maps [-1,1] to blue-white-red.
func coolwarm(v float64) color.Color {
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		t := 1 + v
		return color.RGBA{R: uint8(59 + t*196), G: uint8(76 + t*179), B: uint8(192 + t*63), A: 255}
	}
	return color.RGBA{R: uint8(255 - v*75), G: uint8(255 - v*251), B: uint8(255 - v*217), A: 255}
}

func drawHeatmap(dc *gg.Context, p panel, title string, records []domain.FeatureRecord) {
	drawFrame(dc, p, title, "", "")
	corr := CorrelationMatrix(records, CorrelationFeatures)
	if corr == nil {
		drawEmpty(dc, p)
		return
	}

	n := len(CorrelationFeatures)
	side := math.Min(p.w, p.h) - 40
	cell := side / float64(n)
	ox := p.x + (p.w-side)/2 + 20
	oy := p.y
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := corr.At(i, j)
			dc.SetColor(coolwarm(v))
			dc.DrawRectangle(ox+float64(j)*cell, oy+float64(i)*cell, cell, cell)
			dc.Fill()
			dc.SetColor(axisColor)
			dc.DrawStringAnchored(strconv.FormatFloat(v, 'f', 2, 64),
				ox+float64(j)*cell+cell/2, oy+float64(i)*cell+cell/2, 0.5, 0.5)
		}
		dc.DrawStringAnchored(CorrelationFeatures[i], ox-5, oy+float64(i)*cell+cell/2, 1, 0.5)
	}
}
