package exporter

import (
	"fmt"
	"math"
	"strings"

	"github.com/Gurusharan-Fintech/Finlense/internal/indicators"
)

// Chart dimensions used by the report template.
const (
	chartWidth  = 760
	chartHeight = 280
	chartPad    = 36
)

// Line colors follow the dashboard palette.
const (
	colorClose    = "#1f77b4"
	colorMA20     = "#ff7f0e"
	colorMA50     = "#2ca02c"
	colorMA200    = "#9467bd"
	colorForecast = "#d62728"
	colorBand     = "#d6272822"
	colorVolume   = "#8ca0b3"
	colorRSI      = "#7f3fbf"
)

// PriceChartSVG renders the close series with its moving averages and,
// when present, the forecast band as a standalone SVG document.
func PriceChartSVG(analysis *indicators.Analysis, forecast *indicators.Forecast) string {
	if analysis == nil || len(analysis.Close) == 0 {
		return emptyChart("no price data")
	}

	total := len(analysis.Close)
	if forecast != nil {
		total += len(forecast.Mean)
	}

	lo, hi := bounds(analysis.Close)
	if forecast != nil {
		for i := range forecast.Mean {
			lo = math.Min(lo, forecast.Lower[i])
			hi = math.Max(hi, forecast.Upper[i])
		}
	}

	sc := newScale(total, lo, hi)

	var b strings.Builder
	openSVG(&b)
	axes(&b, sc, lo, hi)

	if forecast != nil {
		bandPolygon(&b, sc, len(analysis.Close), forecast)
		polylineOffset(&b, sc, forecast.Mean, len(analysis.Close), colorForecast, "4,3")
	}

	polyline(&b, sc, analysis.Close, colorClose)
	polylineNullable(&b, sc, analysis.MA20, colorMA20)
	polylineNullable(&b, sc, analysis.MA50, colorMA50)
	polylineNullable(&b, sc, analysis.MA200, colorMA200)

	b.WriteString("</svg>")
	return b.String()
}

// VolumeChartSVG renders traded volume as a bar chart.
func VolumeChartSVG(analysis *indicators.Analysis) string {
	if analysis == nil || len(analysis.Volume) == 0 {
		return emptyChart("no volume data")
	}

	_, hi := bounds(analysis.Volume)
	if hi == 0 {
		hi = 1
	}
	sc := newScale(len(analysis.Volume), 0, hi)

	var b strings.Builder
	openSVG(&b)
	axes(&b, sc, 0, hi)

	barWidth := math.Max(1, sc.plotWidth()/float64(len(analysis.Volume))-1)
	for i, v := range analysis.Volume {
		x := sc.x(i) - barWidth/2
		y := sc.y(v)
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			x, y, barWidth, float64(chartHeight-chartPad)-y, colorVolume)
	}

	b.WriteString("</svg>")
	return b.String()
}

// RSIChartSVG renders the RSI series with the 30/70 guide lines.
func RSIChartSVG(analysis *indicators.Analysis) string {
	if analysis == nil || len(analysis.RSI14) == 0 {
		return emptyChart("no rsi data")
	}

	sc := newScale(len(analysis.RSI14), 0, 100)

	var b strings.Builder
	openSVG(&b)
	axes(&b, sc, 0, 100)

	for _, guide := range []float64{30, 70} {
		y := sc.y(guide)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#cccccc" stroke-dasharray="2,4"/>`,
			float64(chartPad), y, float64(chartWidth-chartPad), y)
	}

	polylineNullable(&b, sc, analysis.RSI14, colorRSI)

	b.WriteString("</svg>")
	return b.String()
}

// scale maps series indexes and values into the SVG plot area.
type scale struct {
	n      int
	lo, hi float64
}

func newScale(n int, lo, hi float64) scale {
	if hi <= lo {
		hi = lo + 1
	}
	return scale{n: n, lo: lo, hi: hi}
}

func (s scale) plotWidth() float64 { return float64(chartWidth - 2*chartPad) }

func (s scale) x(i int) float64 {
	if s.n <= 1 {
		return float64(chartPad)
	}
	return float64(chartPad) + float64(i)/float64(s.n-1)*s.plotWidth()
}

func (s scale) y(v float64) float64 {
	frac := (v - s.lo) / (s.hi - s.lo)
	return float64(chartHeight-chartPad) - frac*float64(chartHeight-2*chartPad)
}

func openSVG(b *strings.Builder) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="10">`,
		chartWidth, chartHeight, chartWidth, chartHeight)
}

func axes(b *strings.Builder, sc scale, lo, hi float64) {
	fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#888888"/>`,
		chartPad, chartHeight-chartPad, chartWidth-chartPad, chartHeight-chartPad)
	fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#888888"/>`,
		chartPad, chartPad, chartPad, chartHeight-chartPad)
	fmt.Fprintf(b, `<text x="2" y="%d">%s</text>`, chartPad+4, formatAxis(hi))
	fmt.Fprintf(b, `<text x="2" y="%d">%s</text>`, chartHeight-chartPad, formatAxis(lo))
}

func polyline(b *strings.Builder, sc scale, values []float64, color string) {
	var pts strings.Builder
	for i, v := range values {
		fmt.Fprintf(&pts, "%.1f,%.1f ", sc.x(i), sc.y(v))
	}
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1.5"/>`,
		strings.TrimSpace(pts.String()), color)
}

// polylineNullable draws a nullable series, breaking the line at nil
// gaps so warm-up windows leave no trace.
func polylineNullable(b *strings.Builder, sc scale, values []*float64, color string) {
	var pts strings.Builder
	flush := func() {
		if pts.Len() == 0 {
			return
		}
		fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1.2"/>`,
			strings.TrimSpace(pts.String()), color)
		pts.Reset()
	}
	for i, v := range values {
		if v == nil {
			flush()
			continue
		}
		fmt.Fprintf(&pts, "%.1f,%.1f ", sc.x(i), sc.y(*v))
	}
	flush()
}

func polylineOffset(b *strings.Builder, sc scale, values []float64, offset int, color, dash string) {
	var pts strings.Builder
	for i, v := range values {
		fmt.Fprintf(&pts, "%.1f,%.1f ", sc.x(offset+i), sc.y(v))
	}
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1.2" stroke-dasharray="%s"/>`,
		strings.TrimSpace(pts.String()), color, dash)
}

// bandPolygon draws the forecast confidence band as a closed shape:
// upper bound left to right, lower bound back.
func bandPolygon(b *strings.Builder, sc scale, offset int, fc *indicators.Forecast) {
	var pts strings.Builder
	for i, v := range fc.Upper {
		fmt.Fprintf(&pts, "%.1f,%.1f ", sc.x(offset+i), sc.y(v))
	}
	for i := len(fc.Lower) - 1; i >= 0; i-- {
		fmt.Fprintf(&pts, "%.1f,%.1f ", sc.x(offset+i), sc.y(fc.Lower[i]))
	}
	fmt.Fprintf(b, `<polygon points="%s" fill="%s" stroke="none"/>`,
		strings.TrimSpace(pts.String()), colorBand)
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func formatAxis(v float64) string {
	switch {
	case math.Abs(v) >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case math.Abs(v) >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func emptyChart(label string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#888888">%s</text></svg>`,
		chartWidth, chartHeight, chartWidth/2, chartHeight/2, label)
}
