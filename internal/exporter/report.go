// Package exporter renders the downloadable report artifacts: an Excel
// workbook with the raw series and statistics, and a PDF assembled from
// an HTML template printed through a headless browser.
package exporter

import (
	"fmt"
	"time"

	"github.com/Gurusharan-Fintech/Finlense/internal/indicators"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/narrative"
	"github.com/Gurusharan-Fintech/Finlense/internal/sentiment"
)

// ReportData is everything a report renderer needs. Profile, Forecast,
// Narrative and News may be absent; renderers omit the corresponding
// sections rather than fail.
type ReportData struct {
	Ticker      string
	GeneratedAt time.Time
	Series      *marketdata.Series
	Analysis    *indicators.Analysis
	Forecast    *indicators.Forecast
	Profile     *marketdata.CompanyProfile
	Narrative   *narrative.Narrative
	Analogies   []narrative.Analogy
	News        []sentiment.ScoredHeadline
}

// Filename builds the download name for a report artifact, e.g.
// AAPL_detailed_report_20240105_153012.pdf.
func Filename(ticker, extension string, at time.Time) string {
	return fmt.Sprintf("%s_detailed_report_%s.%s", ticker, at.Format("20060102_150405"), extension)
}

// tailBars returns the last n bars of the series for the PDF table.
func tailBars(series *marketdata.Series, n int) []marketdata.Bar {
	if series.IsEmpty() {
		return nil
	}
	if n > len(series.Bars) {
		n = len(series.Bars)
	}
	return series.Bars[len(series.Bars)-n:]
}
