package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	sheetHistorical = "Historical Data"
	sheetSummary    = "Summary Stats"
	sheetCompany    = "Company"
	sheetAISummary  = "AI Summary"
)

// WriteExcel renders the full report workbook to w: the historical
// series with indicator columns and an embedded close-price chart, the
// summary statistics, the company profile, and the narrative text.
func WriteExcel(w io.Writer, data ReportData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeHistoricalSheet(f, data); err != nil {
		return fmt.Errorf("historical sheet: %w", err)
	}
	if err := writeSummarySheet(f, data); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeCompanySheet(f, data); err != nil {
		return fmt.Errorf("company sheet: %w", err)
	}
	if err := writeNarrativeSheet(f, data); err != nil {
		return fmt.Errorf("narrative sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeHistoricalSheet(f *excelize.File, data ReportData) error {
	if err := f.SetSheetName("Sheet1", sheetHistorical); err != nil {
		return err
	}

	headers := []string{"Date", "Open", "High", "Low", "Close", "Volume", "MA20", "MA50", "MA200", "RSI14"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetHistorical, cell, h); err != nil {
			return err
		}
	}

	for i, bar := range data.Series.Bars {
		row := i + 2
		values := []interface{}{
			bar.Date.Format("2006-01-02"),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		}
		if data.Analysis != nil {
			values = append(values,
				deref(data.Analysis.MA20, i),
				deref(data.Analysis.MA50, i),
				deref(data.Analysis.MA200, i),
				deref(data.Analysis.RSI14, i))
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetHistorical, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheetHistorical, "A", "A", 12); err != nil {
		return err
	}

	return addCloseChart(f, data)
}

func addCloseChart(f *excelize.File, data ReportData) error {
	n := len(data.Series.Bars)
	if n < 2 {
		return nil
	}
	return f.AddChart(sheetHistorical, "L2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$E$1", sheetHistorical),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetHistorical, n+1),
			Values:     fmt.Sprintf("'%s'!$E$2:$E$%d", sheetHistorical, n+1),
		}},
		Title:  []excelize.RichTextRun{{Text: data.Ticker + " Close Price"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

func writeSummarySheet(f *excelize.File, data ReportData) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Ticker", data.Ticker},
		{"Period", string(data.Series.Period)},
		{"Interval", string(data.Series.Interval)},
		{"Bars", len(data.Series.Bars)},
	}
	if data.Analysis != nil {
		stats := data.Analysis.Stats
		rows = append(rows,
			[]interface{}{"Latest Close", stats.LatestClose},
			[]interface{}{"Change", stats.Change},
			[]interface{}{"Change %", stats.ChangePct},
			[]interface{}{"7-Day Average", stats.Avg7},
			[]interface{}{"30-Day Average", stats.Avg30},
			[]interface{}{"Period High", stats.PeriodHigh},
			[]interface{}{"Period Low", stats.PeriodLow},
			[]interface{}{"Average Volume", stats.AvgVolume},
		)
	}
	rows = append(rows, []interface{}{"Generated", data.GeneratedAt.Format("2006-01-02 15:04:05")})

	return writeRows(f, sheetSummary, rows)
}

func writeCompanySheet(f *excelize.File, data ReportData) error {
	if _, err := f.NewSheet(sheetCompany); err != nil {
		return err
	}

	if data.Profile == nil {
		return writeRows(f, sheetCompany, [][]interface{}{{"Company profile unavailable"}})
	}

	p := data.Profile
	rows := [][]interface{}{
		{"Field", "Value"},
		{"Name", p.Name},
		{"Sector", p.Sector},
		{"Industry", p.Industry},
		{"Market Cap", p.MarketCap},
		{"Total Revenue", p.TotalRevenue},
		{"Trailing P/E", p.TrailingPE},
		{"Trailing EPS", p.TrailingEPS},
		{"Price to Book", p.PriceToBook},
		{"Profit Margin", p.ProfitMargin},
		{"Return on Equity", p.ReturnOnEquity},
		{"Dividend Yield", p.DividendYield},
		{"52-Week High", p.FiftyTwoWkHigh},
		{"52-Week Low", p.FiftyTwoWkLow},
		{"Summary", p.Summary},
	}
	return writeRows(f, sheetCompany, rows)
}

func writeNarrativeSheet(f *excelize.File, data ReportData) error {
	if _, err := f.NewSheet(sheetAISummary); err != nil {
		return err
	}

	rows := [][]interface{}{}
	if data.Narrative != nil {
		rows = append(rows, []interface{}{"Source", data.Narrative.Source})
		for _, line := range strings.Split(data.Narrative.Text, "\n") {
			rows = append(rows, []interface{}{line})
		}
	} else {
		rows = append(rows, []interface{}{"Narrative unavailable"})
	}

	if len(data.Analogies) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Analogies"})
		for _, a := range data.Analogies {
			rows = append(rows, []interface{}{a.Topic, a.Text})
		}
	}

	if len(data.News) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Headline", "Publisher", "Sentiment"})
		for _, n := range data.News {
			rows = append(rows, []interface{}{n.Title, n.Publisher, n.Label})
		}
	}

	if err := f.SetColWidth(sheetAISummary, "A", "A", 90); err != nil {
		return err
	}
	return writeRows(f, sheetAISummary, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func deref(values []*float64, i int) interface{} {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	return *values[i]
}
