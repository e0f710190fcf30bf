// Package indicators computes the rolling technical indicators and
// summary statistics displayed on the dashboard and embedded in
// exported reports.
package indicators

import (
	"math"
	"time"

	talib "github.com/markcheno/go-talib"

	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// Moving average windows shown on the price chart.
const (
	WindowMA20  = 20
	WindowMA30  = 30
	WindowMA50  = 50
	WindowMA200 = 200
)

// RSIPeriod is the lookback for the relative strength index.
const RSIPeriod = 14

// Analysis carries indicator series aligned index-for-index with the
// source bars. Entries inside an indicator's warm-up window are nil so
// they serialize as JSON nulls rather than fabricated values.
type Analysis struct {
	Ticker string      `json:"ticker"`
	Dates  []time.Time `json:"dates"`
	Close  []float64   `json:"close"`
	Volume []float64   `json:"volume"`
	MA20   []*float64  `json:"ma20"`
	MA30   []*float64  `json:"ma30"`
	MA50   []*float64  `json:"ma50"`
	MA200  []*float64  `json:"ma200"`
	RSI14  []*float64  `json:"rsi14"`
	Stats  Summary     `json:"stats"`
}

// Summary is the headline statistics block for a series.
type Summary struct {
	LatestClose float64   `json:"latest_close"`
	Change      float64   `json:"change"`
	ChangePct   float64   `json:"change_pct"`
	Avg7        float64   `json:"avg_7"`
	Avg30       float64   `json:"avg_30"`
	PeriodHigh  float64   `json:"period_high"`
	PeriodLow   float64   `json:"period_low"`
	AvgVolume   float64   `json:"avg_volume"`
	Bars        int       `json:"bars"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Compute derives the full indicator set for a non-empty series.
func Compute(series *marketdata.Series) *Analysis {
	closes := series.Closes()
	volumes := series.Volumes()

	analysis := &Analysis{
		Ticker: series.Ticker,
		Dates:  make([]time.Time, len(series.Bars)),
		Close:  closes,
		Volume: volumes,
		MA20:   RollingMean(closes, WindowMA20),
		MA30:   RollingMean(closes, WindowMA30),
		MA50:   RollingMean(closes, WindowMA50),
		MA200:  RollingMean(closes, WindowMA200),
		RSI14:  RSI(closes, RSIPeriod),
		Stats:  Summarize(series),
	}
	for i, bar := range series.Bars {
		analysis.Dates[i] = bar.Date
	}
	return analysis
}

// RollingMean computes a simple moving average over the given window.
// Positions before the window fills are nil.
func RollingMean(values []float64, window int) []*float64 {
	if window <= 0 || len(values) < window {
		return make([]*float64, len(values))
	}
	return sanitize(talib.Sma(values, window), window-1)
}

// RSI computes the relative strength index over the given period.
// The first period positions are nil.
func RSI(values []float64, period int) []*float64 {
	if period <= 0 || len(values) <= period {
		return make([]*float64, len(values))
	}
	return sanitize(talib.Rsi(values, period), period)
}

// Summarize computes the headline statistics for a series.
func Summarize(series *marketdata.Series) Summary {
	if series.IsEmpty() {
		return Summary{}
	}

	closes := series.Closes()
	n := len(closes)

	stats := Summary{
		LatestClose: closes[n-1],
		Avg7:        tailMean(closes, 7),
		Avg30:       tailMean(closes, 30),
		PeriodHigh:  closes[0],
		PeriodLow:   closes[0],
		AvgVolume:   mean(series.Volumes()),
		Bars:        n,
		Start:       series.Bars[0].Date,
		End:         series.Bars[n-1].Date,
	}

	for _, c := range closes {
		if c > stats.PeriodHigh {
			stats.PeriodHigh = c
		}
		if c < stats.PeriodLow {
			stats.PeriodLow = c
		}
	}

	if n > 1 && closes[n-2] != 0 {
		stats.Change = closes[n-1] - closes[n-2]
		stats.ChangePct = stats.Change / closes[n-2] * 100
	}

	return stats
}

// sanitize converts a talib output slice into the aligned nullable
// form: warm-up positions and non-finite values become nil.
func sanitize(values []float64, warmup int) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if i < warmup || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		val := v
		out[i] = &val
	}
	return out
}

// tailMean averages the last n values, or all of them when fewer exist.
func tailMean(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	if n > len(values) {
		n = len(values)
	}
	return mean(values[len(values)-n:])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
