package indicators

import (
	"math"
	"time"
)

// ForecastHorizon is the number of future periods projected.
const ForecastHorizon = 30

// forecastMinBars is the minimum history needed for a meaningful drift
// estimate.
const forecastMinBars = 10

// Forecast projects the recent drift of a close series forward with a
// widening 95% confidence band. It is a naive extrapolation for
// context on the chart, not a trading signal.
type Forecast struct {
	Dates []time.Time `json:"dates"`
	Mean  []float64   `json:"mean"`
	Upper []float64   `json:"upper"`
	Lower []float64   `json:"lower"`
}

// ComputeForecast extends the series by ForecastHorizon steps using the
// mean daily log return as drift and the return standard deviation for
// the band width. Returns nil when the history is too short.
func ComputeForecast(dates []time.Time, closes []float64) *Forecast {
	if len(closes) < forecastMinBars || len(dates) != len(closes) {
		return nil
	}

	returns := logReturns(closes)
	if len(returns) == 0 {
		return nil
	}

	drift := mean(returns)
	sigma := stddev(returns, drift)

	last := closes[len(closes)-1]
	step := barSpacing(dates)

	fc := &Forecast{
		Dates: make([]time.Time, ForecastHorizon),
		Mean:  make([]float64, ForecastHorizon),
		Upper: make([]float64, ForecastHorizon),
		Lower: make([]float64, ForecastHorizon),
	}

	lastDate := dates[len(dates)-1]
	for h := 1; h <= ForecastHorizon; h++ {
		center := last * math.Exp(drift*float64(h))
		// Uncertainty grows with the square root of the horizon.
		spread := 1.96 * sigma * math.Sqrt(float64(h))

		fc.Dates[h-1] = lastDate.Add(time.Duration(h) * step)
		fc.Mean[h-1] = center
		fc.Upper[h-1] = center * math.Exp(spread)
		fc.Lower[h-1] = center * math.Exp(-spread)
	}

	return fc
}

func logReturns(closes []float64) []float64 {
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		out = append(out, math.Log(closes[i]/closes[i-1]))
	}
	return out
}

func stddev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// barSpacing estimates the spacing between bars from the median of the
// last few gaps, so weekly and monthly series project sensibly.
func barSpacing(dates []time.Time) time.Duration {
	if len(dates) < 2 {
		return 24 * time.Hour
	}
	gaps := make([]time.Duration, 0, 8)
	for i := len(dates) - 1; i > 0 && len(gaps) < 8; i-- {
		if gap := dates[i].Sub(dates[i-1]); gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return 24 * time.Hour
	}
	for i := 1; i < len(gaps); i++ {
		for j := i; j > 0 && gaps[j] < gaps[j-1]; j-- {
			gaps[j], gaps[j-1] = gaps[j-1], gaps[j]
		}
	}
	return gaps[len(gaps)/2]
}
