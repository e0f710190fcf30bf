package marketdata

// Period identifies a provider lookback window.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

// DefaultPeriod matches the dashboard's initial selection.
const DefaultPeriod = Period1Y

var validPeriods = map[Period]bool{
	Period1Mo: true, Period3Mo: true, Period6Mo: true,
	Period1Y: true, Period2Y: true, Period5Y: true,
	Period10Y: true, PeriodYTD: true, PeriodMax: true,
}

// Valid reports whether p is a supported period string.
func (p Period) Valid() bool {
	return validPeriods[p]
}

// Periods returns the supported periods in display order.
func Periods() []Period {
	return []Period{Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y, Period5Y, Period10Y, PeriodYTD, PeriodMax}
}

// Interval identifies the bar width of a series.
type Interval string

const (
	Interval1D  Interval = "1d"
	Interval1Wk Interval = "1wk"
	Interval1Mo Interval = "1mo"
)

// DefaultInterval matches the dashboard's initial selection.
const DefaultInterval = Interval1D

var validIntervals = map[Interval]bool{
	Interval1D: true, Interval1Wk: true, Interval1Mo: true,
}

// Valid reports whether i is a supported interval string.
func (i Interval) Valid() bool {
	return validIntervals[i]
}

// Intervals returns the supported intervals in display order.
func Intervals() []Interval {
	return []Interval{Interval1D, Interval1Wk, Interval1Mo}
}
