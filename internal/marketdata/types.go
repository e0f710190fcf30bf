// Package marketdata implements the thin client for the remote finance
// data provider: historical OHLCV series, company metadata, and news
// headline search. Failures degrade to empty results; the client never
// retries.
package marketdata

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the client and the symbol table.
var (
	ErrUnknownTicker = errors.New("unknown ticker symbol")
	ErrNoData        = errors.New("no historical data for ticker and period")
	ErrProvider      = errors.New("finance data provider unavailable")
)

// Bar is one OHLCV record.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a fetched historical price series.
type Series struct {
	Ticker   string   `json:"ticker"`
	Period   Period   `json:"period"`
	Interval Interval `json:"interval"`
	Currency string   `json:"currency,omitempty"`
	Bars     []Bar    `json:"bars"`
}

// IsEmpty reports whether the series holds no bars.
func (s *Series) IsEmpty() bool {
	return s == nil || len(s.Bars) == 0
}

// Closes returns the closing prices in series order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the traded volumes in series order.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = float64(b.Volume)
	}
	return out
}

// Last returns the most recent bar, or a zero bar for an empty series.
func (s *Series) Last() Bar {
	if s.IsEmpty() {
		return Bar{}
	}
	return s.Bars[len(s.Bars)-1]
}

// CompanyProfile carries the company metadata shown on the dashboard
// and embedded in exported reports.
type CompanyProfile struct {
	Ticker         string  `json:"ticker"`
	Name           string  `json:"name"`
	Summary        string  `json:"summary,omitempty"`
	Sector         string  `json:"sector,omitempty"`
	Industry       string  `json:"industry,omitempty"`
	MarketCap      int64   `json:"market_cap,omitempty"`
	TotalRevenue   int64   `json:"total_revenue,omitempty"`
	TrailingPE     float64 `json:"trailing_pe,omitempty"`
	TrailingEPS    float64 `json:"trailing_eps,omitempty"`
	PriceToBook    float64 `json:"price_to_book,omitempty"`
	ProfitMargin   float64 `json:"profit_margin,omitempty"`
	ReturnOnEquity float64 `json:"return_on_equity,omitempty"`
	DividendYield  float64 `json:"dividend_yield,omitempty"`
	FiftyTwoWkHigh float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWkLow  float64 `json:"fifty_two_week_low,omitempty"`
}

// NewsItem is one news headline returned by the provider search endpoint.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Quote is a single latest-price observation used by the live stream.
type Quote struct {
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}
