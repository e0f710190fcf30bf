package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurusharan-Fintech/Finlense/internal/indicators"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/narrative"
)

type fakeMarket struct {
	series     *marketdata.Series
	historyErr error
	profile    *marketdata.CompanyProfile
	profileErr error
	news       []marketdata.NewsItem
	newsErr    error
}

func (f *fakeMarket) FetchHistory(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*marketdata.Series, error) {
	return f.series, f.historyErr
}

func (f *fakeMarket) FetchProfile(ctx context.Context, ticker string) (*marketdata.CompanyProfile, error) {
	return f.profile, f.profileErr
}

func (f *fakeMarket) FetchNews(ctx context.Context, ticker string) ([]marketdata.NewsItem, error) {
	return f.news, f.newsErr
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(ctx context.Context, ticker string, stats indicators.Summary) narrative.Narrative {
	return narrative.Narrative{
		Ticker:      ticker,
		Text:        "stub analysis",
		Source:      narrative.SourceFallback,
		GeneratedAt: time.Now().UTC(),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testSeries(n int) *marketdata.Series {
	bars := make([]marketdata.Bar, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		price := 150 + float64(i)
		bars[i] = marketdata.Bar{
			Date: start.AddDate(0, 0, i),
			Open: price, High: price + 1, Low: price - 1,
			Close: price, Volume: 1000,
		}
	}
	return &marketdata.Series{
		Ticker: "AAPL", Period: marketdata.Period1Y, Interval: marketdata.Interval1D,
		Bars: bars,
	}
}

func healthyMarket() *fakeMarket {
	return &fakeMarket{
		series:  testSeries(60),
		profile: &marketdata.CompanyProfile{Ticker: "AAPL", Name: "Apple Inc.", TrailingPE: 29},
		news:    []marketdata.NewsItem{{Title: "Shares surge on strong quarter"}},
	}
}

func newDashboardService(market MarketData) *DashboardService {
	return NewDashboardService(market, fakeGenerator{}, testLogger())
}

func TestGetDashboard(t *testing.T) {
	svc := newDashboardService(healthyMarket())

	dash, err := svc.GetDashboard(context.Background(), "AAPL", marketdata.Period1Y, marketdata.Interval1D)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", dash.Symbol.Ticker)
	assert.Len(t, dash.Series.Bars, 60)
	require.NotNil(t, dash.Analysis)
	assert.InDelta(t, 209, dash.Analysis.Stats.LatestClose, 0.001)
	assert.NotNil(t, dash.Forecast)
	require.Len(t, dash.News, 1)
	assert.Greater(t, dash.News[0].Score, 0.0)
	assert.Empty(t, dash.Warnings)
}

func TestGetDashboard_UnknownTicker(t *testing.T) {
	svc := newDashboardService(healthyMarket())

	_, err := svc.GetDashboard(context.Background(), "ZZZZ", marketdata.Period1Y, marketdata.Interval1D)
	assert.ErrorIs(t, err, marketdata.ErrUnknownTicker)
}

func TestGetDashboard_InvalidSelection(t *testing.T) {
	svc := newDashboardService(healthyMarket())

	_, err := svc.GetDashboard(context.Background(), "AAPL", marketdata.Period("7y"), marketdata.Interval1D)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = svc.GetDashboard(context.Background(), "AAPL", marketdata.Period1Y, marketdata.Interval("5m"))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestGetDashboard_HistoryFailureIsFatal(t *testing.T) {
	market := healthyMarket()
	market.series = nil
	market.historyErr = marketdata.ErrNoData

	svc := newDashboardService(market)
	_, err := svc.GetDashboard(context.Background(), "AAPL", marketdata.Period1Y, marketdata.Interval1D)
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestGetDashboard_ProfileAndNewsDegrade(t *testing.T) {
	market := healthyMarket()
	market.profile = nil
	market.profileErr = errors.New("profile down")
	market.news = nil
	market.newsErr = errors.New("news down")

	svc := newDashboardService(market)
	dash, err := svc.GetDashboard(context.Background(), "AAPL", marketdata.Period1Y, marketdata.Interval1D)
	require.NoError(t, err)

	assert.Nil(t, dash.Profile)
	assert.Empty(t, dash.News)
	assert.Len(t, dash.Warnings, 2)
	assert.Equal(t, "Neutral", dash.Sentiment.Label)
}

func TestGetNarrative(t *testing.T) {
	svc := newDashboardService(healthyMarket())

	block, err := svc.GetNarrative(context.Background(), "aapl", marketdata.Period1Y, marketdata.Interval1D)
	require.NoError(t, err)

	assert.Equal(t, "stub analysis", block.Narrative.Text)
	assert.Equal(t, narrative.SourceFallback, block.Narrative.Source)
	assert.NotEmpty(t, block.Analogies)
}

func TestGetNarrative_ProfileFailureStillWorks(t *testing.T) {
	market := healthyMarket()
	market.profile = nil
	market.profileErr = errors.New("profile down")

	svc := newDashboardService(market)
	block, err := svc.GetNarrative(context.Background(), "AAPL", marketdata.Period1Y, marketdata.Interval1D)
	require.NoError(t, err)
	assert.NotEmpty(t, block.Narrative.Text)
}
