package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Gurusharan-Fintech/Finlense/internal/indicators"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/narrative"
	"github.com/Gurusharan-Fintech/Finlense/internal/sentiment"
)

// MarketData is the provider surface the dashboard needs.
type MarketData interface {
	FetchHistory(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*marketdata.Series, error)
	FetchProfile(ctx context.Context, ticker string) (*marketdata.CompanyProfile, error)
	FetchNews(ctx context.Context, ticker string) ([]marketdata.NewsItem, error)
}

// NarrativeGenerator produces the analysis text block.
type NarrativeGenerator interface {
	Generate(ctx context.Context, ticker string, stats indicators.Summary) narrative.Narrative
}

// Dashboard is the assembled payload for one ticker view.
type Dashboard struct {
	Symbol    marketdata.Symbol          `json:"symbol"`
	Series    *marketdata.Series         `json:"series"`
	Analysis  *indicators.Analysis       `json:"analysis"`
	Forecast  *indicators.Forecast       `json:"forecast,omitempty"`
	Profile   *marketdata.CompanyProfile `json:"profile,omitempty"`
	News      []sentiment.ScoredHeadline `json:"news,omitempty"`
	Sentiment sentiment.Aggregate        `json:"sentiment"`
	Warnings  []string                   `json:"warnings,omitempty"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// NarrativeBlock is the narrative endpoint payload: the generated (or
// fallback) text plus the storytelling analogies.
type NarrativeBlock struct {
	Narrative narrative.Narrative `json:"narrative"`
	Analogies []narrative.Analogy `json:"analogies"`
}

// DashboardService assembles dashboard payloads.
type DashboardService struct {
	market    MarketData
	generator NarrativeGenerator
	logger    *slog.Logger
}

// NewDashboardService wires the service with its provider and
// narrative backend.
func NewDashboardService(market MarketData, generator NarrativeGenerator, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		market:    market,
		generator: generator,
		logger:    logger.With(slog.String("service", "dashboard")),
	}
}

// GetDashboard builds the dashboard for a validated ticker. History is
// required; profile and news failures degrade to warnings so a flaky
// provider endpoint does not blank the whole page.
func (s *DashboardService) GetDashboard(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*Dashboard, error) {
	symbol, err := marketdata.LookupSymbol(ticker)
	if err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	if !interval.Valid() {
		return nil, ErrInvalidInterval
	}

	var (
		series  *marketdata.Series
		profile *marketdata.CompanyProfile
		news    []marketdata.NewsItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		series, fetchErr = s.market.FetchHistory(gctx, symbol.Ticker, period, interval)
		return fetchErr
	})
	g.Go(func() error {
		p, fetchErr := s.market.FetchProfile(gctx, symbol.Ticker)
		if fetchErr != nil {
			s.logger.WarnContext(gctx, "profile fetch failed",
				slog.String("ticker", symbol.Ticker),
				slog.String("error", fetchErr.Error()))
			return nil
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		items, fetchErr := s.market.FetchNews(gctx, symbol.Ticker)
		if fetchErr != nil {
			s.logger.WarnContext(gctx, "news fetch failed",
				slog.String("ticker", symbol.Ticker),
				slog.String("error", fetchErr.Error()))
			return nil
		}
		news = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	analysis := indicators.Compute(series)
	scored := sentiment.ScoreNews(news)

	dashboard := &Dashboard{
		Symbol:    symbol,
		Series:    series,
		Analysis:  analysis,
		Forecast:  indicators.ComputeForecast(analysis.Dates, analysis.Close),
		Profile:   profile,
		News:      scored,
		Sentiment: sentiment.Summarize(scored),
		FetchedAt: time.Now().UTC(),
	}
	if profile == nil {
		dashboard.Warnings = append(dashboard.Warnings, "company profile unavailable")
	}
	if news == nil {
		dashboard.Warnings = append(dashboard.Warnings, "news headlines unavailable")
	}

	s.logger.InfoContext(ctx, "dashboard assembled",
		slog.String("ticker", symbol.Ticker),
		slog.String("period", string(period)),
		slog.String("interval", string(interval)),
		slog.Int("bars", len(series.Bars)),
		slog.Int("warnings", len(dashboard.Warnings)))

	return dashboard, nil
}

// GetNarrative builds the narrative block for a validated ticker. The
// model call happens here, bounded by the generator's own timeout, so
// the main dashboard endpoint stays fast.
func (s *DashboardService) GetNarrative(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*NarrativeBlock, error) {
	symbol, err := marketdata.LookupSymbol(ticker)
	if err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	if !interval.Valid() {
		return nil, ErrInvalidInterval
	}

	series, err := s.market.FetchHistory(ctx, symbol.Ticker, period, interval)
	if err != nil {
		return nil, err
	}

	// Profile enriches the analogies but is not required.
	profile, err := s.market.FetchProfile(ctx, symbol.Ticker)
	if err != nil {
		profile = nil
	}

	stats := indicators.Summarize(series)
	n := s.generator.Generate(ctx, symbol.Ticker, stats)

	return &NarrativeBlock{
		Narrative: n,
		Analogies: narrative.Analogies(profile, stats),
	}, nil
}
