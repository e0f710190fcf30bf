package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// QuoteFetcher retrieves the latest price for a ticker.
type QuoteFetcher interface {
	FetchLatestQuote(ctx context.Context, ticker string) (marketdata.Quote, error)
}

// QuotePoller periodically refreshes every subscribed ticker and feeds
// the results to the hub.
type QuotePoller struct {
	hub      *Hub
	fetcher  QuoteFetcher
	interval time.Duration
	logger   *slog.Logger
}

// NewQuotePoller creates a poller for the hub.
func NewQuotePoller(hub *Hub, fetcher QuoteFetcher, interval time.Duration, logger *slog.Logger) *QuotePoller {
	return &QuotePoller{
		hub:      hub,
		fetcher:  fetcher,
		interval: interval,
		logger:   logger.With(slog.String("component", "websocket.poller")),
	}
}

// Run polls until ctx is cancelled. Fetch failures for one ticker are
// logged and skipped; the rest of the list still refreshes.
func (p *QuotePoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("quote poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *QuotePoller) poll(ctx context.Context) {
	tickers := p.hub.SubscribedTickers()
	if len(tickers) == 0 {
		return
	}

	for _, symbol := range tickers {
		quote, err := p.fetcher.FetchLatestQuote(ctx, symbol)
		if err != nil {
			p.logger.Warn("quote fetch failed",
				slog.String("ticker", symbol),
				slog.String("error", err.Error()))
			continue
		}
		p.hub.BroadcastQuote(quote)
	}
}
