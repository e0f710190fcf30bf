package marketdata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(chartURL, searchURL string) *Client {
	return NewClient(config.MarketConfig{
		ChartBaseURL:  chartURL,
		SearchBaseURL: searchURL,
		Timeout:       5 * time.Second,
		UserAgent:     "FinLens/test",
		NewsLimit:     5,
	}, testLogger())
}

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL"},
      "timestamp": [1704067200, 1704153600, 1704240000],
      "indicators": {
        "quote": [{
          "open":   [184.1, null, 186.0],
          "high":   [186.7, null, 187.4],
          "low":    [183.9, null, 185.2],
          "close":  [185.5, null, 186.9],
          "volume": [52000000, null, 48000000]
        }]
      }
    }],
    "error": null
  }
}`

func TestFetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "FinLens/test", r.Header.Get("User-Agent"))
		io.WriteString(w, chartFixture)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	series, err := client.FetchHistory(context.Background(), "aapl", Period1Y, Interval1D)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", series.Ticker)
	assert.Equal(t, "USD", series.Currency)
	// The null middle bar is dropped.
	require.Len(t, series.Bars, 2)
	assert.InDelta(t, 185.5, series.Bars[0].Close, 0.001)
	assert.InDelta(t, 186.9, series.Bars[1].Close, 0.001)
	assert.Equal(t, int64(48000000), series.Bars[1].Volume)
	assert.Equal(t, time.Unix(1704240000, 0).UTC(), series.Bars[1].Date)
}

func TestFetchHistory_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	_, err := client.FetchHistory(context.Background(), "ZZZZ", Period1Y, Interval1D)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetchHistory_HTTPFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrNoData},
		{"server error", http.StatusInternalServerError, ErrProvider},
		{"rate limited", http.StatusTooManyRequests, ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, srv.URL)
			_, err := client.FetchHistory(context.Background(), "AAPL", Period1Y, Interval1D)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchHistory_Unreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", "http://127.0.0.1:1")
	_, err := client.FetchHistory(context.Background(), "AAPL", Period1Y, Interval1D)
	assert.ErrorIs(t, err, ErrProvider)
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/AAPL", r.URL.Path)
		io.WriteString(w, `{
  "quoteSummary": {
    "result": [{
      "assetProfile": {"longBusinessSummary": "Designs smartphones.", "sector": "Technology", "industry": "Consumer Electronics"},
      "price": {"shortName": "Apple Inc."},
      "summaryDetail": {
        "marketCap": {"raw": 2900000000000},
        "trailingPE": {"raw": 29.4},
        "dividendYield": {"raw": 0.0055},
        "fiftyTwoWeekHigh": {"raw": 199.6},
        "fiftyTwoWeekLow": {"raw": 164.1}
      },
      "defaultKeyStatistics": {"trailingEps": {"raw": 6.42}, "priceToBook": {"raw": 45.2}},
      "financialData": {"totalRevenue": {"raw": 383000000000}, "profitMargins": {"raw": 0.25}, "returnOnEquity": {"raw": 1.6}}
    }],
    "error": null
  }
}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	profile, err := client.FetchProfile(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", profile.Name)
	assert.Equal(t, "Technology", profile.Sector)
	assert.Equal(t, int64(2900000000000), profile.MarketCap)
	assert.InDelta(t, 29.4, profile.TrailingPE, 0.001)
	assert.InDelta(t, 6.42, profile.TrailingEPS, 0.001)
	assert.InDelta(t, 0.25, profile.ProfitMargin, 0.001)
}

func TestFetchProfile_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"quoteSummary":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	_, err := client.FetchProfile(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetchNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "TSLA", r.URL.Query().Get("q"))
		io.WriteString(w, `{
  "news": [
    {"title": "Tesla posts record deliveries", "link": "https://example.com/1", "publisher": "Newswire", "providerPublishTime": 1704067200},
    {"title": "Margins under pressure", "link": "https://example.com/2", "publisher": "Daily", "providerPublishTime": 1704153600},
    {"title": "Three", "publisher": "A"},
    {"title": "Four", "publisher": "B"},
    {"title": "Five", "publisher": "C"},
    {"title": "Six should be dropped", "publisher": "D"}
  ]
}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	items, err := client.FetchNews(context.Background(), "tsla")
	require.NoError(t, err)

	require.Len(t, items, 5)
	assert.Equal(t, "Tesla posts record deliveries", items[0].Title)
	assert.Equal(t, time.Unix(1704067200, 0).UTC(), items[0].PublishedAt)
	assert.True(t, items[2].PublishedAt.IsZero())
}

func TestFetchLatestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		io.WriteString(w, chartFixture)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	quote, err := client.FetchLatestQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Ticker)
	assert.InDelta(t, 186.9, quote.Price, 0.001)
}
