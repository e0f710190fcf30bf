package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
)

// Client queries the remote finance data provider. One fixed-timeout
// HTTP client, no retries: a failed call surfaces as an error and the
// caller degrades to empty data.
type Client struct {
	chartBaseURL  string
	searchBaseURL string
	userAgent     string
	newsLimit     int
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient creates a provider client from configuration.
func NewClient(cfg config.MarketConfig, logger *slog.Logger) *Client {
	return &Client{
		chartBaseURL:  cfg.ChartBaseURL,
		searchBaseURL: cfg.SearchBaseURL,
		userAgent:     cfg.UserAgent,
		newsLimit:     cfg.NewsLimit,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger.With(slog.String("component", "marketdata_client")),
	}
}

// chartResponse mirrors the provider's chart endpoint payload. Price
// arrays use pointers because the provider emits nulls for missing bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchHistory fetches an OHLCV series for the ticker. Bars with a
// missing close are skipped.
func (c *Client) FetchHistory(ctx context.Context, ticker string, period Period, interval Interval) (*Series, error) {
	ticker = NormalizeTicker(ticker)

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		c.chartBaseURL, url.PathEscape(ticker), period, interval)

	var payload chartResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	if payload.Chart.Error != nil {
		c.logger.WarnContext(ctx, "provider rejected chart request",
			slog.String("ticker", ticker),
			slog.String("code", payload.Chart.Error.Code))
		return nil, fmt.Errorf("%w: %s", ErrNoData, payload.Chart.Error.Description)
	}

	if len(payload.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, ErrNoData
	}

	quote := result.Indicators.Quote[0]
	series := &Series{
		Ticker:   ticker,
		Period:   period,
		Interval: interval,
		Currency: result.Meta.Currency,
		Bars:     make([]Bar, 0, len(result.Timestamp)),
	}

	for i, ts := range result.Timestamp {
		closePx := at(quote.Close, i)
		if closePx == nil {
			continue
		}
		bar := Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closePx,
		}
		if v := at(quote.Open, i); v != nil {
			bar.Open = *v
		}
		if v := at(quote.High, i); v != nil {
			bar.High = *v
		}
		if v := at(quote.Low, i); v != nil {
			bar.Low = *v
		}
		if v := atInt(quote.Volume, i); v != nil {
			bar.Volume = *v
		}
		series.Bars = append(series.Bars, bar)
	}

	if series.IsEmpty() {
		return nil, ErrNoData
	}

	return series, nil
}

// FetchLatestQuote fetches the most recent close for the ticker.
func (c *Client) FetchLatestQuote(ctx context.Context, ticker string) (Quote, error) {
	series, err := c.FetchHistory(ctx, ticker, Period1Mo, Interval1D)
	if err != nil {
		return Quote{}, err
	}
	last := series.Last()
	return Quote{Ticker: series.Ticker, Price: last.Close, Time: last.Date}, nil
}

// rawValue is the provider's {raw, fmt} number wrapper.
type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				LongBusinessSummary string `json:"longBusinessSummary"`
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
			} `json:"assetProfile"`
			Price struct {
				ShortName string `json:"shortName"`
				LongName  string `json:"longName"`
			} `json:"price"`
			SummaryDetail struct {
				MarketCap            rawValue `json:"marketCap"`
				TrailingPE           rawValue `json:"trailingPE"`
				DividendYield        rawValue `json:"dividendYield"`
				FiftyTwoWeekHigh     rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow      rawValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps rawValue `json:"trailingEps"`
				PriceToBook rawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				TotalRevenue   rawValue `json:"totalRevenue"`
				ProfitMargins  rawValue `json:"profitMargins"`
				ReturnOnEquity rawValue `json:"returnOnEquity"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchProfile fetches company metadata for the ticker. Missing modules
// leave the corresponding fields zero; only a transport-level failure
// returns an error.
func (c *Client) FetchProfile(ctx context.Context, ticker string) (*CompanyProfile, error) {
	ticker = NormalizeTicker(ticker)

	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,price,summaryDetail,defaultKeyStatistics,financialData",
		c.chartBaseURL, url.PathEscape(ticker))

	var payload quoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	if payload.QuoteSummary.Error != nil || len(payload.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: no profile for %s", ErrNoData, ticker)
	}

	result := payload.QuoteSummary.Result[0]

	name := result.Price.ShortName
	if name == "" {
		name = result.Price.LongName
	}
	if name == "" {
		name = ticker
	}

	return &CompanyProfile{
		Ticker:         ticker,
		Name:           name,
		Summary:        result.AssetProfile.LongBusinessSummary,
		Sector:         result.AssetProfile.Sector,
		Industry:       result.AssetProfile.Industry,
		MarketCap:      int64(result.SummaryDetail.MarketCap.Raw),
		TotalRevenue:   int64(result.FinancialData.TotalRevenue.Raw),
		TrailingPE:     result.SummaryDetail.TrailingPE.Raw,
		TrailingEPS:    result.DefaultKeyStatistics.TrailingEps.Raw,
		PriceToBook:    result.DefaultKeyStatistics.PriceToBook.Raw,
		ProfitMargin:   result.FinancialData.ProfitMargins.Raw,
		ReturnOnEquity: result.FinancialData.ReturnOnEquity.Raw,
		DividendYield:  result.SummaryDetail.DividendYield.Raw,
		FiftyTwoWkHigh: result.SummaryDetail.FiftyTwoWeekHigh.Raw,
		FiftyTwoWkLow:  result.SummaryDetail.FiftyTwoWeekLow.Raw,
	}, nil
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Link                string `json:"link"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// FetchNews fetches recent news headlines for the ticker, capped at the
// configured limit. An empty slice is a valid result.
func (c *Client) FetchNews(ctx context.Context, ticker string) ([]NewsItem, error) {
	ticker = NormalizeTicker(ticker)

	endpoint := fmt.Sprintf("%s/v1/finance/search?q=%s", c.searchBaseURL, url.QueryEscape(ticker))

	var payload searchResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	limit := c.newsLimit
	if limit <= 0 {
		limit = 5
	}

	items := make([]NewsItem, 0, limit)
	for _, article := range payload.News {
		if len(items) >= limit {
			break
		}
		item := NewsItem{
			Title:     article.Title,
			Link:      article.Link,
			Publisher: article.Publisher,
		}
		if article.ProviderPublishTime > 0 {
			item.PublishedAt = time.Unix(article.ProviderPublishTime, 0).UTC()
		}
		items = append(items, item)
	}

	return items, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNoData
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status %d", ErrProvider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrProvider, err)
	}

	return nil
}

func at(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

func atInt(values []*int64, i int) *int64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}
