package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-backend/internal/domain"
)

// Client talks to the Yahoo Finance API (via RapidAPI) and implements the
// domain QuoteProvider, RecommendationProvider, and MarketScreenerProvider
// interfaces
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
	logger     *logrus.Entry
}

// NewClient creates a new Yahoo Finance client
func NewClient(baseURL, apiKey, apiHost string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		apiHost: apiHost,
		logger:  logger.WithField("component", "yahoo-finance"),
	}
}

// modulesResponse is the shape of /api/v1/markets/stock/modules
type modulesResponse struct {
	Body json.RawMessage `json:"body"`
}

// financialData carries the current price from the financial-data module
type financialData struct {
	CurrentPrice struct {
		Raw *float64 `json:"raw"`
	} `json:"currentPrice"`
}

// recommendationBody carries the trend list from the recommendation-trend module
type recommendationBody struct {
	Trend []struct {
		Period     string `json:"period"`
		StrongBuy  int    `json:"strongBuy"`
		Buy        int    `json:"buy"`
		Hold       int    `json:"hold"`
		Sell       int    `json:"sell"`
		StrongSell int    `json:"strongSell"`
	} `json:"trend"`
}

// quotesResponse is the shape of /api/v1/markets/stock/quotes
type quotesResponse struct {
	Body []struct {
		Symbol                     string   `json:"symbol"`
		RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	} `json:"body"`
}

// screenerResponse is the shape of /api/v1/markets/screener
type screenerResponse struct {
	Body []screenerQuote `json:"body"`
}

type screenerQuote struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	LongName                   string  `json:"longName"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	RegularMarketVolume        int64   `json:"regularMarketVolume"`
	MarketCap                  float64 `json:"marketCap"`
	FiftyTwoWeekRange          string  `json:"fiftyTwoWeekRange"`
}

// FetchPrice fetches the current price and day-change percentage for a
// symbol. The two values come from two endpoints; the requests are issued
// concurrently and joined before use. The price call failing fails the
// fetch; a missing change percentage degrades to nil.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (*domain.Quote, error) {
	var wg sync.WaitGroup

	var price *float64
	var priceErr error
	var changePercent *float64
	var changeErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		var resp modulesResponse
		priceErr = c.getJSON(ctx, "/api/v1/markets/stock/modules", url.Values{
			"ticker": {symbol},
			"module": {"financial-data"},
		}, &resp)
		if priceErr != nil {
			return
		}
		var fd financialData
		if err := json.Unmarshal(resp.Body, &fd); err != nil {
			priceErr = fmt.Errorf("%w: malformed financial data for %s: %v", domain.ErrUpstreamUnavailable, symbol, err)
			return
		}
		price = fd.CurrentPrice.Raw
	}()
	go func() {
		defer wg.Done()
		var resp quotesResponse
		changeErr = c.getJSON(ctx, "/api/v1/markets/stock/quotes", url.Values{
			"ticker": {symbol},
		}, &resp)
		if changeErr == nil && len(resp.Body) > 0 {
			changePercent = resp.Body[0].RegularMarketChangePercent
		}
	}()
	wg.Wait()

	if priceErr != nil {
		return nil, priceErr
	}
	if price == nil {
		return nil, fmt.Errorf("%w: no current price for %s", domain.ErrUpstreamUnavailable, symbol)
	}
	if changeErr != nil {
		c.logger.WithError(changeErr).WithField("symbol", symbol).Warn("change percent unavailable")
	}

	quote := &domain.Quote{
		Price: decimal.NewFromFloat(*price),
	}
	if changePercent != nil {
		cp := decimal.NewFromFloat(*changePercent).Round(2)
		quote.ChangePercent = &cp
	}

	return quote, nil
}

// FetchRecommendation fetches the latest analyst recommendation trend entry
// for a symbol
func (c *Client) FetchRecommendation(ctx context.Context, symbol string) (*domain.Recommendation, error) {
	var resp modulesResponse
	err := c.getJSON(ctx, "/api/v1/markets/stock/modules", url.Values{
		"ticker": {symbol},
		"module": {"recommendation-trend"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	var body recommendationBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: malformed recommendation trend for %s: %v", domain.ErrUpstreamUnavailable, symbol, err)
	}
	if len(body.Trend) == 0 {
		return nil, fmt.Errorf("%w: no recommendation trend for %s", domain.ErrUpstreamUnavailable, symbol)
	}

	latest := body.Trend[0]
	return &domain.Recommendation{
		Period:     latest.Period,
		StrongBuy:  latest.StrongBuy,
		Buy:        latest.Buy,
		Hold:       latest.Hold,
		Sell:       latest.Sell,
		StrongSell: latest.StrongSell,
	}, nil
}

// screenerLists maps list types to the provider's screener identifiers
var screenerLists = map[domain.MarketListType]string{
	domain.MarketListGainers:    "day_gainers",
	domain.MarketListLosers:     "day_losers",
	domain.MarketListMostActive: "most_actives",
}

// maxListEntries caps how many screener rows are kept per list
const maxListEntries = 10

// FetchList fetches the top entries of a named screener list
func (c *Client) FetchList(ctx context.Context, listType domain.MarketListType) ([]*domain.MarketListEntry, error) {
	list, ok := screenerLists[listType]
	if !ok {
		return nil, fmt.Errorf("unsupported market list type %q", listType)
	}

	var resp screenerResponse
	err := c.getJSON(ctx, "/api/v1/markets/screener", url.Values{
		"list": {list},
	}, &resp)
	if err != nil {
		return nil, err
	}

	quotes := resp.Body
	if len(quotes) > maxListEntries {
		quotes = quotes[:maxListEntries]
	}

	entries := make([]*domain.MarketListEntry, 0, len(quotes))
	for _, q := range quotes {
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		entries = append(entries, &domain.MarketListEntry{
			ListType:          listType,
			Symbol:            q.Symbol,
			Name:              name,
			Price:             decimal.NewFromFloat(q.RegularMarketPrice),
			Change:            decimal.NewFromFloat(q.RegularMarketChange),
			ChangePercent:     decimal.NewFromFloat(q.RegularMarketChangePercent).Round(2),
			Volume:            q.RegularMarketVolume,
			MarketCap:         decimal.NewFromFloat(q.MarketCap).Round(0),
			FiftyTwoWeekRange: q.FiftyTwoWeekRange,
		})
	}

	return entries, nil
}

// getJSON issues an authenticated GET and decodes the JSON response.
// All transport and non-200 failures are classified as upstream
// unavailability.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: rate limited", domain.ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", domain.ErrUpstreamUnavailable, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response from %s: %v", domain.ErrUpstreamUnavailable, path, err)
	}

	return nil
}
