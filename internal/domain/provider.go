package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price from the external quote provider
type Quote struct {
	Price         decimal.Decimal
	ChangePercent *decimal.Decimal // nil when the provider did not report one
}

// Recommendation is the latest analyst recommendation trend for a symbol
type Recommendation struct {
	Period     string
	StrongBuy  int
	Buy        int
	Hold       int
	Sell       int
	StrongSell int
}

// QuoteProvider fetches live quotes from an external market data API.
// Failures wrap ErrUpstreamUnavailable.
type QuoteProvider interface {
	FetchPrice(ctx context.Context, symbol string) (*Quote, error)
}

// RecommendationProvider fetches analyst recommendation trends.
// Failures wrap ErrUpstreamUnavailable.
type RecommendationProvider interface {
	FetchRecommendation(ctx context.Context, symbol string) (*Recommendation, error)
}

// MarketScreenerProvider fetches the top entries of a named screener list.
// Failures wrap ErrUpstreamUnavailable.
type MarketScreenerProvider interface {
	FetchList(ctx context.Context, listType MarketListType) ([]*MarketListEntry, error)
}
