package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is the last-known price for a traded symbol, populated only
// by successful external provider calls. The price is authoritative only as
// of LastRefreshed — consumers must treat it as a point estimate.
type PriceSnapshot struct {
	Symbol        string
	Price         decimal.Decimal
	ChangePercent *decimal.Decimal // nil when the provider did not report one
	LastRefreshed time.Time
}

// RecommendationSnapshot is the last-known analyst recommendation counts for
// a symbol. Same freshness contract as PriceSnapshot.
type RecommendationSnapshot struct {
	Symbol        string
	Period        string
	StrongBuy     int
	Buy           int
	Hold          int
	Sell          int
	StrongSell    int
	LastRefreshed time.Time
}

// MarketListType names a market screener list
type MarketListType string

const (
	MarketListGainers    MarketListType = "gainers"
	MarketListLosers     MarketListType = "losers"
	MarketListMostActive MarketListType = "most-active"
)

// Valid reports whether the list type is a supported screener list
func (t MarketListType) Valid() bool {
	switch t {
	case MarketListGainers, MarketListLosers, MarketListMostActive:
		return true
	}
	return false
}

// MarketListEntry is one row of a cached screener list. The full set of rows
// for a list type is replaced together on refresh, never incrementally.
type MarketListEntry struct {
	ListType          MarketListType
	Symbol            string
	Name              string
	Price             decimal.Decimal
	Change            decimal.Decimal
	ChangePercent     decimal.Decimal
	Volume            int64
	MarketCap         decimal.Decimal
	FiftyTwoWeekRange string
	LastRefreshed     time.Time
}
