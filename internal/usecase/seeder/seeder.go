package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-backend/internal/domain"
	"github.com/finsight/finsight-backend/internal/usecase/marketdata"
	"github.com/finsight/finsight-backend/internal/usecase/valuation"
)

// SeedHolding defines a default holding to be seeded on first run
type SeedHolding struct {
	AssetClass domain.AssetClass
	Symbol     string
	Quantity   decimal.Decimal
}

// defaultHoldings is the starter portfolio for an empty database
var defaultHoldings = []SeedHolding{
	{AssetClass: domain.AssetClassCash, Quantity: decimal.NewFromInt(5000)},
	{AssetClass: domain.AssetClassStock, Symbol: "AAPL", Quantity: decimal.NewFromInt(10)},
	{AssetClass: domain.AssetClassStock, Symbol: "NVDA", Quantity: decimal.NewFromInt(5)},
	{AssetClass: domain.AssetClassBond, Quantity: decimal.NewFromInt(2000)},
	{AssetClass: domain.AssetClassOther, Quantity: decimal.NewFromInt(1000)},
}

// defaultWatchlist is the starter set of tracked symbols
var defaultWatchlist = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"TSLA", "META", "NFLX", "AMD", "INTC",
}

// Seeder populates an empty database with the starter portfolio and
// watchlist, and warms the price cache
type Seeder struct {
	holdingRepo   domain.HoldingRepository
	watchlistRepo domain.WatchlistRepository
	engine        *valuation.Engine
	prices        *marketdata.PriceService
	preloadPrices bool
	logger        *logrus.Entry
}

// NewSeeder creates a new Seeder instance
func NewSeeder(
	holdingRepo domain.HoldingRepository,
	watchlistRepo domain.WatchlistRepository,
	engine *valuation.Engine,
	prices *marketdata.PriceService,
	preloadPrices bool,
	logger *logrus.Logger,
) *Seeder {
	return &Seeder{
		holdingRepo:   holdingRepo,
		watchlistRepo: watchlistRepo,
		engine:        engine,
		prices:        prices,
		preloadPrices: preloadPrices,
		logger:        logger.WithField("component", "seeder"),
	}
}

// Seed ensures the database holds a usable starting state. It is
// idempotent: existing holdings and watchlist entries are never
// overwritten.
func (s *Seeder) Seed(ctx context.Context) error {
	seeded, err := s.seedHoldings(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed holdings: %w", err)
	}

	if err := s.seedWatchlist(ctx); err != nil {
		return fmt.Errorf("failed to seed watchlist: %w", err)
	}

	if s.preloadPrices {
		s.preload(ctx)
	}

	if seeded {
		if err := s.engine.RecordDailySnapshot(ctx, time.Now()); err != nil {
			return fmt.Errorf("failed to record initial snapshot: %w", err)
		}
	}

	return nil
}

// seedHoldings inserts the default holdings if none exist. Returns true
// when the defaults were inserted.
func (s *Seeder) seedHoldings(ctx context.Context) (bool, error) {
	existing, err := s.holdingRepo.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, sh := range defaultHoldings {
		if err := s.holdingRepo.UpsertQuantity(ctx, sh.AssetClass, sh.Symbol, sh.Quantity); err != nil {
			return false, err
		}
	}
	s.logger.WithField("holdings", len(defaultHoldings)).Info("seeded default holdings")
	return true, nil
}

// seedWatchlist inserts the default watchlist if it is empty
func (s *Seeder) seedWatchlist(ctx context.Context) error {
	existing, err := s.watchlistRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	for _, symbol := range defaultWatchlist {
		if err := s.watchlistRepo.Add(ctx, symbol, now); err != nil {
			return err
		}
	}
	s.logger.WithField("symbols", len(defaultWatchlist)).Info("seeded default watchlist")
	return nil
}

// preload warms the price cache for every held stock and watched symbol.
// Individual fetch failures are logged and skipped; the cache fills in on
// later requests.
func (s *Seeder) preload(ctx context.Context) {
	symbols := make(map[string]struct{})

	holdings, err := s.holdingRepo.List(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("skipping price preload for holdings")
	} else {
		for _, h := range holdings {
			if h.AssetClass == domain.AssetClassStock {
				symbols[h.Symbol] = struct{}{}
			}
		}
	}

	watched, err := s.watchlistRepo.List(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("skipping price preload for watchlist")
	} else {
		for _, symbol := range watched {
			symbols[symbol] = struct{}{}
		}
	}

	for symbol := range symbols {
		if _, err := s.prices.TrackSymbol(ctx, symbol); err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("price preload failed")
		}
	}
}
