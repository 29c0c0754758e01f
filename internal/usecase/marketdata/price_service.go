package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-backend/internal/domain"
)

// PriceService maintains the cached last-known prices for tracked symbols.
// Prices are refreshed on demand when a symbol is (re-)tracked rather than
// polled on a TTL.
type PriceService struct {
	PriceRepo domain.PriceSnapshotRepository
	Quotes    domain.QuoteProvider

	logger *logrus.Entry
}

// NewPriceService creates a new PriceService instance
func NewPriceService(priceRepo domain.PriceSnapshotRepository, quotes domain.QuoteProvider, logger *logrus.Logger) *PriceService {
	return &PriceService{
		PriceRepo: priceRepo,
		Quotes:    quotes,
		logger:    logger.WithField("component", "price-cache"),
	}
}

// TrackSymbol fetches a live quote for the symbol and upserts its price
// snapshot. When the provider is unavailable but a prior snapshot exists,
// the stale snapshot is served instead of an error; the cached row is never
// overwritten by a failed refresh.
func (s *PriceService) TrackSymbol(ctx context.Context, symbol string) (*domain.PriceSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.ErrMissingSymbol
	}

	quote, err := s.Quotes.FetchPrice(ctx, symbol)
	if err != nil {
		cached, cacheErr := s.PriceRepo.GetBySymbol(ctx, symbol)
		if cacheErr == nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("quote refresh failed, serving last cached price")
			return cached, nil
		}
		if !errors.Is(cacheErr, domain.ErrNotFound) {
			return nil, cacheErr
		}
		return nil, err
	}

	snap := &domain.PriceSnapshot{
		Symbol:        symbol,
		Price:         quote.Price,
		ChangePercent: quote.ChangePercent,
		LastRefreshed: time.Now(),
	}

	if err := s.PriceRepo.Upsert(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to cache price for %s: %w", symbol, err)
	}

	return snap, nil
}

// ListPrices serves the cached price snapshots without any external call
func (s *PriceService) ListPrices(ctx context.Context) ([]*domain.PriceSnapshot, error) {
	return s.PriceRepo.List(ctx)
}

// RemoveSymbol drops the cached price snapshot for a symbol
func (s *PriceService) RemoveSymbol(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.ErrMissingSymbol
	}
	return s.PriceRepo.Delete(ctx, symbol)
}
