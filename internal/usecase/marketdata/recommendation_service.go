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

// RecommendationService serves analyst recommendation counts from the cache,
// refreshing from the external provider when the cached row has aged past
// its TTL
type RecommendationService struct {
	RecommendationRepo domain.RecommendationRepository
	WatchlistRepo      domain.WatchlistRepository
	Provider           domain.RecommendationProvider

	TTL time.Duration

	logger *logrus.Entry
}

// NewRecommendationService creates a new RecommendationService instance
func NewRecommendationService(
	recommendationRepo domain.RecommendationRepository,
	watchlistRepo domain.WatchlistRepository,
	provider domain.RecommendationProvider,
	ttl time.Duration,
	logger *logrus.Logger,
) *RecommendationService {
	if ttl <= 0 {
		ttl = DefaultRecommendationTTL
	}
	return &RecommendationService{
		RecommendationRepo: recommendationRepo,
		WatchlistRepo:      watchlistRepo,
		Provider:           provider,
		TTL:                ttl,
		logger:             logger.WithField("component", "recommendation-cache"),
	}
}

// GetRecommendation returns the recommendation snapshot for a symbol,
// refreshing it first when stale or absent. A failed refresh degrades to
// the last good cached value when one exists.
func (s *RecommendationService) GetRecommendation(ctx context.Context, symbol string) (*domain.RecommendationSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.ErrMissingSymbol
	}

	cached, err := s.RecommendationRepo.GetBySymbol(ctx, symbol)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if cached != nil && !isStale(cached.LastRefreshed, s.TTL) {
		return cached, nil
	}

	fresh, fetchErr := s.Provider.FetchRecommendation(ctx, symbol)
	if fetchErr != nil {
		if cached != nil {
			s.logger.WithError(fetchErr).WithField("symbol", symbol).Warn("recommendation refresh failed, serving stale snapshot")
			return cached, nil
		}
		return nil, fetchErr
	}

	snap := &domain.RecommendationSnapshot{
		Symbol:        symbol,
		Period:        fresh.Period,
		StrongBuy:     fresh.StrongBuy,
		Buy:           fresh.Buy,
		Hold:          fresh.Hold,
		Sell:          fresh.Sell,
		StrongSell:    fresh.StrongSell,
		LastRefreshed: time.Now(),
	}

	if err := s.RecommendationRepo.Upsert(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to cache recommendation for %s: %w", symbol, err)
	}

	return snap, nil
}

// GetTrackedRecommendations returns recommendations for every watchlist
// symbol. Symbols are refreshed sequentially to respect upstream rate
// limits; a symbol whose refresh fails with no cached fallback is reported
// with a nil snapshot rather than failing the whole listing.
func (s *RecommendationService) GetTrackedRecommendations(ctx context.Context) (map[string]*domain.RecommendationSnapshot, error) {
	symbols, err := s.WatchlistRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*domain.RecommendationSnapshot, len(symbols))
	for _, symbol := range symbols {
		snap, err := s.GetRecommendation(ctx, symbol)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("recommendation unavailable for tracked symbol")
			result[symbol] = nil
			continue
		}
		result[symbol] = snap
	}

	return result, nil
}

// TrackSymbol durably adds a symbol to the watchlist and returns its
// recommendation snapshot (refreshing per the usual TTL policy)
func (s *RecommendationService) TrackSymbol(ctx context.Context, symbol string) (*domain.RecommendationSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.ErrMissingSymbol
	}

	if err := s.WatchlistRepo.Add(ctx, symbol, time.Now()); err != nil {
		return nil, err
	}

	return s.GetRecommendation(ctx, symbol)
}
