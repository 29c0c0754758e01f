package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-backend/internal/domain"
)

// MarketListService serves cached screener lists (gainers, losers, most
// active), refreshing a list when it has aged past its TTL or holds fewer
// rows than the completeness threshold
type MarketListService struct {
	ListRepo domain.MarketListRepository
	Screener domain.MarketScreenerProvider

	TTL time.Duration

	logger *logrus.Entry
}

// NewMarketListService creates a new MarketListService instance
func NewMarketListService(
	listRepo domain.MarketListRepository,
	screener domain.MarketScreenerProvider,
	ttl time.Duration,
	logger *logrus.Logger,
) *MarketListService {
	if ttl <= 0 {
		ttl = DefaultMarketListTTL
	}
	return &MarketListService{
		ListRepo: listRepo,
		Screener: screener,
		TTL:      ttl,
		logger:   logger.WithField("component", "market-list-cache"),
	}
}

// GetList returns the cached entries for a screener list, refreshing first
// when the cache is stale, incomplete, or absent. A failed refresh degrades
// to the last good cached list when one exists.
func (s *MarketListService) GetList(ctx context.Context, listType domain.MarketListType) ([]*domain.MarketListEntry, error) {
	if !listType.Valid() {
		return nil, fmt.Errorf("%w: unknown market list %q", domain.ErrNotFound, listType)
	}

	cached, err := s.ListRepo.GetByType(ctx, listType)
	if err != nil {
		return nil, err
	}

	if s.isListFresh(cached) {
		return cached, nil
	}

	fresh, fetchErr := s.Screener.FetchList(ctx, listType)
	if fetchErr != nil {
		if len(cached) > 0 {
			s.logger.WithError(fetchErr).WithField("list", listType).Warn("screener refresh failed, serving stale list")
			return cached, nil
		}
		return nil, fetchErr
	}

	now := time.Now()
	for _, entry := range fresh {
		entry.ListType = listType
		entry.LastRefreshed = now
	}

	if err := s.ListRepo.ReplaceList(ctx, listType, fresh); err != nil {
		return nil, fmt.Errorf("failed to cache %s list: %w", listType, err)
	}

	return fresh, nil
}

// isListFresh requires both recency and completeness: rows within TTL and
// at least MinMarketListRows of them
func (s *MarketListService) isListFresh(entries []*domain.MarketListEntry) bool {
	if len(entries) < MinMarketListRows {
		return false
	}
	return !isStale(entries[0].LastRefreshed, s.TTL)
}
