package marketdata

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/finsight/finsight-backend/internal/domain"
)

// MockPriceSnapshotRepository is a mock implementation of PriceSnapshotRepository for testing
type MockPriceSnapshotRepository struct {
	mock.Mock
}

func (m *MockPriceSnapshotRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.PriceSnapshot, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceSnapshot), args.Error(1)
}

func (m *MockPriceSnapshotRepository) GetBySymbols(ctx context.Context, symbols []string) (map[string]*domain.PriceSnapshot, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.PriceSnapshot), args.Error(1)
}

func (m *MockPriceSnapshotRepository) List(ctx context.Context) ([]*domain.PriceSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PriceSnapshot), args.Error(1)
}

func (m *MockPriceSnapshotRepository) Upsert(ctx context.Context, snap *domain.PriceSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockPriceSnapshotRepository) Delete(ctx context.Context, symbol string) error {
	args := m.Called(ctx, symbol)
	return args.Error(0)
}

// MockQuoteProvider is a mock implementation of QuoteProvider for testing
type MockQuoteProvider struct {
	mock.Mock
}

func (m *MockQuoteProvider) FetchPrice(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestTrackSymbol_FetchesAndCaches(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceSnapshotRepository)
	mockQuotes := new(MockQuoteProvider)

	service := NewPriceService(mockRepo, mockQuotes, newTestLogger())

	changePercent := decimal.RequireFromString("1.25")
	mockQuotes.On("FetchPrice", ctx, "AAPL").Return(&domain.Quote{
		Price:         decimal.NewFromInt(150),
		ChangePercent: &changePercent,
	}, nil)
	mockRepo.On("Upsert", ctx, mock.MatchedBy(func(snap *domain.PriceSnapshot) bool {
		return snap.Symbol == "AAPL" &&
			snap.Price.Equal(decimal.NewFromInt(150)) &&
			snap.ChangePercent != nil &&
			!snap.LastRefreshed.IsZero()
	})).Return(nil)

	snap, err := service.TrackSymbol(ctx, "aapl")

	assert.NoError(t, err)
	assert.Equal(t, "AAPL", snap.Symbol)
	assert.True(t, snap.Price.Equal(decimal.NewFromInt(150)))

	mockRepo.AssertExpectations(t)
	mockQuotes.AssertExpectations(t)
}

func TestTrackSymbol_FallsBackToCacheOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceSnapshotRepository)
	mockQuotes := new(MockQuoteProvider)

	service := NewPriceService(mockRepo, mockQuotes, newTestLogger())

	cached := &domain.PriceSnapshot{
		Symbol:        "AAPL",
		Price:         decimal.NewFromInt(148),
		LastRefreshed: time.Now().Add(-48 * time.Hour),
	}
	mockQuotes.On("FetchPrice", ctx, "AAPL").Return(nil, domain.ErrUpstreamUnavailable)
	mockRepo.On("GetBySymbol", ctx, "AAPL").Return(cached, nil)

	snap, err := service.TrackSymbol(ctx, "AAPL")

	assert.NoError(t, err)
	assert.Equal(t, cached, snap)

	// A failed refresh must never overwrite the cached row
	mockRepo.AssertNotCalled(t, "Upsert")
}

func TestTrackSymbol_FetchFailureWithoutCache(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceSnapshotRepository)
	mockQuotes := new(MockQuoteProvider)

	service := NewPriceService(mockRepo, mockQuotes, newTestLogger())

	mockQuotes.On("FetchPrice", ctx, "ZZZZ").Return(nil, domain.ErrUpstreamUnavailable)
	mockRepo.On("GetBySymbol", ctx, "ZZZZ").Return(nil, domain.ErrNotFound)

	_, err := service.TrackSymbol(ctx, "ZZZZ")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	mockRepo.AssertNotCalled(t, "Upsert")
}

func TestTrackSymbol_EmptySymbol(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceSnapshotRepository)
	mockQuotes := new(MockQuoteProvider)

	service := NewPriceService(mockRepo, mockQuotes, newTestLogger())

	_, err := service.TrackSymbol(ctx, "   ")

	assert.ErrorIs(t, err, domain.ErrMissingSymbol)
	mockQuotes.AssertNotCalled(t, "FetchPrice")
}

func TestListPrices_ServedFromCacheOnly(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceSnapshotRepository)
	mockQuotes := new(MockQuoteProvider)

	service := NewPriceService(mockRepo, mockQuotes, newTestLogger())

	mockRepo.On("List", ctx).Return([]*domain.PriceSnapshot{
		{Symbol: "AAPL", Price: decimal.NewFromInt(150)},
		{Symbol: "NVDA", Price: decimal.NewFromInt(400)},
	}, nil)

	snaps, err := service.ListPrices(ctx)

	assert.NoError(t, err)
	assert.Len(t, snaps, 2)
	mockQuotes.AssertNotCalled(t, "FetchPrice")
}

func TestRemoveSymbol(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPriceSnapshotRepository)

	service := NewPriceService(mockRepo, new(MockQuoteProvider), newTestLogger())

	mockRepo.On("Delete", ctx, "AAPL").Return(nil)

	err := service.RemoveSymbol(ctx, " aapl ")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
