package seeder

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/finsight/finsight-backend/internal/domain"
	"github.com/finsight/finsight-backend/internal/usecase/marketdata"
	"github.com/finsight/finsight-backend/internal/usecase/valuation"
)

// MockHoldingRepository is a mock implementation of HoldingRepository for testing
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) Get(ctx context.Context, class domain.AssetClass, symbol string) (*domain.Holding, error) {
	args := m.Called(ctx, class, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) List(ctx context.Context) ([]*domain.Holding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) UpsertQuantity(ctx context.Context, class domain.AssetClass, symbol string, quantity decimal.Decimal) error {
	args := m.Called(ctx, class, symbol, quantity)
	return args.Error(0)
}

func (m *MockHoldingRepository) AddQuantity(ctx context.Context, class domain.AssetClass, symbol string, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, class, symbol, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockHoldingRepository) ReduceQuantity(ctx context.Context, class domain.AssetClass, symbol string, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, class, symbol, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockHoldingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockWatchlistRepository is a mock implementation of WatchlistRepository for testing
type MockWatchlistRepository struct {
	mock.Mock
}

func (m *MockWatchlistRepository) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWatchlistRepository) Add(ctx context.Context, symbol string, addedAt time.Time) error {
	args := m.Called(ctx, symbol, addedAt)
	return args.Error(0)
}

func (m *MockWatchlistRepository) Remove(ctx context.Context, symbol string) error {
	args := m.Called(ctx, symbol)
	return args.Error(0)
}

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

// MockHistoryRepository is a mock implementation of HistoryRepository for testing
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Upsert(ctx context.Context, point *domain.HistoryPoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListAscending(ctx context.Context) ([]*domain.HistoryPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryPoint), args.Error(1)
}

func (m *MockHistoryRepository) GetEarliest(ctx context.Context) (*domain.HistoryPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryPoint), args.Error(1)
}

// MockPortfolioSummaryRepository is a mock implementation of PortfolioSummaryRepository for testing
type MockPortfolioSummaryRepository struct {
	mock.Mock
}

func (m *MockPortfolioSummaryRepository) Get(ctx context.Context) (*domain.PortfolioSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioSummary), args.Error(1)
}

func (m *MockPortfolioSummaryRepository) Upsert(ctx context.Context, summary *domain.PortfolioSummary) error {
	args := m.Called(ctx, summary)
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

type seederFixture struct {
	holdings  *MockHoldingRepository
	watchlist *MockWatchlistRepository
	prices    *MockPriceSnapshotRepository
	history   *MockHistoryRepository
	summaries *MockPortfolioSummaryRepository
	quotes    *MockQuoteProvider
}

func newSeederFixture(preloadPrices bool) (*Seeder, *seederFixture) {
	f := &seederFixture{
		holdings:  new(MockHoldingRepository),
		watchlist: new(MockWatchlistRepository),
		prices:    new(MockPriceSnapshotRepository),
		history:   new(MockHistoryRepository),
		summaries: new(MockPortfolioSummaryRepository),
		quotes:    new(MockQuoteProvider),
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	engine := valuation.NewEngine(f.holdings, f.prices, f.history, f.summaries, decimal.NewFromInt(12310), logger)
	priceService := marketdata.NewPriceService(f.prices, f.quotes, logger)

	return NewSeeder(f.holdings, f.watchlist, engine, priceService, preloadPrices, logger), f
}

func TestSeed_EmptyDatabaseGetsDefaults(t *testing.T) {
	ctx := context.Background()
	s, f := newSeederFixture(false)

	f.holdings.On("List", ctx).Return([]*domain.Holding{}, nil)
	f.watchlist.On("List", ctx).Return([]string{}, nil)

	f.holdings.On("UpsertQuantity", ctx, domain.AssetClassCash, "", decimal.NewFromInt(5000)).Return(nil)
	f.holdings.On("UpsertQuantity", ctx, domain.AssetClassStock, "AAPL", decimal.NewFromInt(10)).Return(nil)
	f.holdings.On("UpsertQuantity", ctx, domain.AssetClassStock, "NVDA", decimal.NewFromInt(5)).Return(nil)
	f.holdings.On("UpsertQuantity", ctx, domain.AssetClassBond, "", decimal.NewFromInt(2000)).Return(nil)
	f.holdings.On("UpsertQuantity", ctx, domain.AssetClassOther, "", decimal.NewFromInt(1000)).Return(nil)

	f.watchlist.On("Add", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	f.history.On("Upsert", ctx, mock.Anything).Return(nil)

	err := s.Seed(ctx)

	assert.NoError(t, err)
	f.holdings.AssertExpectations(t)
	f.watchlist.AssertNumberOfCalls(t, "Add", 10)
	f.history.AssertExpectations(t)
}

func TestSeed_ExistingDataLeftUntouched(t *testing.T) {
	ctx := context.Background()
	s, f := newSeederFixture(false)

	f.holdings.On("List", ctx).Return([]*domain.Holding{
		{ID: uuid.New(), AssetClass: domain.AssetClassCash, Quantity: decimal.NewFromInt(777)},
	}, nil)
	f.watchlist.On("List", ctx).Return([]string{"TSLA"}, nil)

	err := s.Seed(ctx)

	assert.NoError(t, err)
	f.holdings.AssertNotCalled(t, "UpsertQuantity")
	f.watchlist.AssertNotCalled(t, "Add")
	// No fresh seed means no snapshot rewrite either
	f.history.AssertNotCalled(t, "Upsert")
}

func TestSeed_PreloadTolerantOfFetchFailures(t *testing.T) {
	ctx := context.Background()
	s, f := newSeederFixture(true)

	f.holdings.On("List", ctx).Return([]*domain.Holding{
		{ID: uuid.New(), AssetClass: domain.AssetClassStock, Symbol: "AAPL", Quantity: decimal.NewFromInt(10)},
	}, nil)
	f.watchlist.On("List", ctx).Return([]string{"AAPL", "MSFT"}, nil)

	// AAPL resolves, MSFT fails both live and cached: seeding still succeeds
	f.quotes.On("FetchPrice", ctx, "AAPL").Return(&domain.Quote{Price: decimal.NewFromInt(150)}, nil)
	f.prices.On("Upsert", ctx, mock.Anything).Return(nil)
	f.quotes.On("FetchPrice", ctx, "MSFT").Return(nil, domain.ErrUpstreamUnavailable)
	f.prices.On("GetBySymbol", ctx, "MSFT").Return(nil, domain.ErrNotFound)

	err := s.Seed(ctx)

	assert.NoError(t, err)
	// AAPL appears in both holdings and watchlist but is fetched once
	f.quotes.AssertNumberOfCalls(t, "FetchPrice", 2)
}
