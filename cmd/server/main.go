package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-backend/internal/adapter/httpapi"
	"github.com/finsight/finsight-backend/internal/adapter/provider/yahoo"
	"github.com/finsight/finsight-backend/internal/adapter/repository/postgres"
	"github.com/finsight/finsight-backend/internal/config"
	"github.com/finsight/finsight-backend/internal/usecase/marketdata"
	"github.com/finsight/finsight-backend/internal/usecase/seeder"
	"github.com/finsight/finsight-backend/internal/usecase/valuation"
)

func main() {
	ctx := context.Background()

	// 1. Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Logging)

	// 2. Setup database
	db, err := postgres.NewDB(cfg.Database.ConnString())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Bootstrap(ctx); err != nil {
		logger.Fatalf("Failed to bootstrap database schema: %v", err)
	}

	// 3. Initialize repositories
	holdingRepo := postgres.NewHoldingRepository(db)
	priceRepo := postgres.NewPriceSnapshotRepository(db)
	recommendationRepo := postgres.NewRecommendationRepository(db)
	marketListRepo := postgres.NewMarketListRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	summaryRepo := postgres.NewPortfolioSummaryRepository(db)
	watchlistRepo := postgres.NewWatchlistRepository(db)

	// 4. Initialize provider and services
	provider := yahoo.NewClient(
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
		cfg.Provider.APIHost,
		cfg.Provider.Timeout,
		logger,
	)

	engine := valuation.NewEngine(
		holdingRepo,
		priceRepo,
		historyRepo,
		summaryRepo,
		decimal.NewFromFloat(cfg.Portfolio.FallbackBaseline),
		logger,
	)
	priceService := marketdata.NewPriceService(priceRepo, provider, logger)
	recommendationService := marketdata.NewRecommendationService(
		recommendationRepo, watchlistRepo, provider, cfg.Portfolio.RecommendationTTL, logger)
	marketListService := marketdata.NewMarketListService(
		marketListRepo, provider, cfg.Portfolio.MarketListTTL, logger)

	// 5. Seed starting state
	dataSeeder := seeder.NewSeeder(
		holdingRepo, watchlistRepo, engine, priceService, cfg.Portfolio.PreloadPrices, logger)
	if err := dataSeeder.Seed(ctx); err != nil {
		logger.Fatalf("Failed to seed initial data: %v", err)
	}

	// 6. Start HTTP server
	server := httpapi.NewServer(cfg, logger, engine, priceService, recommendationService, marketListService)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	waitForShutdown(server, cfg, logger)
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, cfg *config.Config, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Infof("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	logger.Info("HTTP server stopped")
}
