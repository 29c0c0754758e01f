package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-backend/internal/config"
	"github.com/finsight/finsight-backend/internal/usecase/marketdata"
	"github.com/finsight/finsight-backend/internal/usecase/valuation"
)

// Server represents the HTTP API server
type Server struct {
	cfg        *config.Config
	logger     *logrus.Logger
	router     *mux.Router
	httpServer *http.Server

	engine          *valuation.Engine
	prices          *marketdata.PriceService
	recommendations *marketdata.RecommendationService
	marketLists     *marketdata.MarketListService
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	logger *logrus.Logger,
	engine *valuation.Engine,
	prices *marketdata.PriceService,
	recommendations *marketdata.RecommendationService,
	marketLists *marketdata.MarketListService,
) *Server {
	s := &Server{
		cfg:             cfg,
		logger:          logger,
		engine:          engine,
		prices:          prices,
		recommendations: recommendations,
		marketLists:     marketLists,
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(authMiddleware(s.cfg.Server.APIToken))

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Portfolio
	api.HandleFunc("/portfolio", s.handleGetPortfolio).Methods("GET")
	api.HandleFunc("/assets", s.handleGetAssets).Methods("GET")
	api.HandleFunc("/assets/{type}", s.handleUpdateAsset).Methods("PUT")
	api.HandleFunc("/performance/{range}", s.handleGetPerformance).Methods("GET")
	api.HandleFunc("/assets/{type}/performance/{range}", s.handleGetAssetPerformance).Methods("GET")

	// Featured stocks (price cache)
	api.HandleFunc("/featured-stocks", s.handleGetFeaturedStocks).Methods("GET")
	api.HandleFunc("/featured-stocks/add", s.handleAddFeaturedStock).Methods("POST")
	api.HandleFunc("/featured-stocks/remove", s.handleRemoveFeaturedStock).Methods("POST")

	// Analyst recommendations
	api.HandleFunc("/recommendation-trend", s.handleGetRecommendations).Methods("GET")
	api.HandleFunc("/recommendation-trend/add", s.handleTrackRecommendation).Methods("POST")

	// Market screener lists
	api.HandleFunc("/market/{list}", s.handleGetMarketList).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.GetServerAddr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	s.logger.WithField("address", s.httpServer.Addr).Info("Starting HTTP server")

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Middleware functions

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		entry := s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": time.Since(start),
			"remote":   r.RemoteAddr,
		})
		if wrapped.statusCode >= http.StatusInternalServerError {
			entry.Error("HTTP request")
		} else {
			entry.Info("HTTP request")
		}
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.WithFields(logrus.Fields{
					"error": err,
					"path":  r.URL.Path,
				}).Error("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(s.cfg.Server.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(next)
}

// responseWriter captures the status code written by a handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
