package httpapi

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/finsight/finsight-backend/internal/config"
	"github.com/finsight/finsight-backend/internal/domain"
	"github.com/finsight/finsight-backend/internal/usecase/marketdata"
)

func newTestServer() *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"*"},
		},
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// The list service validates the type before touching its repo, so a
	// bare instance is enough for routing tests
	lists := marketdata.NewMarketListService(nil, nil, 0, logger)

	return NewServer(cfg, logger, nil, nil, nil, lists)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"missing symbol", domain.ErrMissingSymbol, http.StatusBadRequest},
		{"unknown asset class", domain.ErrUnknownAssetClass, http.StatusBadRequest},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"upstream unavailable", domain.ErrUpstreamUnavailable, http.StatusBadGateway},
		{"wrapped sentinel", errors.Join(errors.New("ctx"), domain.ErrInsufficientBalance), http.StatusBadRequest},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteError_MasksInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	writeError(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleUpdateAsset_InvalidBody(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/api/assets/cash", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetMarketList_UnknownList(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/market/trending", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAddFeaturedStock_MissingSymbol(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/featured-stocks/add", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
