package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-backend/internal/domain"
	"github.com/finsight/finsight-backend/internal/usecase/valuation"
)

// summaryResponse is the JSON shape of the portfolio aggregate
type summaryResponse struct {
	TotalValue      decimal.Decimal `json:"totalValue"`
	GainLoss        decimal.Decimal `json:"gainLoss"`
	GainLossPercent decimal.Decimal `json:"gainLossPercent"`
}

// allocationResponse is the JSON shape of the per-class breakdown
type allocationResponse struct {
	Cash  decimal.Decimal `json:"cash"`
	Stock decimal.Decimal `json:"stock"`
	Bond  decimal.Decimal `json:"bond"`
	Other decimal.Decimal `json:"other"`
	Total decimal.Decimal `json:"total"`
}

// updateAssetRequest mutates one holding. A positive change adds value or
// shares, a negative change removes the absolute amount.
type updateAssetRequest struct {
	Change decimal.Decimal `json:"change"`
	Symbol string          `json:"symbol"`
}

// historyPointResponse is one day of a performance series
type historyPointResponse struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// priceResponse is one cached quote
type priceResponse struct {
	Symbol        string           `json:"symbol"`
	Price         decimal.Decimal  `json:"price"`
	ChangePercent *decimal.Decimal `json:"changePercent"`
	LastRefreshed time.Time        `json:"lastRefreshed"`
}

// symbolRequest carries a single ticker symbol
type symbolRequest struct {
	Symbol string `json:"symbol"`
}

// recommendationResponse is one symbol's analyst recommendation counts
type recommendationResponse struct {
	Symbol        string    `json:"symbol"`
	Period        string    `json:"period"`
	StrongBuy     int       `json:"strongBuy"`
	Buy           int       `json:"buy"`
	Hold          int       `json:"hold"`
	Sell          int       `json:"sell"`
	StrongSell    int       `json:"strongSell"`
	LastRefreshed time.Time `json:"lastRefreshed"`
}

// marketEntryResponse is one row of a screener list
type marketEntryResponse struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Change            decimal.Decimal `json:"change"`
	ChangePercent     decimal.Decimal `json:"changePercent"`
	Volume            int64           `json:"volume"`
	MarketCap         decimal.Decimal `json:"marketCap"`
	FiftyTwoWeekRange string          `json:"fiftyTwoWeekRange"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.GetTotalValue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalValue:      summary.Total,
		GainLoss:        summary.GainLoss,
		GainLossPercent: summary.GainLossPercent,
	})
}

func (s *Server) handleGetAssets(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.engine.GetAllocation(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocationResponse{
		Cash:  breakdown.Cash,
		Stock: breakdown.Stock,
		Bond:  breakdown.Bond,
		Other: breakdown.Other,
		Total: breakdown.Total().Round(2),
	})
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	class := domain.AssetClass(mux.Vars(r)["type"])

	var req updateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	direction := valuation.DirectionAdd
	delta := req.Change
	if req.Change.IsNegative() {
		direction = valuation.DirectionReduce
		delta = req.Change.Neg()
	}

	total, err := s.engine.ApplyHoldingChange(r.Context(), class, req.Symbol, delta, direction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"totalValue": total})
}

func (s *Server) handleGetPerformance(w http.ResponseWriter, r *http.Request) {
	rng, err := domain.ParseHistoryRange(mux.Vars(r)["range"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	history, err := s.engine.GetHistory(r.Context(), rng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(history))
}

func (s *Server) handleGetAssetPerformance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	rng, err := domain.ParseHistoryRange(vars["range"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	history, err := s.engine.GetClassHistory(r.Context(), domain.AssetClass(vars["type"]), rng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(history))
}

func toHistoryResponse(history []valuation.HistoryValue) []historyPointResponse {
	out := make([]historyPointResponse, 0, len(history))
	for _, hv := range history {
		out = append(out, historyPointResponse{
			Date:  hv.Date.Format("2006-01-02"),
			Value: hv.Value,
		})
	}
	return out
}

func (s *Server) handleGetFeaturedStocks(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.prices.ListPrices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]priceResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toPriceResponse(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddFeaturedStock(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "symbol is required"})
		return
	}

	snap, err := s.prices.TrackSymbol(r.Context(), req.Symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPriceResponse(snap))
}

func (s *Server) handleRemoveFeaturedStock(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "symbol is required"})
		return
	}

	if err := s.prices.RemoveSymbol(r.Context(), req.Symbol); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": req.Symbol})
}

func toPriceResponse(snap *domain.PriceSnapshot) priceResponse {
	return priceResponse{
		Symbol:        snap.Symbol,
		Price:         snap.Price,
		ChangePercent: snap.ChangePercent,
		LastRefreshed: snap.LastRefreshed,
	}
}

func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.recommendations.GetTrackedRecommendations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make(map[string]*recommendationResponse, len(recs))
	for symbol, rec := range recs {
		if rec == nil {
			// refresh failed and nothing was cached for this symbol
			out[symbol] = nil
			continue
		}
		out[symbol] = &recommendationResponse{
			Symbol:        rec.Symbol,
			Period:        rec.Period,
			StrongBuy:     rec.StrongBuy,
			Buy:           rec.Buy,
			Hold:          rec.Hold,
			Sell:          rec.Sell,
			StrongSell:    rec.StrongSell,
			LastRefreshed: rec.LastRefreshed,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTrackRecommendation(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "symbol is required"})
		return
	}

	rec, err := s.recommendations.TrackSymbol(r.Context(), req.Symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationResponse{
		Symbol:        rec.Symbol,
		Period:        rec.Period,
		StrongBuy:     rec.StrongBuy,
		Buy:           rec.Buy,
		Hold:          rec.Hold,
		Sell:          rec.Sell,
		StrongSell:    rec.StrongSell,
		LastRefreshed: rec.LastRefreshed,
	})
}

func (s *Server) handleGetMarketList(w http.ResponseWriter, r *http.Request) {
	listType := domain.MarketListType(mux.Vars(r)["list"])

	entries, err := s.marketLists.GetList(r.Context(), listType)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]marketEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, marketEntryResponse{
			Symbol:            e.Symbol,
			Name:              e.Name,
			Price:             e.Price,
			Change:            e.Change,
			ChangePercent:     e.ChangePercent,
			Volume:            e.Volume,
			MarketCap:         e.MarketCap,
			FiftyTwoWeekRange: e.FiftyTwoWeekRange,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
