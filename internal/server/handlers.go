package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/model"
	"github.com/guarzo/solewatch/internal/watcher"
)

// searchResponse is the JSON shape of GET /api/search.
type searchResponse struct {
	Query         string            `json:"query,omitempty"`
	StyleCode     string            `json:"style_code,omitempty"`
	Size          float64           `json:"size,omitempty"`
	Listings      []model.Listing   `json:"listings"`
	Opportunities []opportunityView `json:"opportunities"`
	Errors        []string          `json:"errors,omitempty"`
	ScannedAt     time.Time         `json:"scanned_at"`
}

// opportunityView flattens an opportunity for JSON consumers, adding the
// fee-adjusted net profit that model.Opportunity computes on demand.
type opportunityView struct {
	StyleCode      string        `json:"style_code"`
	Size           float64       `json:"size"`
	Buy            model.Listing `json:"buy"`
	Sell           model.Listing `json:"sell"`
	GrossSpread    float64       `json:"gross_spread"`
	GrossSpreadPct float64       `json:"gross_spread_pct"`
	SellFeePct     float64       `json:"sell_fee_pct"`
	EstNetProfit   float64       `json:"est_net_profit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus reports which marketplaces are configured.
// GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type adapterStatus struct {
		Marketplace string  `json:"marketplace"`
		Available   bool    `json:"available"`
		SellFeePct  float64 `json:"sell_fee_pct"`
	}

	adapters := s.watcher.Adapters()
	statuses := make([]adapterStatus, 0, len(adapters))
	available := 0
	for _, a := range adapters {
		if a.Available() {
			available++
		}
		statuses = append(statuses, adapterStatus{
			Marketplace: a.Name(),
			Available:   a.Available(),
			SellFeePct:  s.fees.SellerFee(a.Name()),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"adapters":  statuses,
		"available": available,
	})
}

// handleSearch runs a scan and returns listings plus ranked opportunities.
// GET /api/search?query=jordan+1&size=10&min_spread=10&min_profit=0
// GET /api/search?style_code=DZ5485-612&size=10
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := watcher.ScanOptions{
		Query:          q.Get("query"),
		StyleCode:      q.Get("style_code"),
		MinGrossSpread: arbitrage.DefaultOptions().MinGrossSpread,
		SellerFees:     s.fees,
	}
	if opts.Query == "" && opts.StyleCode == "" {
		writeError(w, http.StatusBadRequest, "query or style_code is required")
		return
	}

	var err error
	if opts.Size, err = parseFloat(q, "size"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid size")
		return
	}
	if v := q.Get("min_spread"); v != "" {
		if opts.MinGrossSpread, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_spread")
			return
		}
	}
	if opts.MinNetProfit, err = parseFloat(q, "min_profit"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid min_profit")
		return
	}

	result, err := s.watcher.Scan(r.Context(), opts)
	if err != nil {
		if errors.Is(err, watcher.ErrNoAdapters) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.logger.Error("scan failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	resp := searchResponse{
		Query:         opts.Query,
		StyleCode:     opts.StyleCode,
		Size:          opts.Size,
		Listings:      result.Listings,
		Opportunities: make([]opportunityView, 0, len(result.Opportunities)),
		ScannedAt:     time.Now().UTC(),
	}
	if resp.Listings == nil {
		resp.Listings = []model.Listing{}
	}
	for _, o := range result.Opportunities {
		fee := s.fees.SellerFee(o.SellMarketplace())
		resp.Opportunities = append(resp.Opportunities, opportunityView{
			StyleCode:      o.StyleCode,
			Size:           o.Size,
			Buy:            o.Buy,
			Sell:           o.Sell,
			GrossSpread:    o.GrossSpread(),
			GrossSpreadPct: o.GrossSpreadPct(),
			SellFeePct:     fee,
			EstNetProfit:   o.NetProfit(fee, 0),
		})
	}
	for _, ae := range result.Errors {
		resp.Errors = append(resp.Errors, ae.Error())
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseFloat(q map[string][]string, key string) (float64, error) {
	vals := q[key]
	if len(vals) == 0 || vals[0] == "" {
		return 0, nil
	}
	return strconv.ParseFloat(vals[0], 64)
}

// writeJSON marshals v and writes it with the given status code. A marshal
// failure falls back to a plain 500 body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
