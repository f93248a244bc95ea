package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cryptodash/internal/chart"
	"cryptodash/internal/dashboard"
	"cryptodash/internal/export"
	"cryptodash/internal/portfolio"
	"cryptodash/internal/provider"
	"cryptodash/internal/types"
)

// Dashboard is the slice of the store the HTTP layer needs.
type Dashboard interface {
	View() dashboard.ViewState
	Rankings() (gainers, losers []types.Asset)
	Portfolio() portfolio.Valuation
	Alerts() []types.Alert
	Watchlist() []string
	Notifications() []string

	SetSearch(text string)
	SetFilters(f types.FilterCriteria)
	SetSort(spec types.SortSpec) error
	SetWatchlistOnly(enabled bool)
	ToggleWatchlist(coinID string)
	SetCurrency(c types.Currency) error
	SetPage(page int) error
	SetPerPage(perPage int) error
	AddAlert(coinID string, condition types.AlertCondition, price float64) (types.Alert, error)
	RemoveAlert(id int64)
	AddHolding(coinID string, quantity, purchasePrice float64) error
	RemoveHolding(coinID string)
	Retry()
	ExportCSV(w io.Writer) error

	Details(ctx context.Context, coinID string) (*types.AssetDetails, error)
	ChartData(ctx context.Context, coinID string, days int) ([]types.PricePoint, error)
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.View())
}

func (s *Server) handleRankings(w http.ResponseWriter, _ *http.Request) {
	gainers, losers := s.store.Rankings()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gainers": gainers,
		"losers":  losers,
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Portfolio())
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CoinID        string  `json:"coin_id"`
		Quantity      float64 `json:"quantity"`
		PurchasePrice float64 `json:"purchase_price"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.store.AddHolding(payload.CoinID, payload.Quantity, payload.PurchasePrice); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.store.Portfolio())
}

func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveHolding(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Alerts())
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CoinID    string  `json:"coin_id"`
		Condition string  `json:"condition"`
		Price     float64 `json:"price"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	al, err := s.store.AddAlert(payload.CoinID, types.AlertCondition(payload.Condition), payload.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, al)
}

func (s *Server) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid alert id", http.StatusBadRequest)
		return
	}
	s.store.RemoveAlert(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatchlist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Watchlist())
}

func (s *Server) handleToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleWatchlist(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, s.store.Watchlist())
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Notifications())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Search string `json:"search"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	s.store.SetSearch(payload.Search)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	var payload types.FilterCriteria
	if !decodeBody(w, r, &payload) {
		return
	}
	s.store.SetFilters(payload)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var payload types.SortSpec
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.store.SetSort(payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatchlistOnly(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	s.store.SetWatchlistOnly(payload.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Currency string `json:"currency"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.store.SetCurrency(types.Currency(payload.Currency)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Page    *int `json:"page,omitempty"`
		PerPage *int `json:"per_page,omitempty"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Page != nil {
		if err := s.store.SetPage(*payload.Page); err != nil {
			writeError(w, err)
			return
		}
	}
	if payload.PerPage != nil {
		if err := s.store.SetPerPage(*payload.PerPage); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetry(w http.ResponseWriter, _ *http.Request) {
	s.store.Retry()
	writeJSON(w, http.StatusOK, s.store.View())
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	if err := s.store.ExportCSV(w); err != nil {
		log.Errorf("csv export failed: %v", err)
	}
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.store.Details(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	coinID := mux.Vars(r)["id"]

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	points, err := s.store.ChartData(r.Context(), coinID, days)
	if err != nil {
		writeError(w, err)
		return
	}

	name, symbol := coinID, coinID
	for _, a := range s.store.View().Assets {
		if a.ID == coinID {
			name, symbol = a.Name, a.Symbol
			break
		}
	}

	png, err := chart.Render(name, symbol, days, points)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var fetchErr *provider.FetchError
	switch {
	case errors.Is(err, dashboard.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownAsset):
		status = http.StatusNotFound
	case errors.As(err, &fetchErr):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
