package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the dashboard store to the browser UI: read endpoints for
// every derived view and mutation endpoints mapping 1:1 onto the store's
// named operations.
type Server struct {
	store  Dashboard
	router *mux.Router
}

func NewServer(store Dashboard) *Server {
	s := &Server{store: store}

	r := mux.NewRouter()

	r.HandleFunc("/api/view", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/api/rankings", s.handleRankings).Methods(http.MethodGet)
	r.HandleFunc("/api/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	r.HandleFunc("/api/portfolio", s.handleAddHolding).Methods(http.MethodPost)
	r.HandleFunc("/api/portfolio/{id}", s.handleRemoveHolding).Methods(http.MethodDelete)
	r.HandleFunc("/api/alerts", s.handleAlerts).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts", s.handleAddAlert).Methods(http.MethodPost)
	r.HandleFunc("/api/alerts/{id}", s.handleRemoveAlert).Methods(http.MethodDelete)
	r.HandleFunc("/api/watchlist", s.handleWatchlist).Methods(http.MethodGet)
	r.HandleFunc("/api/watchlist/{id}", s.handleToggleWatchlist).Methods(http.MethodPost)
	r.HandleFunc("/api/notifications", s.handleNotifications).Methods(http.MethodGet)
	r.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodPut)
	r.HandleFunc("/api/filters", s.handleFilters).Methods(http.MethodPut)
	r.HandleFunc("/api/sort", s.handleSort).Methods(http.MethodPut)
	r.HandleFunc("/api/watchlist-only", s.handleWatchlistOnly).Methods(http.MethodPut)
	r.HandleFunc("/api/currency", s.handleCurrency).Methods(http.MethodPut)
	r.HandleFunc("/api/page", s.handlePage).Methods(http.MethodPut)
	r.HandleFunc("/api/retry", s.handleRetry).Methods(http.MethodPost)
	r.HandleFunc("/api/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/api/coins/{id}", s.handleDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/coins/{id}/chart", s.handleChart).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
