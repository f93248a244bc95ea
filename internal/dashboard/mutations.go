package dashboard

import (
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cryptodash/internal/database"
	"cryptodash/internal/export"
	"cryptodash/internal/portfolio"
	"cryptodash/internal/types"
)

// SetSearch coalesces rapid keystrokes: the view recomputes once after a
// quiet period instead of on every call.
func (s *Store) SetSearch(text string) {
	s.debouncedSearch(text)
}

func (s *Store) applySearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = text
	s.recomputeViewLocked()
}

func (s *Store) SetFilters(f types.FilterCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	s.recomputeViewLocked()
}

func (s *Store) SetSort(spec types.SortSpec) error {
	if !spec.Key.Valid() || !spec.Order.Valid() {
		return errors.Wrapf(ErrValidation, "unknown sort %s/%s", spec.Key, spec.Order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = spec
	s.recomputeViewLocked()
	return nil
}

func (s *Store) SetWatchlistOnly(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchlistOnly = enabled
	s.recomputeViewLocked()
}

// ToggleWatchlist adds the coin if absent, removes it if present.
func (s *Store) ToggleWatchlist(coinID string) {
	if coinID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	next := make([]string, 0, len(s.watchlist)+1)
	for _, id := range s.watchlist {
		if id == coinID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, coinID)
	}
	s.watchlist = next

	s.metrics.WatchlistSize.Set(float64(len(s.watchlist)))
	s.persistLocked(database.KeyWatchlist, s.watchlist)
	s.recomputeViewLocked()
}

// SetCurrency switches the quote currency. The standing snapshot is priced
// in the old denomination, so it is invalidated and refetched immediately.
func (s *Store) SetCurrency(c types.Currency) error {
	if !c.Valid() {
		return errors.Wrapf(ErrValidation, "unsupported currency %q", c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if c == s.currency {
		return nil
	}
	s.currency = c
	s.coins = nil
	s.loading = true
	s.generation++
	s.persistLocked(database.KeyCurrency, s.currency)
	s.restartPollingLocked()
	return nil
}

func (s *Store) SetPage(page int) error {
	if page < 1 {
		return errors.Wrap(ErrValidation, "page must be at least 1")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if page == s.page {
		return nil
	}
	s.page = page
	s.generation++
	s.restartPollingLocked()
	return nil
}

func (s *Store) SetPerPage(perPage int) error {
	if perPage < 1 {
		return errors.Wrap(ErrValidation, "per-page must be at least 1")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if perPage == s.perPage {
		return nil
	}
	s.perPage = perPage
	s.generation++
	s.restartPollingLocked()
	return nil
}

// AddAlert registers a standing price alert. Triggered starts false
// regardless of the current price; the next snapshot evaluation decides.
func (s *Store) AddAlert(coinID string, condition types.AlertCondition, price float64) (types.Alert, error) {
	if coinID == "" {
		return types.Alert{}, errors.Wrap(ErrValidation, "no coin selected")
	}
	if !condition.Valid() {
		return types.Alert{}, errors.Wrapf(ErrValidation, "unknown condition %q", condition)
	}
	if price <= 0 {
		return types.Alert{}, errors.Wrap(ErrValidation, "target price must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastAlertID {
		id = s.lastAlertID + 1
	}
	s.lastAlertID = id

	al := types.Alert{ID: id, CoinID: coinID, Condition: condition, Price: price}
	s.alerts = append(s.alerts, al)
	s.persistLocked(database.KeyAlerts, s.alerts)

	log.Debugf("alert %d created: %s %s %f", al.ID, coinID, condition, price)
	return al, nil
}

// RemoveAlert deletes the alert outright; there is no soft-delete.
func (s *Store) RemoveAlert(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.Alert, 0, len(s.alerts))
	for _, al := range s.alerts {
		if al.ID != id {
			next = append(next, al)
		}
	}
	s.alerts = next
	s.persistLocked(database.KeyAlerts, s.alerts)
}

// AddHolding records a purchase. The coin must be in the current snapshot so
// its display metadata can be captured at first add; a repeat purchase of a
// held coin merges at the weighted-average price.
func (s *Store) AddHolding(coinID string, quantity, purchasePrice float64) error {
	if coinID == "" {
		return errors.Wrap(ErrValidation, "no coin selected")
	}
	if quantity <= 0 {
		return errors.Wrap(ErrValidation, "quantity must be positive")
	}
	if purchasePrice <= 0 {
		return errors.Wrap(ErrValidation, "purchase price must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var coin *types.Asset
	for i := range s.coins {
		if s.coins[i].ID == coinID {
			coin = &s.coins[i]
			break
		}
	}
	if coin == nil {
		return errors.Wrapf(ErrUnknownAsset, "coin %q is not in the current snapshot", coinID)
	}

	s.holdings = portfolio.Merge(s.holdings, types.Holding{
		ID:       coin.ID,
		Name:     coin.Name,
		Symbol:   coin.Symbol,
		Image:    coin.Image,
		Quantity: quantity,
		AvgPrice: purchasePrice,
	})
	s.persistLocked(database.KeyPortfolio, s.holdings)
	s.recomputeValuationLocked()
	return nil
}

func (s *Store) RemoveHolding(coinID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holdings = portfolio.Remove(s.holdings, coinID)
	s.persistLocked(database.KeyPortfolio, s.holdings)
	s.recomputeValuationLocked()
}

// ExportCSV writes the current filtered view, in displayed order, to w.
func (s *Store) ExportCSV(w io.Writer) error {
	s.mu.Lock()
	assets := append([]types.Asset(nil), s.filtered...)
	s.mu.Unlock()

	if err := export.WriteCSV(w, assets); err != nil {
		return err
	}
	s.metrics.ExportsTotal.Inc()
	return nil
}

func (s *Store) persistLocked(key string, v interface{}) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Set(key, v); err != nil {
		log.Errorf("failed to persist %s: %v", key, err)
	}
}
