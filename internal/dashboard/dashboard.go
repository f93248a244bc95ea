package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"cryptodash/internal/alert"
	"cryptodash/internal/database"
	"cryptodash/internal/portfolio"
	"cryptodash/internal/provider"
	"cryptodash/internal/sched"
	"cryptodash/internal/types"
	"cryptodash/internal/view"
	"cryptodash/lib/format"
)

// Validation failures reject the mutation; nothing is committed.
var (
	ErrValidation   = errors.New("invalid input")
	ErrUnknownAsset = errors.New("unknown asset")
)

const (
	topMoversCount   = 5
	maxNotifications = 50
)

// Persistence is the durable key/value store the user-editable collections
// are mirrored to. Satisfied by *database.Store.
type Persistence interface {
	Get(key string, out interface{})
	Set(key string, v interface{}) error
}

// Options configures a Store.
type Options struct {
	Source         provider.Source
	Persist        Persistence
	Metrics        *Metrics
	PollInterval   time.Duration
	SearchDebounce time.Duration
	PerPage        int
}

// Store owns the canonical market snapshot and every user-editable
// collection, and recomputes all derived views. The only snapshot mutator is
// the poll path; every derived view is a pure function over the committed
// snapshot, so a single mutex around commit and reads is all the locking
// needed.
type Store struct {
	src     provider.Source
	persist Persistence
	metrics *Metrics

	pollInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex

	// snapshot state
	coins   []types.Asset
	loading bool
	lastErr string

	// poll parameters; generation is bumped whenever they change so a stale
	// in-flight response can be recognized and discarded
	page       int
	perPage    int
	currency   types.Currency
	generation uint64
	cancelPoll sched.CancelFunc

	// view inputs
	search        string
	filters       types.FilterCriteria
	sort          types.SortSpec
	watchlistOnly bool

	// user-editable collections, mirrored to persistence on every mutation
	watchlist []string
	holdings  []types.Holding
	alerts    []types.Alert

	lastAlertID int64

	// derived views, recomputed by the mutation that changed their inputs
	filtered      []types.Asset
	gainers       []types.Asset
	losers        []types.Asset
	valuation     portfolio.Valuation
	notifications []string

	debouncedSearch func(string)
}

// New builds a Store, restoring the persisted collections. Poll timers do
// not run until Start is called.
func New(opts Options) *Store {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 300 * time.Millisecond
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 20
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		src:          opts.Source,
		persist:      opts.Persist,
		metrics:      opts.Metrics,
		pollInterval: opts.PollInterval,
		ctx:          ctx,
		cancel:       cancel,
		loading:      true,
		page:         1,
		perPage:      opts.PerPage,
		currency:     types.CurrencyUSD,
		sort:         types.DefaultSort(),
		watchlist:    []string{},
		holdings:     []types.Holding{},
		alerts:       []types.Alert{},
	}

	if s.persist != nil {
		s.persist.Get(database.KeyCurrency, &s.currency)
		s.persist.Get(database.KeyWatchlist, &s.watchlist)
		s.persist.Get(database.KeyPortfolio, &s.holdings)
		s.persist.Get(database.KeyAlerts, &s.alerts)
		if !s.currency.Valid() {
			s.currency = types.CurrencyUSD
		}
		for _, a := range s.alerts {
			if a.ID > s.lastAlertID {
				s.lastAlertID = a.ID
			}
		}
	}

	s.debouncedSearch = sched.Debounce(opts.SearchDebounce, s.applySearch)
	s.metrics.WatchlistSize.Set(float64(len(s.watchlist)))

	return s
}

// Start fires the initial fetch and begins the poll cadence.
func (s *Store) Start() {
	s.mu.Lock()
	s.restartPollingLocked()
	s.mu.Unlock()
}

// Stop cancels the poll timer and any in-flight fetch.
func (s *Store) Stop() {
	s.mu.Lock()
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
	s.mu.Unlock()
	s.cancel()
}

// ViewState is everything a consumer needs to render the main table,
// including the inputs that produced it. Loading and an empty Assets slice
// are distinct: before the first successful poll Loading is true.
type ViewState struct {
	Assets        []types.Asset        `json:"assets"`
	Loading       bool                 `json:"loading"`
	Error         string               `json:"error,omitempty"`
	Search        string               `json:"search"`
	Filters       types.FilterCriteria `json:"filters"`
	Sort          types.SortSpec       `json:"sort"`
	WatchlistOnly bool                 `json:"watchlist_only"`
	Page          int                  `json:"page"`
	PerPage       int                  `json:"per_page"`
	Currency      types.Currency       `json:"currency"`
}

func (s *Store) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ViewState{
		Assets:        append([]types.Asset(nil), s.filtered...),
		Loading:       s.loading,
		Error:         s.lastErr,
		Search:        s.search,
		Filters:       s.filters,
		Sort:          s.sort,
		WatchlistOnly: s.watchlistOnly,
		Page:          s.page,
		PerPage:       s.perPage,
		Currency:      s.currency,
	}
}

func (s *Store) Rankings() (gainers, losers []types.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Asset(nil), s.gainers...), append([]types.Asset(nil), s.losers...)
}

func (s *Store) Portfolio() portfolio.Valuation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valuation
}

func (s *Store) Alerts() []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Alert(nil), s.alerts...)
}

func (s *Store) Watchlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.watchlist...)
}

// Notifications returns the retained alert notification lines, newest first.
func (s *Store) Notifications() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notifications...)
}

// Details fetches the extended metadata of one coin straight from the
// provider; it is not part of the polled snapshot.
func (s *Store) Details(ctx context.Context, coinID string) (*types.AssetDetails, error) {
	return s.src.Details(ctx, coinID)
}

// ChartData fetches the price history of one coin in the current currency.
func (s *Store) ChartData(ctx context.Context, coinID string, days int) ([]types.PricePoint, error) {
	s.mu.Lock()
	currency := s.currency
	s.mu.Unlock()
	return s.src.Chart(ctx, coinID, days, currency)
}

// recomputeViewLocked rebuilds the filtered view from the snapshot plus the
// current view inputs. Callers hold s.mu.
func (s *Store) recomputeViewLocked() {
	watch := make(map[string]bool, len(s.watchlist))
	for _, id := range s.watchlist {
		watch[id] = true
	}
	s.filtered = view.Apply(s.coins, view.Query{
		Search:        s.search,
		WatchlistOnly: s.watchlistOnly,
		Watchlist:     watch,
		Filters:       s.filters,
		Sort:          s.sort,
	})
}

func (s *Store) recomputeRankingsLocked() {
	s.gainers, s.losers = view.TopMovers(s.coins, topMoversCount)
}

func (s *Store) recomputeValuationLocked() {
	s.valuation = portfolio.Valuate(s.holdings, s.coins)
}

// evaluateAlertsLocked recomputes every alert's triggered flag against the
// snapshot, records a notification line per newly-fired alert, and mirrors
// the updated flags to persistence.
func (s *Store) evaluateAlertsLocked() {
	if len(s.alerts) == 0 {
		return
	}

	updated, fired := alert.Evaluate(s.alerts, s.coins)
	s.alerts = updated

	if len(fired) > 0 {
		assetsByID := make(map[string]types.Asset, len(s.coins))
		for _, a := range s.coins {
			assetsByID[a.ID] = a
		}
		for _, al := range fired {
			s.metrics.AlertsTriggered.Inc()
			if a, ok := assetsByID[al.CoinID]; ok {
				s.pushNotificationLocked(format.AlertText(a, al, s.currency))
			}
		}
	}

	s.persistLocked(database.KeyAlerts, s.alerts)
}

func (s *Store) pushNotificationLocked(text string) {
	s.notifications = append([]string{text}, s.notifications...)
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[:maxNotifications]
	}
}
