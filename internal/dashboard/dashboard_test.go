package dashboard

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodash/internal/database"
	"cryptodash/internal/provider"
	"cryptodash/internal/types"
)

type fakeSource struct {
	mu     sync.Mutex
	assets []types.Asset
	err    error
	calls  int
}

func (f *fakeSource) Markets(_ context.Context, _, _ int, _ types.Currency) ([]types.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]types.Asset(nil), f.assets...), nil
}

func (f *fakeSource) Chart(context.Context, string, int, types.Currency) ([]types.PricePoint, error) {
	return nil, nil
}

func (f *fakeSource) Details(context.Context, string) (*types.AssetDetails, error) {
	return nil, nil
}

func (f *fakeSource) set(assets []types.Asset, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets, f.err = assets, err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePersist struct {
	mu   sync.Mutex
	data map[string]interface{}
}

func newFakePersist() *fakePersist {
	return &fakePersist{data: map[string]interface{}{}}
}

func (p *fakePersist) Get(string, interface{}) {}

func (p *fakePersist) Set(key string, v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = v
	return nil
}

func (p *fakePersist) has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.data[key]
	return ok
}

func marketSnapshot() []types.Asset {
	return []types.Asset{
		{ID: "btc", Name: "Bitcoin", Symbol: "btc", Price: 50000, Change24h: 5, MarketCap: 9e11, Volume: 3e10},
		{ID: "eth", Name: "Ethereum", Symbol: "eth", Price: 3000, Change24h: -2, MarketCap: 3e11, Volume: 2e10},
	}
}

func newTestStore(t *testing.T, src *fakeSource) *Store {
	t.Helper()
	s := New(Options{
		Source:         src,
		Persist:        newFakePersist(),
		PollInterval:   time.Hour, // tests drive polls by hand
		SearchDebounce: 5 * time.Millisecond,
	})
	t.Cleanup(s.Stop)
	return s
}

func (s *Store) pollOnce() {
	s.mu.Lock()
	gen, page, perPage, currency := s.generation, s.page, s.perPage, s.currency
	s.mu.Unlock()
	s.poll(gen, page, perPage, currency)
}

func TestInitialStateIsLoading(t *testing.T) {
	s := newTestStore(t, &fakeSource{})

	v := s.View()
	assert.True(t, v.Loading)
	assert.Empty(t, v.Assets)
	assert.Equal(t, types.CurrencyUSD, v.Currency)
	assert.Equal(t, types.DefaultSort(), v.Sort)
}

func TestPollCommitsSnapshotAndDerivedViews(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)

	s.pollOnce()

	v := s.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.Error)
	assert.Equal(t, []string{"btc", "eth"}, assetIDs(v.Assets))

	gainers, losers := s.Rankings()
	assert.Equal(t, "btc", gainers[0].ID)
	assert.Equal(t, "eth", losers[0].ID)
}

func TestPollFailureKeepsLastGoodSnapshot(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()

	src.set(nil, &provider.FetchError{Op: "markets", StatusCode: 500})
	s.pollOnce()

	v := s.View()
	assert.Equal(t, []string{"btc", "eth"}, assetIDs(v.Assets))
	assert.Contains(t, v.Error, "Failed to fetch market data")

	// recovery clears the error
	src.set(marketSnapshot(), nil)
	s.pollOnce()
	assert.Empty(t, s.View().Error)
}

func TestRetrySharesPollPath(t *testing.T) {
	src := &fakeSource{err: &provider.FetchError{Op: "markets", StatusCode: 503}}
	s := newTestStore(t, src)
	s.pollOnce()
	require.NotEmpty(t, s.View().Error)

	src.set(marketSnapshot(), nil)
	s.Retry()

	v := s.View()
	assert.Empty(t, v.Error)
	assert.Len(t, v.Assets, 2)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()

	// a response fetched for an older generation must not overwrite state
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	src.set([]types.Asset{{ID: "stale"}}, nil)
	s.poll(0, 1, 20, types.CurrencyUSD)

	assert.Equal(t, []string{"btc", "eth"}, assetIDs(s.View().Assets))
}

func TestSetCurrencyInvalidatesSnapshotAndRepolls(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()
	before := src.callCount()

	require.NoError(t, s.SetCurrency(types.CurrencyEUR))

	assert.Eventually(t, func() bool {
		v := s.View()
		return !v.Loading && len(v.Assets) == 2 && v.Currency == types.CurrencyEUR
	}, time.Second, time.Millisecond)
	assert.Greater(t, src.callCount(), before)
}

func TestSetCurrencyRejectsUnknown(t *testing.T) {
	s := newTestStore(t, &fakeSource{})

	err := s.SetCurrency(types.Currency("jpy"))
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, types.CurrencyUSD, s.View().Currency)
}

func TestSetPageTriggersImmediatePoll(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()
	before := src.callCount()

	require.NoError(t, s.SetPage(2))

	assert.Eventually(t, func() bool { return src.callCount() > before },
		time.Second, time.Millisecond)
	assert.Equal(t, 2, s.View().Page)

	require.ErrorIs(t, s.SetPage(0), ErrValidation)
}

func TestSearchIsDebounced(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()

	s.SetSearch("b")
	s.SetSearch("bi")
	s.SetSearch("bitcoin")

	assert.Eventually(t, func() bool {
		v := s.View()
		return v.Search == "bitcoin" && len(v.Assets) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, "btc", s.View().Assets[0].ID)
}

func TestWatchlistToggleIsIdempotent(t *testing.T) {
	s := newTestStore(t, &fakeSource{})

	s.ToggleWatchlist("btc")
	assert.Equal(t, []string{"btc"}, s.Watchlist())

	s.ToggleWatchlist("btc")
	assert.Empty(t, s.Watchlist())
}

func TestWatchlistOnlyFiltersView(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()

	s.ToggleWatchlist("eth")
	s.SetWatchlistOnly(true)

	assert.Equal(t, []string{"eth"}, assetIDs(s.View().Assets))

	s.SetWatchlistOnly(false)
	assert.Len(t, s.View().Assets, 2)
}

func TestFiltersRecomputeView(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()

	minPrice := 4000.0
	s.SetFilters(types.FilterCriteria{MinPrice: &minPrice})

	assert.Equal(t, []string{"btc"}, assetIDs(s.View().Assets))
}

func TestSortValidation(t *testing.T) {
	s := newTestStore(t, &fakeSource{})

	require.NoError(t, s.SetSort(types.SortSpec{Key: types.SortByPrice, Order: types.OrderAsc}))
	require.ErrorIs(t, s.SetSort(types.SortSpec{Key: "bogus", Order: types.OrderAsc}), ErrValidation)
}

func TestAlertLifecycle(t *testing.T) {
	src := &fakeSource{assets: []types.Asset{{ID: "btc", Name: "Bitcoin", Symbol: "btc", Price: 9}}}
	s := newTestStore(t, src)
	s.pollOnce()

	al, err := s.AddAlert("btc", types.AlertAbove, 10)
	require.NoError(t, err)
	assert.False(t, al.Triggered, "new alerts start untriggered regardless of price")

	src.set([]types.Asset{{ID: "btc", Name: "Bitcoin", Symbol: "btc", Price: 11}}, nil)
	s.pollOnce()
	assert.True(t, s.Alerts()[0].Triggered)
	require.Len(t, s.Notifications(), 1)
	assert.Contains(t, s.Notifications()[0], "Bitcoin")

	src.set([]types.Asset{{ID: "btc", Name: "Bitcoin", Symbol: "btc", Price: 9}}, nil)
	s.pollOnce()
	assert.False(t, s.Alerts()[0].Triggered, "triggered reflects the current snapshot")
	assert.Len(t, s.Notifications(), 1, "flipping back does not re-notify")

	s.RemoveAlert(al.ID)
	assert.Empty(t, s.Alerts())
}

func TestAlertIDsAreMonotonic(t *testing.T) {
	s := newTestStore(t, &fakeSource{})

	a, err := s.AddAlert("btc", types.AlertAbove, 1)
	require.NoError(t, err)
	b, err := s.AddAlert("btc", types.AlertBelow, 2)
	require.NoError(t, err)

	assert.Greater(t, b.ID, a.ID)
}

func TestAlertValidation(t *testing.T) {
	s := newTestStore(t, &fakeSource{})

	_, err := s.AddAlert("", types.AlertAbove, 10)
	require.ErrorIs(t, err, ErrValidation)

	_, err = s.AddAlert("btc", "sideways", 10)
	require.ErrorIs(t, err, ErrValidation)

	_, err = s.AddAlert("btc", types.AlertBelow, -1)
	require.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, s.Alerts())
}

func TestAddHoldingMergesAndValuates(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()

	require.NoError(t, s.AddHolding("btc", 1, 40000))
	require.NoError(t, s.AddHolding("btc", 1, 60000))

	v := s.Portfolio()
	require.Len(t, v.Positions, 1)
	assert.Equal(t, 2.0, v.Positions[0].Holding.Quantity)
	assert.Equal(t, 50000.0, v.Positions[0].Holding.AvgPrice)
	assert.Equal(t, 100000.0, v.TotalValue)

	s.RemoveHolding("btc")
	assert.Empty(t, s.Portfolio().Positions)
}

func TestAddHoldingValidation(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()

	require.ErrorIs(t, s.AddHolding("", 1, 1), ErrValidation)
	require.ErrorIs(t, s.AddHolding("btc", 0, 1), ErrValidation)
	require.ErrorIs(t, s.AddHolding("btc", 1, -5), ErrValidation)
	require.ErrorIs(t, s.AddHolding("nosuch", 1, 1), ErrUnknownAsset)

	assert.Empty(t, s.Portfolio().Positions)
}

func TestMutationsAreMirroredToPersistence(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	persist := newFakePersist()
	s := New(Options{
		Source:       src,
		Persist:      persist,
		PollInterval: time.Hour,
	})
	defer s.Stop()
	s.pollOnce()

	s.ToggleWatchlist("btc")
	require.NoError(t, s.AddHolding("btc", 1, 40000))
	_, err := s.AddAlert("btc", types.AlertBelow, 100)
	require.NoError(t, err)
	require.NoError(t, s.SetCurrency(types.CurrencyGBP))

	assert.True(t, persist.has(database.KeyWatchlist))
	assert.True(t, persist.has(database.KeyPortfolio))
	assert.True(t, persist.has(database.KeyAlerts))
	assert.True(t, persist.has(database.KeyCurrency))
}

func TestExportCSVUsesDisplayedOrder(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := newTestStore(t, src)
	s.pollOnce()
	require.NoError(t, s.SetSort(types.SortSpec{Key: types.SortByPrice, Order: types.OrderAsc}))

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Ethereum")
	assert.Contains(t, lines[2], "Bitcoin")
}

func TestScheduledPollingRuns(t *testing.T) {
	src := &fakeSource{assets: marketSnapshot()}
	s := New(Options{
		Source:       src,
		PollInterval: 5 * time.Millisecond,
	})
	defer s.Stop()

	s.Start()

	assert.Eventually(t, func() bool { return src.callCount() >= 2 },
		time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return len(s.View().Assets) == 2 },
		time.Second, time.Millisecond)
}

func assetIDs(assets []types.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}
	return out
}
