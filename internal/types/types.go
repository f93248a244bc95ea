package types

// Asset is one market row as of the most recent successful poll. The whole
// snapshot is replaced atomically on every poll; individual assets are never
// patched in place.
type Asset struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Image     string  `json:"image"`
	Price     float64 `json:"current_price"`
	Change24h float64 `json:"price_change_percentage_24h"`
	// Change7d is null for coins the provider has no 7d window for.
	Change7d  *float64 `json:"price_change_percentage_7d_in_currency"`
	MarketCap float64  `json:"market_cap"`
	Volume    float64  `json:"total_volume"`
}

// Change7dOrZero treats a missing 7d change as 0 for filtering and sorting.
func (a Asset) Change7dOrZero() float64 {
	if a.Change7d == nil {
		return 0
	}
	return *a.Change7d
}

// Currency is the quote currency market data is denominated in.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyGBP Currency = "gbp"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

// FilterCriteria holds the optional numeric bounds of the advanced filter
// panel. A nil bound is unconstrained. Session-only, never persisted.
type FilterCriteria struct {
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	MinVolume   *float64 `json:"min_volume,omitempty"`
	MaxVolume   *float64 `json:"max_volume,omitempty"`
	MinChange7d *float64 `json:"min_change_7d,omitempty"`
	MaxChange7d *float64 `json:"max_change_7d,omitempty"`
}

type SortKey string

const (
	SortByPrice     SortKey = "price"
	SortByMarketCap SortKey = "market_cap"
	SortByVolume    SortKey = "volume"
	SortByChange24h SortKey = "change24h"
	SortByChange7d  SortKey = "change7d"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByPrice, SortByMarketCap, SortByVolume, SortByChange24h, SortByChange7d:
		return true
	}
	return false
}

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

type SortSpec struct {
	Key   SortKey   `json:"key"`
	Order SortOrder `json:"order"`
}

func DefaultSort() SortSpec {
	return SortSpec{Key: SortByMarketCap, Order: OrderDesc}
}

// Holding is one portfolio position. Name, Symbol and Image are snapshotted
// when the coin is first added so the row stays renderable if the coin later
// drops out of the market snapshot.
type Holding struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Image    string  `json:"image"`
	Quantity float64 `json:"quantity"`
	// AvgPrice is the quantity-weighted mean of all purchases of this coin.
	AvgPrice float64 `json:"purchase_price"`
}

type AlertCondition string

const (
	AlertAbove AlertCondition = "above"
	AlertBelow AlertCondition = "below"
)

func (c AlertCondition) Valid() bool {
	return c == AlertAbove || c == AlertBelow
}

// Alert is a standing price alert. Triggered always reflects the current
// snapshot: it is recomputed on every poll and flips back to false when the
// condition stops holding.
type Alert struct {
	ID        int64          `json:"id"`
	CoinID    string         `json:"coin_id"`
	Condition AlertCondition `json:"condition"`
	Price     float64        `json:"price"`
	Triggered bool           `json:"triggered"`
}

// PricePoint is one sample of a coin's price history.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// AssetDetails is the extended per-coin metadata behind the detail view.
type AssetDetails struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	Description       string  `json:"description"`
	Image             string  `json:"image"`
	Price             float64 `json:"current_price"`
	Change24h         float64 `json:"price_change_percentage_24h"`
	MarketCap         float64 `json:"market_cap"`
	Volume            float64 `json:"total_volume"`
	ATH               float64 `json:"ath"`
	ATL               float64 `json:"atl"`
	CirculatingSupply float64 `json:"circulating_supply"`
	TotalSupply       float64 `json:"total_supply"`
}
