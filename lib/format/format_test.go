package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cryptodash/internal/types"
)

func TestCurrencyCompact(t *testing.T) {
	assert.Equal(t, "$1.23T", Currency(1.234e12, types.CurrencyUSD))
	assert.Equal(t, "€45.60B", Currency(45.6e9, types.CurrencyEUR))
	assert.Equal(t, "£12.30M", Currency(12.3e6, types.CurrencyGBP))
	assert.Equal(t, "$9.87K", Currency(9870, types.CurrencyUSD))
	assert.Equal(t, "$0.25", Currency(0.25, types.CurrencyUSD))
	assert.Equal(t, "$0.00", Currency(0, types.CurrencyUSD))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "5.00%", Percent(5))
	assert.Equal(t, "-2.35%", Percent(-2.345))
}

func TestPriceScalesDecimals(t *testing.T) {
	assert.Equal(t, "50,000", Price(50000))
	assert.Equal(t, "1,234", Price(1234.4))
	assert.Equal(t, "3.14", Price(3.14159))
	assert.Equal(t, "0.250000", Price(0.25))
	assert.Equal(t, "0.00000100", Price(0.000001))
}

func TestSupply(t *testing.T) {
	assert.Equal(t, "21,000,000", Supply(21000000))
}

func TestAlertText(t *testing.T) {
	asset := types.Asset{ID: "btc", Name: "Bitcoin", Symbol: "btc", Price: 51000}

	above := types.Alert{CoinID: "btc", Condition: types.AlertAbove, Price: 50000}
	assert.Equal(t,
		"Bitcoin (BTC) has risen above $50.00K (current price $51.00K)",
		AlertText(asset, above, types.CurrencyUSD))

	below := types.Alert{CoinID: "btc", Condition: types.AlertBelow, Price: 60000}
	assert.Contains(t, AlertText(asset, below, types.CurrencyUSD), "fallen below")
}

func TestDetailsSummary(t *testing.T) {
	d := types.AssetDetails{
		Name: "Bitcoin", Symbol: "btc",
		Price: 50000, Change24h: 5, MarketCap: 9e11, Volume: 3e10,
		ATH: 69000, ATL: 67.81,
		CirculatingSupply: 19500000, TotalSupply: 21000000,
	}

	summary := DetailsSummary(d, types.CurrencyUSD)
	assert.Contains(t, summary, "Bitcoin (BTC)")
	assert.Contains(t, summary, "Price: $50.00K")
	assert.Contains(t, summary, "24h change: 5.00%")
	assert.Contains(t, summary, "Market cap: $900.00B")
	assert.Contains(t, summary, "Total supply: 21,000,000")
}
