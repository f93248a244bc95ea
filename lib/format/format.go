package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cryptodash/internal/types"
)

var currencySymbols = map[types.Currency]string{
	types.CurrencyUSD: "$",
	types.CurrencyEUR: "€",
	types.CurrencyGBP: "£",
}

// Currency renders a monetary value compactly: $1.23T, $45.60B, $12.30M,
// $9.87K, below that plain two decimals.
func Currency(value float64, currency types.Currency) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = "$"
	}

	switch {
	case value >= 1e12:
		return fmt.Sprintf("%s%.2fT", symbol, value/1e12)
	case value >= 1e9:
		return fmt.Sprintf("%s%.2fB", symbol, value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("%s%.2fM", symbol, value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("%s%.2fK", symbol, value/1e3)
	default:
		return fmt.Sprintf("%s%.2f", symbol, value)
	}
}

// Percent renders a change percentage with two decimals.
func Percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// Price renders a full price with comma thousand separators and a decimal
// count scaled to the magnitude, small-cap coins keeping more precision.
func Price(price float64) string {
	decimals := 6
	if price >= 1000 {
		decimals = 0
	} else if price > 1.2 {
		decimals = 2
	} else if price < 0.00001 {
		decimals = 8
	}

	p := message.NewPrinter(language.English)
	return p.Sprintf("%.*f", decimals, price)
}

// Supply renders a coin supply figure with comma grouping.
func Supply(supply float64) string {
	return humanize.CommafWithDigits(supply, 0)
}

// AlertText is the notification line recorded when an alert fires.
func AlertText(a types.Asset, al types.Alert, currency types.Currency) string {
	direction := "risen above"
	if al.Condition == types.AlertBelow {
		direction = "fallen below"
	}
	return fmt.Sprintf("%s (%s) has %s %s (current price %s)",
		a.Name, strings.ToUpper(a.Symbol), direction,
		Currency(al.Price, currency), Currency(a.Price, currency))
}

// DetailsSummary is the plain-text summary of the coin detail view.
func DetailsSummary(d types.AssetDetails, currency types.Currency) string {
	return fmt.Sprintf(
		"%s (%s)\nPrice: %s\n24h change: %s\nMarket cap: %s\nVolume: %s\nATH: %s\nATL: %s\nCirc. supply: %s\nTotal supply: %s",
		d.Name, strings.ToUpper(d.Symbol),
		Currency(d.Price, currency),
		Percent(d.Change24h),
		Currency(d.MarketCap, currency),
		Currency(d.Volume, currency),
		Currency(d.ATH, currency),
		Currency(d.ATL, currency),
		Supply(d.CirculatingSupply),
		Supply(d.TotalSupply),
	)
}
