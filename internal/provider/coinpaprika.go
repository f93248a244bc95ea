package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	log "github.com/sirupsen/logrus"

	"cryptodash/internal/types"
)

// CoinPaprika adapts the CoinPaprika API to the Source interface. The tickers
// endpoint is unpaginated, so pages are sliced locally after a market-cap
// sort.
type CoinPaprika struct {
	client *coinpaprika.Client
}

func NewCoinPaprika(apiKey string) *CoinPaprika {
	if apiKey != "" {
		return &CoinPaprika{client: coinpaprika.NewClient(nil, coinpaprika.WithAPIKey(apiKey))}
	}
	return &CoinPaprika{client: coinpaprika.NewClient(nil)}
}

func (c *CoinPaprika) Markets(_ context.Context, page, perPage int, currency types.Currency) ([]types.Asset, error) {
	quote := strings.ToUpper(string(currency))
	tickers, err := c.client.Tickers.List(&coinpaprika.TickersOptions{Quotes: quote})
	if err != nil {
		return nil, &FetchError{Op: "markets", Err: err}
	}

	assets := make([]types.Asset, 0, len(tickers))
	for _, t := range tickers {
		if t.ID == nil || t.Name == nil || t.Symbol == nil {
			continue
		}
		q, ok := t.Quotes[quote]
		if !ok || q.Price == nil {
			continue
		}
		a := types.Asset{
			ID:     *t.ID,
			Name:   *t.Name,
			Symbol: strings.ToLower(*t.Symbol),
			Image:  fmt.Sprintf("https://static.coinpaprika.com/coin/%s/logo.png", *t.ID),
			Price:  *q.Price,
		}
		if q.PercentChange24h != nil {
			a.Change24h = *q.PercentChange24h
		}
		if q.PercentChange7d != nil {
			change7d := *q.PercentChange7d
			a.Change7d = &change7d
		}
		if q.MarketCap != nil {
			a.MarketCap = float64(*q.MarketCap)
		}
		if q.Volume24h != nil {
			a.Volume = float64(*q.Volume24h)
		}
		assets = append(assets, a)
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].MarketCap > assets[j].MarketCap
	})

	start := (page - 1) * perPage
	if start >= len(assets) {
		return []types.Asset{}, nil
	}
	end := start + perPage
	if end > len(assets) {
		end = len(assets)
	}

	log.Debugf("coinpaprika returned %d tickers, serving page %d", len(assets), page)
	return assets[start:end], nil
}

func (c *CoinPaprika) Chart(_ context.Context, coinID string, days int, currency types.Currency) ([]types.PricePoint, error) {
	interval := "1h"
	if days > 7 {
		interval = "1d"
	}

	tickers, err := c.client.Tickers.GetHistoricalTickersByID(coinID, &coinpaprika.TickersHistoricalOptions{
		Quote:    strings.ToUpper(string(currency)),
		Limit:    120,
		Interval: interval,
		Start:    time.Now().AddDate(0, 0, -days),
	})
	if err != nil {
		return nil, &FetchError{Op: "chart", Err: err}
	}

	points := make([]types.PricePoint, 0, len(tickers))
	for _, t := range tickers {
		if t.Timestamp == nil || t.Price == nil {
			continue
		}
		points = append(points, types.PricePoint{Timestamp: t.Timestamp.UnixMilli(), Price: *t.Price})
	}
	return points, nil
}

// Details maps the USD ticker onto AssetDetails. CoinPaprika's ticker has no
// all-time-high figures, so ATH/ATL stay zero on this source.
func (c *CoinPaprika) Details(_ context.Context, coinID string) (*types.AssetDetails, error) {
	t, err := c.client.Tickers.GetByID(coinID, &coinpaprika.TickersOptions{Quotes: "USD"})
	if err != nil {
		return nil, &FetchError{Op: "details", Err: err}
	}
	if t.ID == nil || t.Name == nil || t.Symbol == nil {
		return nil, &FetchError{Op: "details", Err: fmt.Errorf("incomplete ticker for %s", coinID)}
	}

	d := &types.AssetDetails{
		ID:     *t.ID,
		Name:   *t.Name,
		Symbol: strings.ToLower(*t.Symbol),
		Image:  fmt.Sprintf("https://static.coinpaprika.com/coin/%s/logo.png", *t.ID),
	}
	if q, ok := t.Quotes["USD"]; ok {
		if q.Price != nil {
			d.Price = *q.Price
		}
		if q.PercentChange24h != nil {
			d.Change24h = *q.PercentChange24h
		}
		if q.MarketCap != nil {
			d.MarketCap = float64(*q.MarketCap)
		}
		if q.Volume24h != nil {
			d.Volume = float64(*q.Volume24h)
		}
	}
	if t.CirculatingSupply != nil {
		d.CirculatingSupply = float64(*t.CirculatingSupply)
	}
	if t.TotalSupply != nil {
		d.TotalSupply = float64(*t.TotalSupply)
	}
	return d, nil
}
