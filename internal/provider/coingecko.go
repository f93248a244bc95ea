package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"cryptodash/internal/types"
)

// CoinGecko talks to the CoinGecko v3 REST API.
type CoinGecko struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinGecko(baseURL string) *CoinGecko {
	return &CoinGecko{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CoinGecko) Markets(ctx context.Context, page, perPage int, currency types.Currency) ([]types.Asset, error) {
	params := url.Values{}
	params.Set("vs_currency", string(currency))
	params.Set("order", "market_cap_desc")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h,7d")

	var assets []types.Asset
	if err := c.getJSON(ctx, "markets", "/coins/markets?"+params.Encode(), &assets); err != nil {
		return nil, err
	}

	log.Debugf("fetched %d assets (page %d, currency %s)", len(assets), page, currency)
	return assets, nil
}

func (c *CoinGecko) Chart(ctx context.Context, coinID string, days int, currency types.Currency) ([]types.PricePoint, error) {
	params := url.Values{}
	params.Set("vs_currency", string(currency))
	params.Set("days", strconv.Itoa(days))

	var payload struct {
		Prices [][]float64 `json:"prices"`
	}
	path := fmt.Sprintf("/coins/%s/market_chart?%s", url.PathEscape(coinID), params.Encode())
	if err := c.getJSON(ctx, "chart", path, &payload); err != nil {
		return nil, err
	}

	points := make([]types.PricePoint, 0, len(payload.Prices))
	for _, p := range payload.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, types.PricePoint{Timestamp: int64(p[0]), Price: p[1]})
	}
	return points, nil
}

func (c *CoinGecko) Details(ctx context.Context, coinID string) (*types.AssetDetails, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")

	var payload struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		Description struct {
			EN string `json:"en"`
		} `json:"description"`
		Image struct {
			Large string `json:"large"`
		} `json:"image"`
		MarketData struct {
			CurrentPrice      map[string]float64 `json:"current_price"`
			Change24h         float64            `json:"price_change_percentage_24h"`
			MarketCap         map[string]float64 `json:"market_cap"`
			TotalVolume       map[string]float64 `json:"total_volume"`
			ATH               map[string]float64 `json:"ath"`
			ATL               map[string]float64 `json:"atl"`
			CirculatingSupply float64            `json:"circulating_supply"`
			TotalSupply       float64            `json:"total_supply"`
		} `json:"market_data"`
	}
	path := fmt.Sprintf("/coins/%s?%s", url.PathEscape(coinID), params.Encode())
	if err := c.getJSON(ctx, "details", path, &payload); err != nil {
		return nil, err
	}

	usd := string(types.CurrencyUSD)
	return &types.AssetDetails{
		ID:                payload.ID,
		Name:              payload.Name,
		Symbol:            payload.Symbol,
		Description:       payload.Description.EN,
		Image:             payload.Image.Large,
		Price:             payload.MarketData.CurrentPrice[usd],
		Change24h:         payload.MarketData.Change24h,
		MarketCap:         payload.MarketData.MarketCap[usd],
		Volume:            payload.MarketData.TotalVolume[usd],
		ATH:               payload.MarketData.ATH[usd],
		ATL:               payload.MarketData.ATL[usd],
		CirculatingSupply: payload.MarketData.CirculatingSupply,
		TotalSupply:       payload.MarketData.TotalSupply,
	}, nil
}

func (c *CoinGecko) getJSON(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Err: err}
	}
	return nil
}
