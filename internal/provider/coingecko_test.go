package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodash/internal/types"
)

const marketsPayload = `[
	{"id":"bitcoin","name":"Bitcoin","symbol":"btc","image":"https://img/btc.png",
	 "current_price":50000,"price_change_percentage_24h":5,
	 "price_change_percentage_7d_in_currency":10.5,
	 "market_cap":900000000000,"total_volume":30000000000},
	{"id":"ethereum","name":"Ethereum","symbol":"eth","image":"https://img/eth.png",
	 "current_price":3000,"price_change_percentage_24h":-2,
	 "price_change_percentage_7d_in_currency":null,
	 "market_cap":300000000000,"total_volume":20000000000}
]`

func TestMarketsRequestShapeAndDecoding(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coins/markets", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(marketsPayload))
	}))
	defer srv.Close()

	assets, err := NewCoinGecko(srv.URL).Markets(context.Background(), 2, 50, types.CurrencyEUR)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"vs_currency":             "eur",
		"order":                   "market_cap_desc",
		"page":                    "2",
		"per_page":                "50",
		"sparkline":               "false",
		"price_change_percentage": "24h,7d",
	}, gotQuery)

	require.Len(t, assets, 2)
	assert.Equal(t, "bitcoin", assets[0].ID)
	assert.Equal(t, 50000.0, assets[0].Price)
	require.NotNil(t, assets[0].Change7d)
	assert.Equal(t, 10.5, *assets[0].Change7d)
	assert.Nil(t, assets[1].Change7d)
}

func TestMarketsNon2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewCoinGecko(srv.URL).Markets(context.Background(), 1, 20, types.CurrencyUSD)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
}

func TestMarketsNetworkFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewCoinGecko(srv.URL).Markets(context.Background(), 1, 20, types.CurrencyUSD)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
}

func TestChartDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		w.Write([]byte(`{"prices":[[1700000000000,49000],[1700003600000,50000]]}`))
	}))
	defer srv.Close()

	points, err := NewCoinGecko(srv.URL).Chart(context.Background(), "bitcoin", 7, types.CurrencyUSD)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, int64(1700000000000), points[0].Timestamp)
	assert.Equal(t, 49000.0, points[0].Price)
}

func TestDetailsDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coins/bitcoin", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("localization"))
		assert.Equal(t, "true", r.URL.Query().Get("market_data"))
		w.Write([]byte(`{
			"id":"bitcoin","name":"Bitcoin","symbol":"btc",
			"description":{"en":"The first cryptocurrency."},
			"image":{"large":"https://img/btc-large.png"},
			"market_data":{
				"current_price":{"usd":50000},
				"price_change_percentage_24h":5,
				"market_cap":{"usd":900000000000},
				"total_volume":{"usd":30000000000},
				"ath":{"usd":69000},
				"atl":{"usd":67.81},
				"circulating_supply":19500000,
				"total_supply":21000000
			}}`))
	}))
	defer srv.Close()

	d, err := NewCoinGecko(srv.URL).Details(context.Background(), "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, "Bitcoin", d.Name)
	assert.Equal(t, "The first cryptocurrency.", d.Description)
	assert.Equal(t, 69000.0, d.ATH)
	assert.Equal(t, 21000000.0, d.TotalSupply)
}
