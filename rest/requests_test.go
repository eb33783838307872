package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DefiantLabs/bridge-market-data/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, path string, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetBandReferenceData(t *testing.T) {
	body := `{"price_results":[
		{"symbol":"BTC","multiplier":"1000000000","px":"50000000000000","request_id":"1","resolve_time":"1"},
		{"symbol":"ETH","multiplier":"1000000000","px":"2500000000000","request_id":"1","resolve_time":"1"}
	]}`
	srv := newTestServer(t, GetEndpoint("band_request_prices"), http.StatusOK, body, func(r *http.Request) {
		assert.ElementsMatch(t, []string{"BTC", "ETH", "DOGE"}, r.URL.Query()["symbols"])
		assert.Equal(t, "3", r.URL.Query().Get("min_count"))
		assert.Equal(t, "4", r.URL.Query().Get("ask_count"))
	})

	client := NewClient(time.Second, srv.URL, "")
	data, err := client.GetBandReferenceData(context.Background(), []string{"BTC/USD", "ETH/USD", "DOGE/USD", "BTC/ETH"})
	require.NoError(t, err)

	require.Len(t, data, 3)
	require.Equal(t, "BTC/USD", data[0].Pair)
	require.True(t, decimal.NewFromInt(50000).Equal(data[0].Rate))
	require.Equal(t, "ETH/USD", data[1].Pair)
	require.True(t, decimal.NewFromInt(2500).Equal(data[1].Rate))
	require.Equal(t, "BTC/ETH", data[2].Pair)
	require.True(t, decimal.NewFromInt(20).Equal(data[2].Rate))
}

func TestGetBandReferenceDataErrors(t *testing.T) {
	srv := newTestServer(t, GetEndpoint("band_request_prices"), http.StatusBadGateway, `{"error":"down"}`, nil)
	client := NewClient(time.Second, srv.URL, "")

	_, err := client.GetBandReferenceData(context.Background(), []string{"BTC/USD"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")

	_, err = client.GetBandReferenceData(context.Background(), []string{"BTCUSD"})
	require.ErrorIs(t, err, marketdata.ErrMalformedPair)

	data, err := client.GetBandReferenceData(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestGetBandReferenceDataInvalidMultiplier(t *testing.T) {
	body := `{"price_results":[{"symbol":"BTC","multiplier":"0","px":"1"}]}`
	srv := newTestServer(t, GetEndpoint("band_request_prices"), http.StatusOK, body, nil)
	client := NewClient(time.Second, srv.URL, "")

	_, err := client.GetBandReferenceData(context.Background(), []string{"BTC/USD"})
	require.Error(t, err)
}

func TestGetCoingeckoMarkets(t *testing.T) {
	body := `[
		{"id":"avalanche-2","symbol":"avax","name":"Avalanche","current_price":35.21},
		{"id":"solana","symbol":"sol","name":"Solana","current_price":null}
	]`
	srv := newTestServer(t, GetEndpoint("coingecko_markets"), http.StatusOK, body, func(r *http.Request) {
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "avalanche-2,solana", r.URL.Query().Get("ids"))
	})

	client := NewClient(time.Second, "", srv.URL)
	data, err := client.GetCoingeckoMarkets(context.Background(), []string{"avalanche-2", "solana"})
	require.NoError(t, err)
	require.Len(t, data, 1)
	require.Equal(t, "avax", data[0].Symbol)
	require.True(t, decimal.RequireFromString("35.21").Equal(data[0].CurrentPrice))
}

func TestGetCoingeckoMarketsMalformedBody(t *testing.T) {
	srv := newTestServer(t, GetEndpoint("coingecko_markets"), http.StatusOK, `{"status":"rate limited"}`, nil)
	client := NewClient(time.Second, "", srv.URL)

	_, err := client.GetCoingeckoMarkets(context.Background(), []string{"bitcoin"})
	require.Error(t, err)
}

func TestFetchFast(t *testing.T) {
	srv := newTestServer(t, "/gas", http.StatusOK, `{"health":true,"slow":10,"standard":12,"fast":15.5,"instant":30}`, nil)
	client := NewClient(time.Second, "", "")

	fast, err := client.FetchFast(context.Background(), srv.URL+"/gas")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("15.5").Equal(fast))
}

func TestFetchFastFailures(t *testing.T) {
	missing := newTestServer(t, "/gas", http.StatusOK, `{"standard":12}`, nil)
	broken := newTestServer(t, "/gas", http.StatusOK, `<html>`, nil)
	down := newTestServer(t, "/gas", http.StatusServiceUnavailable, ``, nil)
	client := NewClient(time.Second, "", "")

	_, err := client.FetchFast(context.Background(), missing.URL+"/gas")
	require.ErrorIs(t, err, ErrMissingFastPrice)

	_, err = client.FetchFast(context.Background(), broken.URL+"/gas")
	require.Error(t, err)

	_, err = client.FetchFast(context.Background(), down.URL+"/gas")
	require.Error(t, err)

	_, err = client.FetchFast(context.Background(), "http://127.0.0.1:0/gas")
	require.Error(t, err)
}

func TestFetchGasPricesThroughClient(t *testing.T) {
	eth := newTestServer(t, "/eth", http.StatusOK, `{"fast":15}`, nil)
	client := NewClient(time.Second, "", "")

	policy := marketdata.GasPolicy{
		{Chain: marketdata.ChainEthereum, Endpoint: eth.URL + "/eth", Standard: decimal.NewFromInt(50), Floor: decimal.NewFromInt(20), FloorSubstitute: decimal.NewFromInt(50)},
		{Chain: marketdata.ChainPolygon, Endpoint: "http://127.0.0.1:0/matic", Standard: decimal.NewFromInt(6)},
		{Chain: marketdata.ChainSolana, Standard: decimal.NewFromInt(6)},
	}

	prices := marketdata.FetchGasPrices(context.Background(), client, policy)
	require.Len(t, prices, 3)
	require.True(t, decimal.NewFromInt(50).Equal(marketdata.FindGasPrice(prices, marketdata.ChainEthereum)))
	require.True(t, decimal.NewFromInt(6).Equal(marketdata.FindGasPrice(prices, marketdata.ChainPolygon)))
}
