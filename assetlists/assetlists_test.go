package assetlists

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/stretchr/testify/require"
)

func TestGetCurrencyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"bridge","currencies":[
			{"symbol":"BTC","coingecko_symbol":"bitcoin"},
			{"symbol":"RENBTC","bandchain_symbol":"BTC"},
			{"symbol":"AVAX","coingecko_symbol":"avalanche-2","bandchain_unsupported":true}
		]}`))
	}))
	defer srv.Close()

	list, err := GetCurrencyList(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "bridge", list.Name)
	require.Equal(t, []config.Currency{
		{Symbol: "BTC", CoingeckoSymbol: "bitcoin"},
		{Symbol: "RENBTC", BandchainSymbol: "BTC"},
		{Symbol: "AVAX", CoingeckoSymbol: "avalanche-2", BandchainUnsupported: true},
	}, list.Currencies)
}

func TestGetCurrencyListBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := GetCurrencyList(context.Background(), srv.URL)
	require.Error(t, err)
}
