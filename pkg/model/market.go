package model

import (
	"time"

	"github.com/DefiantLabs/bridge-market-data/marketdata"
)

// MarketSnapshot is the result of one refresh. It is what the cache stores and the API serves.
// ExchangeRates is the merged view; the per-provider slices let a restarted service keep the
// cached rates of a provider that is down.
type MarketSnapshot struct {
	ExchangeRates  []marketdata.ExchangeRate `json:"exchange_rates"`
	BandchainRates []marketdata.ExchangeRate `json:"bandchain_rates,omitempty"`
	CoingeckoRates []marketdata.ExchangeRate `json:"coingecko_rates,omitempty"`
	GasPrices      []marketdata.GasPrice     `json:"gas_prices"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

func (s *MarketSnapshot) IsEmpty() bool {
	return s == nil || (len(s.ExchangeRates) == 0 && len(s.GasPrices) == 0)
}

type RateLookup struct {
	Pair  string `json:"pair"`
	Found bool   `json:"found"`
	Rate  string `json:"rate"`
}

type GasLookup struct {
	Chain    string `json:"chain"`
	Found    bool   `json:"found"`
	Standard string `json:"standard"`
}
