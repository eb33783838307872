package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	currenciesKey = "currencies"
	gasPolicyKey  = "gas"
)

// Currency is one row of the currency configuration table. Empty aliases mean the provider
// uses the internal symbol unchanged (Band) or does not list the currency at all (CoinGecko).
type Currency struct {
	Symbol               string `mapstructure:"symbol" json:"symbol" toml:"symbol"`
	BandchainSymbol      string `mapstructure:"bandchain-symbol" json:"bandchain_symbol" toml:"bandchain-symbol,omitempty"`
	CoingeckoSymbol      string `mapstructure:"coingecko-symbol" json:"coingecko_symbol" toml:"coingecko-symbol,omitempty"`
	BandchainUnsupported bool   `mapstructure:"bandchain-unsupported" json:"bandchain_unsupported" toml:"bandchain-unsupported,omitempty"`
}

// DefaultCurrencies is the table shipped with the bridge. AVAX is not part of the Band catalog.
func DefaultCurrencies() []Currency {
	return []Currency{
		{Symbol: "BTC", CoingeckoSymbol: "bitcoin"},
		{Symbol: "BCH", CoingeckoSymbol: "bitcoin-cash"},
		{Symbol: "DGB", CoingeckoSymbol: "digibyte"},
		{Symbol: "DOGE", CoingeckoSymbol: "dogecoin"},
		{Symbol: "FIL", CoingeckoSymbol: "filecoin"},
		{Symbol: "LUNA", CoingeckoSymbol: "terra-luna"},
		{Symbol: "ZEC", CoingeckoSymbol: "zcash"},
		{Symbol: "ETH", CoingeckoSymbol: "ethereum"},
		{Symbol: "BNB", CoingeckoSymbol: "binancecoin"},
		{Symbol: "FTM", CoingeckoSymbol: "fantom"},
		{Symbol: "MATIC", CoingeckoSymbol: "matic-network"},
		{Symbol: "AVAX", CoingeckoSymbol: "avalanche-2", BandchainUnsupported: true},
		{Symbol: "SOL", CoingeckoSymbol: "solana"},
		{Symbol: "ARBETH", BandchainSymbol: "ETH"},
		{Symbol: "RENBTC", BandchainSymbol: "BTC"},
		{Symbol: "UNKNOWN", BandchainUnsupported: true},
	}
}

// LoadCurrencies reads the [[currencies]] tables from the config file, falling back to the
// built in table when the section is absent.
func LoadCurrencies(v *viper.Viper) ([]Currency, error) {
	if v == nil || !v.IsSet(currenciesKey) {
		return DefaultCurrencies(), nil
	}

	var currencies []Currency
	if err := v.UnmarshalKey(currenciesKey, &currencies); err != nil {
		return nil, fmt.Errorf("error reading currencies table: %w", err)
	}

	return currencies, nil
}
