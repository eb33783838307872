package marketdata

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a normalized rate keyed by internal identifiers.
type ExchangeRate struct {
	Pair string          `json:"pair"`
	Rate decimal.Decimal `json:"rate"`
}

// BandchainReferenceData is one Band Protocol reference rate, keyed by Band symbols.
type BandchainReferenceData struct {
	Pair string          `json:"pair"`
	Rate decimal.Decimal `json:"rate"`
}

// CoingeckoReferenceData is the subset of a CoinGecko market entry the bridge uses.
type CoingeckoReferenceData struct {
	Symbol       string          `json:"symbol"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// ReferencePairs lists the "<bandchain symbol>/USD" pairs to request from Band Protocol.
// Unsupported currencies are skipped and aliases sharing a symbol collapse into one pair.
func (r *Registry) ReferencePairs() []string {
	out := make([]string, len(r.referencePairs))
	copy(out, r.referencePairs)
	return out
}

// CoingeckoSymbols lists the CoinGecko ids of every currency that declares one.
func (r *Registry) CoingeckoSymbols() []string {
	symbols := make([]string, 0, len(r.currencies))
	for _, c := range r.currencies {
		if c.CoingeckoSymbol == "" {
			continue
		}
		symbols = append(symbols, c.CoingeckoSymbol)
	}
	return symbols
}

// NormalizeBandchain rewrites Band pairs onto internal identifiers. A base symbol without a
// currency entry is a gap in the currency table and fails the whole batch.
func (r *Registry) NormalizeBandchain(entries []BandchainReferenceData) ([]ExchangeRate, error) {
	rates := make([]ExchangeRate, 0, len(entries))
	for _, entry := range entries {
		base, quote, err := SplitPair(entry.Pair)
		if err != nil {
			return nil, err
		}

		currency, err := r.CurrencyForBandchainSymbol(base)
		if err != nil {
			return nil, fmt.Errorf("normalizing %s: %w", entry.Pair, err)
		}

		rates = append(rates, ExchangeRate{
			Pair: Pair(currency.Symbol, quote),
			Rate: entry.Rate,
		})
	}
	return rates, nil
}

// NormalizeCoingecko converts CoinGecko market entries into USD rates. CoinGecko symbols are
// used as they come.
func NormalizeCoingecko(entries []CoingeckoReferenceData) []ExchangeRate {
	rates := make([]ExchangeRate, 0, len(entries))
	for _, entry := range entries {
		rates = append(rates, ExchangeRate{
			Pair: Pair(entry.Symbol, USD),
			Rate: entry.CurrentPrice,
		})
	}
	return rates
}

// LookupExchangeRate finds the rate of base in quote. The base goes through its bandchain
// symbol and back to the owning identifier, so aliases such as RENBTC resolve to the BTC rate.
// Pair comparison ignores case since CoinGecko reports lower case symbols.
func (r *Registry) LookupExchangeRate(rates []ExchangeRate, base, quote string) (decimal.Decimal, bool) {
	if quote == "" {
		quote = USD
	}

	symbol := r.BandchainSymbol(base)
	if owner, err := r.CurrencyForBandchainSymbol(symbol); err == nil {
		symbol = owner.Symbol
	}

	pair := Pair(symbol, quote)
	for _, rate := range rates {
		if strings.EqualFold(rate.Pair, pair) {
			return rate.Rate, true
		}
	}
	return decimal.Zero, false
}

// FindExchangeRate is LookupExchangeRate for display code: a missing rate reads as zero.
func (r *Registry) FindExchangeRate(rates []ExchangeRate, base, quote string) decimal.Decimal {
	rate, _ := r.LookupExchangeRate(rates, base, quote)
	return rate
}
