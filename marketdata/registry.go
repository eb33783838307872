// Package marketdata maps the bridge currency table onto the vocabularies of the market data
// providers and answers rate and gas price lookups over the normalized results.
package marketdata

import (
	"fmt"
	"strings"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/DefiantLabs/bridge-market-data/util"
)

// USD is the quote every reference pair is requested in.
const USD = "USD"

// Registry is the read only view over the currency table. It is built once at startup and
// is safe for concurrent use.
type Registry struct {
	currencies     []config.Currency
	bySymbol       map[string]config.Currency
	byBandchain    map[string]config.Currency
	referencePairs []string
}

// NewRegistry validates the currency table and builds the bandchain reverse index.
//
// Several currencies may share a bandchain symbol only when one of them is named after it
// (RENBTC and BTC both price as "BTC", BTC owns it). Any other sharing makes the reverse
// lookup ambiguous and is rejected. Entries marked BandchainUnsupported are never requested but
// remain in the reverse index.
func NewRegistry(currencies []config.Currency) (*Registry, error) {
	if len(currencies) == 0 {
		return nil, ErrEmptyCurrencyTable
	}

	r := &Registry{
		currencies:  make([]config.Currency, 0, len(currencies)),
		bySymbol:    make(map[string]config.Currency, len(currencies)),
		byBandchain: make(map[string]config.Currency, len(currencies)),
	}

	claims := make(map[string][]config.Currency)
	unsupportedClaims := make(map[string][]config.Currency)
	var bandchainOrder, unsupportedOrder []string

	for i, c := range currencies {
		c.Symbol = strings.TrimSpace(c.Symbol)
		c.BandchainSymbol = strings.TrimSpace(c.BandchainSymbol)
		c.CoingeckoSymbol = strings.TrimSpace(c.CoingeckoSymbol)

		if util.StrNotSet(c.Symbol) {
			return nil, fmt.Errorf("%w: entry %d has no symbol", ErrInvalidCurrency, i)
		}
		if strings.Contains(c.Symbol, "/") || strings.Contains(c.BandchainSymbol, "/") {
			return nil, fmt.Errorf("%w: %s contains a pair separator", ErrInvalidCurrency, c.Symbol)
		}
		if _, ok := r.bySymbol[c.Symbol]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCurrency, c.Symbol)
		}

		r.bySymbol[c.Symbol] = c
		r.currencies = append(r.currencies, c)

		key := bandchainSymbol(c)
		if c.BandchainUnsupported {
			unsupportedOrder = append(unsupportedOrder, key)
			unsupportedClaims[key] = append(unsupportedClaims[key], c)
			continue
		}
		bandchainOrder = append(bandchainOrder, key)
		claims[key] = append(claims[key], c)
	}

	bandchainSymbols := util.RemoveDuplicates(bandchainOrder)
	for _, key := range bandchainSymbols {
		owner, err := resolveOwner(key, claims[key])
		if err != nil {
			return nil, err
		}
		r.byBandchain[key] = owner
	}

	// Unsupported entries still resolve in reverse, unless a requested pair already owns the symbol.
	for _, key := range util.RemoveDuplicates(unsupportedOrder) {
		if _, ok := r.byBandchain[key]; ok {
			continue
		}
		owner, err := resolveOwner(key, unsupportedClaims[key])
		if err != nil {
			return nil, err
		}
		r.byBandchain[key] = owner
	}

	pairs := make([]string, 0, len(bandchainSymbols))
	for _, key := range bandchainSymbols {
		pairs = append(pairs, Pair(key, USD))
	}
	r.referencePairs = pairs

	return r, nil
}

func resolveOwner(key string, claimants []config.Currency) (config.Currency, error) {
	if len(claimants) == 1 {
		return claimants[0], nil
	}

	for _, c := range claimants {
		if c.Symbol == key {
			return c, nil
		}
	}

	symbols := make([]string, len(claimants))
	for i, c := range claimants {
		symbols[i] = c.Symbol
	}
	return config.Currency{}, fmt.Errorf("%w: %s is claimed by %s", ErrAmbiguousBandchainSymbol, key, strings.Join(symbols, ", "))
}

func bandchainSymbol(c config.Currency) string {
	if c.BandchainSymbol != "" {
		return c.BandchainSymbol
	}
	return c.Symbol
}

// Pair joins a base and quote into the "BASE/QUOTE" form used by every provider.
func Pair(base, quote string) string {
	return base + "/" + quote
}

// SplitPair is the inverse of Pair.
func SplitPair(pair string) (base, quote string, err error) {
	parts := strings.Split(pair, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedPair, pair)
	}
	return parts[0], parts[1], nil
}

// Currencies returns the validated table in configuration order.
func (r *Registry) Currencies() []config.Currency {
	out := make([]config.Currency, len(r.currencies))
	copy(out, r.currencies)
	return out
}

// Currency returns the table entry for an internal identifier.
func (r *Registry) Currency(symbol string) (config.Currency, bool) {
	c, ok := r.bySymbol[symbol]
	return c, ok
}

// BandchainSymbol maps an internal identifier to the symbol Band Protocol prices it under.
// Identifiers missing from the table are passed through unchanged.
func (r *Registry) BandchainSymbol(symbol string) string {
	c, ok := r.bySymbol[symbol]
	if !ok {
		return symbol
	}
	return bandchainSymbol(c)
}

// CurrencyForBandchainSymbol is the reverse lookup used when normalizing Band responses.
func (r *Registry) CurrencyForBandchainSymbol(symbol string) (config.Currency, error) {
	c, ok := r.byBandchain[symbol]
	if !ok {
		return config.Currency{}, fmt.Errorf("%w: %s", ErrUnknownBandchainSymbol, symbol)
	}
	return c, nil
}
