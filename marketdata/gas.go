package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/DefiantLabs/bridge-market-data/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// GasPrice is the standard gas price of a chain in that chain's price unit.
type GasPrice struct {
	Chain    string          `json:"chain"`
	Standard decimal.Decimal `json:"standard"`
}

// GasOracle reads the "fast" price from a gas oracle endpoint.
type GasOracle interface {
	FetchFast(ctx context.Context, endpoint string) (decimal.Decimal, error)
}

// ChainGasPolicy describes how the gas price of one chain is obtained.
type ChainGasPolicy struct {
	Chain string
	// Endpoint is empty for chains priced from Standard only.
	Endpoint string
	// Standard is the static price, or the fallback when the oracle fails.
	Standard decimal.Decimal
	// Fetched values below Floor are replaced by FloorSubstitute. A zero Floor disables the rule.
	Floor           decimal.Decimal
	FloorSubstitute decimal.Decimal
}

func (p ChainGasPolicy) IsStatic() bool {
	return p.Endpoint == ""
}

// GasPolicy is the ordered list of supported chains.
type GasPolicy []ChainGasPolicy

// NewGasPolicy parses and validates the configured policy table.
func NewGasPolicy(chains []config.GasChain) (GasPolicy, error) {
	if len(chains) == 0 {
		return nil, ErrEmptyGasPolicy
	}

	seen := make(map[string]struct{}, len(chains))
	policy := make(GasPolicy, 0, len(chains))

	for i, c := range chains {
		chain := strings.TrimSpace(c.Chain)
		if chain == "" {
			return nil, fmt.Errorf("%w: entry %d has no chain", ErrInvalidGasPolicy, i)
		}
		if _, ok := seen[chain]; ok {
			return nil, fmt.Errorf("%w: chain %s listed twice", ErrInvalidGasPolicy, chain)
		}
		seen[chain] = struct{}{}

		p := ChainGasPolicy{Chain: chain, Endpoint: strings.TrimSpace(c.Endpoint)}

		var err error
		if p.Standard, err = parseGasAmount(chain, "standard", c.Standard, true); err != nil {
			return nil, err
		}
		if p.Floor, err = parseGasAmount(chain, "floor", c.Floor, false); err != nil {
			return nil, err
		}
		if p.FloorSubstitute, err = parseGasAmount(chain, "floor-substitute", c.FloorSubstitute, false); err != nil {
			return nil, err
		}
		if p.Floor.IsPositive() && !p.FloorSubstitute.IsPositive() {
			return nil, fmt.Errorf("%w: chain %s sets a floor without a substitute", ErrInvalidGasPolicy, chain)
		}

		policy = append(policy, p)
	}

	return policy, nil
}

func parseGasAmount(chain, field, value string, required bool) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return decimal.Zero, fmt.Errorf("%w: chain %s is missing %s", ErrInvalidGasPolicy, chain, field)
		}
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: chain %s has an invalid %s %q", ErrInvalidGasPolicy, chain, field, value)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: chain %s has a negative %s", ErrInvalidGasPolicy, chain, field)
	}
	return amount, nil
}

// FetchGasPrices returns one entry per policy chain, in policy order. Oracle chains are queried
// concurrently; any failure is logged and replaced with the chain's fallback, so the call never
// fails as a whole.
func FetchGasPrices(ctx context.Context, oracle GasOracle, policy GasPolicy) []GasPrice {
	prices := make([]GasPrice, len(policy))

	var g errgroup.Group
	for i, p := range policy {
		prices[i] = GasPrice{Chain: p.Chain, Standard: p.Standard}
		if p.IsStatic() {
			continue
		}

		g.Go(func() error {
			prices[i].Standard = fetchChainGasPrice(ctx, oracle, p)
			return nil
		})
	}
	_ = g.Wait()

	return prices
}

func fetchChainGasPrice(ctx context.Context, oracle GasOracle, p ChainGasPolicy) decimal.Decimal {
	fast, err := oracle.FetchFast(ctx, p.Endpoint)
	if err != nil {
		metrics.ProviderFailed("gas-oracle")
		metrics.GasFallbackUsed(p.Chain)
		config.Log.ZWarn().Err(err).
			Str("chain", p.Chain).
			Str("endpoint", p.Endpoint).
			Str("fallback", p.Standard.String()).
			Msg("Gas oracle request failed, using fallback")
		return p.Standard
	}

	if p.Floor.IsPositive() && fast.LessThan(p.Floor) {
		metrics.GasFloorSubstituted(p.Chain)
		config.Log.ZDebug().
			Str("chain", p.Chain).
			Str("fetched", fast.String()).
			Str("substitute", p.FloorSubstitute.String()).
			Msg("Gas oracle price below floor")
		return p.FloorSubstitute
	}

	return fast
}

// LookupGasPrice finds the standard price of a chain.
func LookupGasPrice(prices []GasPrice, chain string) (decimal.Decimal, bool) {
	for _, price := range prices {
		if price.Chain == chain {
			return price.Standard, true
		}
	}
	return decimal.Zero, false
}

// FindGasPrice is LookupGasPrice for display code: an unknown chain reads as zero.
func FindGasPrice(prices []GasPrice, chain string) decimal.Decimal {
	price, _ := LookupGasPrice(prices, chain)
	return price
}
