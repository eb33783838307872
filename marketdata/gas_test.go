package marketdata

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeGasOracle struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  []string
}

func (f *fakeGasOracle) FetchFast(_ context.Context, endpoint string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, endpoint)
	price, ok := f.prices[endpoint]
	if !ok {
		return decimal.Zero, errors.New("connection refused")
	}
	return price, nil
}

func defaultPolicy(t *testing.T) GasPolicy {
	policy, err := NewGasPolicy(config.DefaultGasPolicy())
	require.NoError(t, err)
	return policy
}

func TestFetchGasPricesAllOraclesDown(t *testing.T) {
	oracle := &fakeGasOracle{}
	prices := FetchGasPrices(context.Background(), oracle, defaultPolicy(t))

	require.Len(t, prices, 7)
	require.Len(t, oracle.calls, 2)

	expected := map[string]string{
		ChainEthereum:  "50",
		ChainBSC:       "20",
		ChainAvalanche: "225",
		ChainFantom:    "75",
		ChainPolygon:   "6",
		ChainSolana:    "6",
		ChainArbitrum:  "0.4",
	}
	for chain, value := range expected {
		require.True(t, decimal.RequireFromString(value).Equal(FindGasPrice(prices, chain)), chain)
	}
}

func TestFetchGasPricesKeepsPolicyOrder(t *testing.T) {
	prices := FetchGasPrices(context.Background(), &fakeGasOracle{}, defaultPolicy(t))

	chains := make([]string, len(prices))
	for i, p := range prices {
		chains[i] = p.Chain
	}
	require.Equal(t, []string{ChainEthereum, ChainBSC, ChainAvalanche, ChainFantom, ChainPolygon, ChainSolana, ChainArbitrum}, chains)
}

func TestFetchGasPricesFloorSubstitution(t *testing.T) {
	oracle := &fakeGasOracle{prices: map[string]decimal.Decimal{
		config.DefaultEthGasOracle:     decimal.NewFromInt(15),
		config.DefaultPolygonGasOracle: decimal.NewFromInt(3),
	}}
	prices := FetchGasPrices(context.Background(), oracle, defaultPolicy(t))

	require.True(t, decimal.NewFromInt(50).Equal(FindGasPrice(prices, ChainEthereum)))
	// polygon has no floor, low values are kept
	require.True(t, decimal.NewFromInt(3).Equal(FindGasPrice(prices, ChainPolygon)))
}

func TestFetchGasPricesUsesFetchedValues(t *testing.T) {
	oracle := &fakeGasOracle{prices: map[string]decimal.Decimal{
		config.DefaultEthGasOracle:     decimal.NewFromInt(20),
		config.DefaultPolygonGasOracle: decimal.RequireFromString("31.5"),
	}}
	prices := FetchGasPrices(context.Background(), oracle, defaultPolicy(t))

	require.True(t, decimal.NewFromInt(20).Equal(FindGasPrice(prices, ChainEthereum)))
	require.True(t, decimal.RequireFromString("31.5").Equal(FindGasPrice(prices, ChainPolygon)))
}

func TestFindGasPrice(t *testing.T) {
	prices := []GasPrice{{Chain: ChainSolana, Standard: decimal.NewFromInt(6)}}

	require.True(t, FindGasPrice(prices, "unknown-chain").IsZero())
	require.True(t, FindGasPrice(nil, ChainSolana).IsZero())

	price, ok := LookupGasPrice(prices, ChainSolana)
	require.True(t, ok)
	require.True(t, decimal.NewFromInt(6).Equal(price))

	_, ok = LookupGasPrice(prices, "unknown-chain")
	require.False(t, ok)
}

func TestNewGasPolicyRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name   string
		chains []config.GasChain
		err    error
	}{
		{name: "empty", chains: nil, err: ErrEmptyGasPolicy},
		{name: "missing chain", chains: []config.GasChain{{Standard: "1"}}, err: ErrInvalidGasPolicy},
		{name: "duplicate chain", chains: []config.GasChain{{Chain: "solc", Standard: "6"}, {Chain: "solc", Standard: "7"}}, err: ErrInvalidGasPolicy},
		{name: "missing standard", chains: []config.GasChain{{Chain: "solc"}}, err: ErrInvalidGasPolicy},
		{name: "bad number", chains: []config.GasChain{{Chain: "solc", Standard: "six"}}, err: ErrInvalidGasPolicy},
		{name: "negative", chains: []config.GasChain{{Chain: "solc", Standard: "-1"}}, err: ErrInvalidGasPolicy},
		{name: "floor without substitute", chains: []config.GasChain{{Chain: "ethc", Standard: "50", Floor: "20"}}, err: ErrInvalidGasPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGasPolicy(tt.chains)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewGasPolicyDefaults(t *testing.T) {
	policy := defaultPolicy(t)
	require.Len(t, policy, 7)
	require.False(t, policy[0].IsStatic())
	require.True(t, policy[1].IsStatic())
	require.True(t, decimal.NewFromInt(20).Equal(policy[0].Floor))
	require.True(t, decimal.RequireFromString("0.4").Equal(policy[6].Standard))
}
