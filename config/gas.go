package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// GasChain is one row of the gas price policy. Chains with an endpoint are read from a gas
// oracle and use Standard as the fallback, the others always report Standard.
// Amounts are decimal strings so they survive TOML and flags without float rounding.
type GasChain struct {
	Chain           string `mapstructure:"chain" toml:"chain"`
	Endpoint        string `mapstructure:"endpoint" toml:"endpoint,omitempty"`
	Standard        string `mapstructure:"standard" toml:"standard"`
	Floor           string `mapstructure:"floor" toml:"floor,omitempty"`
	FloorSubstitute string `mapstructure:"floor-substitute" toml:"floor-substitute,omitempty"`
}

const (
	DefaultEthGasOracle     = "https://api.anyblock.tools/latest-minimum-gasprice"
	DefaultPolygonGasOracle = "https://gasstation-mainnet.matic.network"
)

// DefaultGasPolicy returns the gas policy for the seven supported chains, in display order.
func DefaultGasPolicy() []GasChain {
	return []GasChain{
		// oracle values under 20 gwei have proven unreliable
		{Chain: "ethc", Endpoint: DefaultEthGasOracle, Standard: "50", Floor: "20", FloorSubstitute: "50"},
		// no reliable source, BSC gas is stable
		{Chain: "bscc", Standard: "20"},
		// C-Chain fee schedule
		{Chain: "avaxc", Standard: "225"},
		{Chain: "ftmc", Standard: "75"},
		{Chain: "maticc", Endpoint: DefaultPolygonGasOracle, Standard: "6"},
		// roughly 0.001 SOL per transaction
		{Chain: "solc", Standard: "6"},
		{Chain: "arbitrumc", Standard: "0.4"},
	}
}

// LoadGasPolicy reads the [[gas]] tables from the config file, falling back to the built in
// policy when the section is absent.
func LoadGasPolicy(v *viper.Viper) ([]GasChain, error) {
	if v == nil || !v.IsSet(gasPolicyKey) {
		return DefaultGasPolicy(), nil
	}

	var chains []GasChain
	if err := v.UnmarshalKey(gasPolicyKey, &chains); err != nil {
		return nil, fmt.Errorf("error reading gas policy: %w", err)
	}

	return chains, nil
}
