package config

import (
	"github.com/pelletier/go-toml/v2"
)

type exampleProviders struct {
	BandchainHost string `toml:"bandchain-host"`
	CoingeckoHost string `toml:"coingecko-host"`
	Timeout       int64  `toml:"timeout"`
}

type exampleConfig struct {
	Log        exampleLog       `toml:"log"`
	Providers  exampleProviders `toml:"providers"`
	Currencies []Currency       `toml:"currencies"`
	Gas        []GasChain       `toml:"gas"`
}

type exampleLog struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// ExampleTOML renders a config file holding the built in currency table and gas policy.
func ExampleTOML() ([]byte, error) {
	return toml.Marshal(exampleConfig{
		Log: exampleLog{Level: "info"},
		Providers: exampleProviders{
			BandchainHost: DefaultBandchainHost,
			CoingeckoHost: DefaultCoingeckoHost,
			Timeout:       10,
		},
		Currencies: DefaultCurrencies(),
		Gas:        DefaultGasPolicy(),
	})
}
