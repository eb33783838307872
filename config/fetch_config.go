package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// FetchConfig backs the one shot rates, gas and pairs commands.
type FetchConfig struct {
	Providers Providers
	Log       log
	Base      fetchBase
}

type fetchBase struct {
	Currencies []string `mapstructure:"currencies"`
	Chains     []string `mapstructure:"chains"`
	Quote      string   `mapstructure:"quote"`
}

func SetupFetchSpecificFlags(conf *FetchConfig, cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&conf.Base.Currencies, "currency", nil, "A comma separated list of currencies to print. (Both '--currency BTC,ETH' and '--currency BTC --currency ETH' are valid)")
	cmd.Flags().StringSliceVar(&conf.Base.Chains, "chain", nil, "A comma separated list of chains to print gas prices for")
	cmd.Flags().StringVar(&conf.Base.Quote, "quote", "USD", "The quote currency used for rate lookups")
}

func (conf *FetchConfig) Validate() error {
	for _, currency := range conf.Base.Currencies {
		if strings.Contains(currency, "/") {
			return fmt.Errorf("invalid currency %s, pass the base symbol only and use --quote for the quote", currency)
		} else if strings.Contains(currency, " ") {
			return fmt.Errorf("invalid currency '%v', currencies cannot contain spaces", currency)
		}
	}

	if strings.TrimSpace(conf.Base.Quote) == "" {
		conf.Base.Quote = "USD"
	}

	providers, err := validateProvidersConf(conf.Providers)
	if err != nil {
		return err
	}
	conf.Providers = providers

	return nil
}

func CheckSuperfluousFetchKeys(keys []string) []string {
	validKeys := make(map[string]struct{})

	addLogConfigKeys(validKeys)
	addProviderConfigKeys(validKeys)
	addTableConfigKeys(validKeys)

	for _, key := range getValidConfigKeys(fetchBase{}, "base") {
		validKeys[key] = struct{}{}
	}

	return ignoredConfigKeys(keys, validKeys)
}
