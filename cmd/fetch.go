package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/DefiantLabs/bridge-market-data/marketdata"
	"github.com/DefiantLabs/bridge-market-data/pkg/model"
	"github.com/DefiantLabs/bridge-market-data/pkg/service"
	"github.com/spf13/cobra"
)

var (
	ratesConfig config.FetchConfig
	gasConfig   config.FetchConfig
	pairsConfig config.FetchConfig
)

func init() {
	for conf, cmd := range map[*config.FetchConfig]*cobra.Command{
		&ratesConfig: ratesCmd,
		&gasConfig:   gasCmd,
		&pairsConfig: pairsCmd,
	} {
		config.SetupLogFlags(&conf.Log, cmd)
		config.SetupProviderFlags(&conf.Providers, cmd)
		config.SetupFetchSpecificFlags(conf, cmd)
		rootCmd.AddCommand(cmd)
	}
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch exchange rates once and print them.",
	Long: `Queries Band Protocol and CoinGecko once and prints the normalized exchange rates as JSON.
	Pass --currency to print lookups for specific bridge currencies instead of the whole list.`,
	PreRunE: setupFetch(&ratesConfig),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(nil)
		if err != nil {
			return err
		}

		client := newProviderClient(ratesConfig.Providers)
		market := service.NewMarket(registry, nil, client, client, client, nil)

		snapshot, err := market.Refresh(cmd.Context())
		if err != nil {
			config.Log.Warn("Some providers failed, printing partial rates", err)
		}

		if len(ratesConfig.Base.Currencies) == 0 {
			return printJSON(snapshot.ExchangeRates)
		}

		lookups := make([]model.RateLookup, 0, len(ratesConfig.Base.Currencies))
		for _, currency := range ratesConfig.Base.Currencies {
			base := strings.ToUpper(currency)
			quote := strings.ToUpper(ratesConfig.Base.Quote)
			rate, found := registry.LookupExchangeRate(snapshot.ExchangeRates, base, quote)
			lookups = append(lookups, model.RateLookup{Pair: marketdata.Pair(base, quote), Found: found, Rate: rate.String()})
		}
		return printJSON(lookups)
	},
}

var gasCmd = &cobra.Command{
	Use:   "gas",
	Short: "Fetch gas prices once and print them.",
	Long: `Assembles the gas price list from the configured gas policy and prints it as JSON. Chains whose
	oracle is unreachable report their fallback price.`,
	PreRunE: setupFetch(&gasConfig),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := loadGasPolicy()
		if err != nil {
			return err
		}

		prices := marketdata.FetchGasPrices(cmd.Context(), newProviderClient(gasConfig.Providers), policy)

		if len(gasConfig.Base.Chains) == 0 {
			return printJSON(prices)
		}

		lookups := make([]model.GasLookup, 0, len(gasConfig.Base.Chains))
		for _, chain := range gasConfig.Base.Chains {
			price, found := marketdata.LookupGasPrice(prices, chain)
			lookups = append(lookups, model.GasLookup{Chain: chain, Found: found, Standard: price.String()})
		}
		return printJSON(lookups)
	},
}

var pairsCmd = &cobra.Command{
	Use:     "pairs",
	Short:   "Print the provider symbols requested for the currency table.",
	PreRunE: setupFetch(&pairsConfig),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(nil)
		if err != nil {
			return err
		}

		return printJSON(map[string][]string{
			"bandchain_pairs":   registry.ReferencePairs(),
			"coingecko_symbols": registry.CoingeckoSymbols(),
		})
	},
}

func setupFetch(conf *config.FetchConfig) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd, viperConf)

		err := conf.Validate()
		if err != nil {
			return err
		}

		ignoredKeys := config.CheckSuperfluousFetchKeys(viperConf.AllKeys())

		if len(ignoredKeys) > 0 {
			config.Log.Warnf("Warning, the following invalid keys will be ignored: %v", ignoredKeys)
		}

		setupLogger(conf.Log.Level, conf.Log.Path, conf.Log.Pretty)

		return nil
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
