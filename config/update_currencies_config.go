package config

import (
	"fmt"
	"net/url"

	"github.com/DefiantLabs/bridge-market-data/util"
	"github.com/spf13/cobra"
)

type UpdateCurrenciesConfig struct {
	Database Database
	Log      log
	Base     updateCurrenciesBase
}

type updateCurrenciesBase struct {
	retryBase
	CurrencyListURL string `mapstructure:"currency-list-url"`
}

func SetupUpdateCurrenciesSpecificFlags(conf *UpdateCurrenciesConfig, cmd *cobra.Command) {
	cmd.Flags().StringVar(&conf.Base.CurrencyListURL, "base.currency-list-url", "", "If provided, the currency table is downloaded from this URL instead of being read from the config file.")
	cmd.PersistentFlags().Int64Var(&conf.Base.RequestRetryAttempts, "base.request-retry-attempts", 0, "number of download retries to make")
	cmd.PersistentFlags().Uint64Var(&conf.Base.RequestRetryMaxWait, "base.request-retry-max-wait", 30, "max retry incremental backoff wait time in seconds")
}

func (conf *UpdateCurrenciesConfig) Validate() error {
	err := validateDatabaseConf(conf.Database)
	if err != nil {
		return err
	}

	if !util.StrNotSet(conf.Base.CurrencyListURL) {
		u, err := url.Parse(conf.Base.CurrencyListURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid currency list url %q", conf.Base.CurrencyListURL)
		}
	}

	return nil
}

func CheckSuperfluousUpdateCurrenciesKeys(keys []string) []string {
	validKeys := make(map[string]struct{})

	addDatabaseConfigKeys(validKeys)
	addLogConfigKeys(validKeys)
	addTableConfigKeys(validKeys)

	// add base keys
	for _, key := range getValidConfigKeys(updateCurrenciesBase{}, "base") {
		validKeys[key] = struct{}{}
	}

	for _, key := range getValidConfigKeys(retryBase{}, "base") {
		validKeys[key] = struct{}{}
	}

	return ignoredConfigKeys(keys, validKeys)
}
