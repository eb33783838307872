package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	CurrencySourceConfig = "config"
	CurrencySourceDB     = "db"
)

type ServeConfig struct {
	Database  Database
	Redis     RedisConf
	Server    Server
	Providers Providers
	Log       log
	Base      serveBase
}

type serveBase struct {
	RefreshInterval int64  `mapstructure:"refresh-interval"`
	CurrencySource  string `mapstructure:"currency-source"`
	AllowedOrigins  string `mapstructure:"allowed-origins"`
}

func SetupServeSpecificFlags(conf *ServeConfig, cmd *cobra.Command) {
	cmd.PersistentFlags().Int64Var(&conf.Base.RefreshInterval, "base.refresh-interval", 60, "seconds between market data refreshes")
	cmd.PersistentFlags().StringVar(&conf.Base.CurrencySource, "base.currency-source", CurrencySourceConfig, "where the currency table is read from (config or db)")
	cmd.PersistentFlags().StringVar(&conf.Base.AllowedOrigins, "base.allowed-origins", "*", "comma separated list of CORS origins")
}

// UsesDatabase reports whether the currency table has to be read from postgres.
func (conf *ServeConfig) UsesDatabase() bool {
	return conf.Base.CurrencySource == CurrencySourceDB
}

func (conf *ServeConfig) Validate() error {
	if conf.Base.RefreshInterval <= 0 {
		return errors.New("refresh interval must be a positive number of seconds")
	}

	switch conf.Base.CurrencySource {
	case CurrencySourceConfig:
	case CurrencySourceDB:
		if err := validateDatabaseConf(conf.Database); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid currency source %q, valid sources are %s and %s", conf.Base.CurrencySource, CurrencySourceConfig, CurrencySourceDB)
	}

	if conf.Server.Port <= 0 || conf.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", conf.Server.Port)
	}

	if err := validateRedisConf(conf.Redis); err != nil {
		return err
	}

	providers, err := validateProvidersConf(conf.Providers)
	if err != nil {
		return err
	}
	conf.Providers = providers

	return nil
}

func CheckSuperfluousServeKeys(keys []string) []string {
	validKeys := make(map[string]struct{})

	addDatabaseConfigKeys(validKeys)
	addLogConfigKeys(validKeys)
	addProviderConfigKeys(validKeys)
	addServerConfigKeys(validKeys)
	addRedisConfigKeys(validKeys)
	addTableConfigKeys(validKeys)

	for _, key := range getValidConfigKeys(serveBase{}, "base") {
		validKeys[key] = struct{}{}
	}

	return ignoredConfigKeys(keys, validKeys)
}
