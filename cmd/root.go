package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/DefiantLabs/bridge-market-data/db"
	"github.com/DefiantLabs/bridge-market-data/marketdata"
	"github.com/DefiantLabs/bridge-market-data/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	cfgFile string // config file location to load
	rootCmd = &cobra.Command{
		Use:   "bridge-market-data",
		Short: "A CLI tool for serving bridge exchange rates and gas prices",
		Long: `bridge-market-data fetches reference rates from Band Protocol and market prices from CoinGecko,
		maps them onto the bridge currency identifiers and assembles per-chain gas prices for the bridge UI.`,
	}
	viperConf = viper.New()
)

func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(getViperConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file location (default is <CWD>/config.toml)")
}

func getViperConfig() {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("toml")
	} else {
		// Check in current working dir
		pwd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Could not determine current working dir. Err: %v", err)
		}
		if _, err := os.Stat(fmt.Sprintf("%v/config.toml", pwd)); err == nil {
			cfgFile = pwd
		} else {
			// file not in current working dir. Check home dir instead
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatalf("Failed to find user home dir. Err: %v", err)
			}
			cfgFile = fmt.Sprintf("%s/.bridge-market-data", home)
		}
		v.AddConfigPath(cfgFile)
		v.SetConfigType("toml")
		v.SetConfigName("config")
	}

	var noConfig bool
	err := v.ReadInConfig()
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "Config File \"config\" Not Found"):
			noConfig = true
		case strings.Contains(err.Error(), "incomplete number"):
			log.Fatalf("Failed to read config file %v. This usually means you forgot to wrap a string in quotes.", err)
		default:
			log.Fatalf("Failed to read config file. Err: %v", err)
		}
	}

	if !noConfig {
		log.Println("CFG successfully read from: ", cfgFile)
	}

	viperConf = v
}

// Set config vars from config file not already specified on command line.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		configName := f.Name

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(configName) {
			val := v.Get(configName)
			err := cmd.Flags().Set(f.Name, flagValue(val))
			if err != nil {
				log.Fatalf("Failed to bind config file value %v. Err: %v", configName, err)
			}
		}
	})
}

// TOML arrays arrive as []interface{}; slice flags expect them comma separated.
func flagValue(val interface{}) string {
	if list, ok := val.([]interface{}); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("%v", val)
}

func setupLogger(logLevel string, logPath string, prettyLogging bool) {
	config.DoConfigureLogger(logPath, logLevel, prettyLogging)
}

func connectToDBAndMigrate(dbConfig config.Database) (*gorm.DB, error) {
	database, err := db.PostgresDbConnect(dbConfig.Host, dbConfig.Port, dbConfig.Database, dbConfig.User, dbConfig.Password, strings.ToLower(dbConfig.LogLevel))
	if err != nil {
		config.Log.Fatal("Could not establish connection to the database", err)
	}

	sqldb, _ := database.DB()
	sqldb.SetMaxIdleConns(10)
	sqldb.SetMaxOpenConns(100)
	sqldb.SetConnMaxLifetime(time.Hour)

	err = db.MigrateModels(database)
	if err != nil {
		config.Log.Error("Error running DB migrations", err)
	}

	return database, err
}

// loadRegistry builds the currency registry from the given table, or from the config file when
// currencies is nil.
func loadRegistry(currencies []config.Currency) (*marketdata.Registry, error) {
	if currencies == nil {
		var err error
		currencies, err = config.LoadCurrencies(viperConf)
		if err != nil {
			return nil, err
		}
	}

	registry, err := marketdata.NewRegistry(currencies)
	if err != nil {
		return nil, fmt.Errorf("invalid currency table: %w", err)
	}
	return registry, nil
}

func loadGasPolicy() (marketdata.GasPolicy, error) {
	chains, err := config.LoadGasPolicy(viperConf)
	if err != nil {
		return nil, err
	}

	policy, err := marketdata.NewGasPolicy(chains)
	if err != nil {
		return nil, fmt.Errorf("invalid gas policy: %w", err)
	}
	return policy, nil
}

func newProviderClient(providers config.Providers) *rest.Client {
	return rest.NewClient(time.Duration(providers.Timeout)*time.Second, providers.BandchainHost, providers.CoingeckoHost)
}
