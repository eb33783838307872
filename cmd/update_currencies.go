package cmd

import (
	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/DefiantLabs/bridge-market-data/tasks"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	updateCurrenciesConfig       config.UpdateCurrenciesConfig
	updateCurrenciesDbConnection *gorm.DB
)

func init() {
	config.SetupLogFlags(&updateCurrenciesConfig.Log, updateCurrenciesCmd)
	config.SetupDatabaseFlags(&updateCurrenciesConfig.Database, updateCurrenciesCmd)
	config.SetupUpdateCurrenciesSpecificFlags(&updateCurrenciesConfig, updateCurrenciesCmd)
	rootCmd.AddCommand(updateCurrenciesCmd)
}

var updateCurrenciesCmd = &cobra.Command{
	Use:   "update-currencies",
	Short: "Store the bridge currency table in the database.",
	Long: `Validates the currency table and upserts it into the database so that serve can run with
	base.currency-source = "db". The table is read from the [[currencies]] section of the config file
	(or the built-in defaults), or downloaded from base.currency-list-url when it is set.
	`,
	PreRunE: setupUpdateCurrencies,
	RunE:    updateCurrencies,
}

func setupUpdateCurrencies(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)

	err := updateCurrenciesConfig.Validate()
	if err != nil {
		return err
	}

	ignoredKeys := config.CheckSuperfluousUpdateCurrenciesKeys(viperConf.AllKeys())

	if len(ignoredKeys) > 0 {
		config.Log.Warnf("Warning, the following invalid keys will be ignored: %v", ignoredKeys)
	}

	setupLogger(updateCurrenciesConfig.Log.Level, updateCurrenciesConfig.Log.Path, updateCurrenciesConfig.Log.Pretty)

	db, err := connectToDBAndMigrate(updateCurrenciesConfig.Database)
	if err != nil {
		config.Log.Fatal("Could not establish connection to the database", err)
	}

	updateCurrenciesDbConnection = db

	return nil
}

func updateCurrencies(cmd *cobra.Command, args []string) error {
	cfg := updateCurrenciesConfig

	var currencies []config.Currency
	if cfg.Base.CurrencyListURL == "" {
		var err error
		currencies, err = config.LoadCurrencies(viperConf)
		if err != nil {
			return err
		}
	}

	err := tasks.UpsertCurrencies(cmd.Context(), updateCurrenciesDbConnection, currencies, cfg.Base.CurrencyListURL,
		cfg.Base.RequestRetryAttempts, cfg.Base.RequestRetryMaxWait)
	if err != nil {
		return err
	}

	config.Log.Info("Done")
	return nil
}
