package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/DefiantLabs/bridge-market-data/util"
	"github.com/spf13/cobra"
)

// These configs are used across multiple commands, and are not specific to a single command
type log struct {
	Level  string
	Path   string
	Pretty bool
}

type Database struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string `mapstructure:"log-level"`
}

type Server struct {
	Port int
}

type RedisConf struct {
	RedisAddr string `mapstructure:"addr"`
	RedisPsw  string `mapstructure:"psw"`
	TTL       int64  `mapstructure:"ttl"`
}

// Providers holds the upstream market data endpoints.
type Providers struct {
	BandchainHost string `mapstructure:"bandchain-host"`
	CoingeckoHost string `mapstructure:"coingecko-host"`
	Timeout       int64  `mapstructure:"timeout"`
}

type retryBase struct {
	RequestRetryAttempts int64  `mapstructure:"request-retry-attempts"`
	RequestRetryMaxWait  uint64 `mapstructure:"request-retry-max-wait"`
}

const (
	DefaultBandchainHost = "https://laozi1.bandchain.org/api"
	DefaultCoingeckoHost = "https://api.coingecko.com/api/v3"
)

func SetupLogFlags(logConf *log, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logConf.Level, "log.level", "info", "log level")
	cmd.PersistentFlags().BoolVar(&logConf.Pretty, "log.pretty", false, "pretty logs")
	cmd.PersistentFlags().StringVar(&logConf.Path, "log.path", "", "log path (default is stdout only)")
}

func SetupDatabaseFlags(databaseConf *Database, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&databaseConf.Host, "database.host", "", "database host")
	cmd.PersistentFlags().StringVar(&databaseConf.Port, "database.port", "5432", "database port")
	cmd.PersistentFlags().StringVar(&databaseConf.Database, "database.database", "", "database name")
	cmd.PersistentFlags().StringVar(&databaseConf.User, "database.user", "", "database user")
	cmd.PersistentFlags().StringVar(&databaseConf.Password, "database.password", "", "database password")
	cmd.PersistentFlags().StringVar(&databaseConf.LogLevel, "database.log-level", "", "database loglevel")
}

func SetupServerFlags(serverConf *Server, cmd *cobra.Command) {
	cmd.PersistentFlags().IntVar(&serverConf.Port, "server.port", 9002, "inbound http port")
}

func SetupRedisFlags(redisConf *RedisConf, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&redisConf.RedisAddr, "redis.addr", "", "redis address, leave empty to keep snapshots in memory only")
	cmd.PersistentFlags().StringVar(&redisConf.RedisPsw, "redis.psw", "", "redis password")
	cmd.PersistentFlags().Int64Var(&redisConf.TTL, "redis.ttl", 600, "seconds a cached market snapshot stays valid")
}

func SetupProviderFlags(providerConf *Providers, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&providerConf.BandchainHost, "providers.bandchain-host", DefaultBandchainHost, "Band Protocol REST endpoint")
	cmd.PersistentFlags().StringVar(&providerConf.CoingeckoHost, "providers.coingecko-host", DefaultCoingeckoHost, "CoinGecko API endpoint")
	cmd.PersistentFlags().Int64Var(&providerConf.Timeout, "providers.timeout", 10, "per request timeout in seconds")
}

func validateDatabaseConf(dbConf Database) error {
	if util.StrNotSet(dbConf.Host) {
		return errors.New("database host must be set")
	}
	if util.StrNotSet(dbConf.Port) {
		return errors.New("database port must be set")
	}
	if util.StrNotSet(dbConf.Database) {
		return errors.New("database name (i.e. database) must be set")
	}
	if util.StrNotSet(dbConf.User) {
		return errors.New("database user must be set")
	}
	if util.StrNotSet(dbConf.Password) {
		return errors.New("database password must be set")
	}

	return nil
}

func validateProvidersConf(providerConf Providers) (Providers, error) {
	if providerConf.Timeout <= 0 {
		return providerConf, errors.New("providers timeout must be a positive number of seconds")
	}

	hosts := map[string]*string{
		"bandchain-host": &providerConf.BandchainHost,
		"coingecko-host": &providerConf.CoingeckoHost,
	}
	for name, host := range hosts {
		if util.StrNotSet(*host) {
			return providerConf, fmt.Errorf("providers %s must be set", name)
		}
		u, err := url.Parse(*host)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return providerConf, fmt.Errorf("providers %s must be an http(s) url, got %q", name, *host)
		}
		*host = strings.TrimSuffix(*host, "/")
	}

	return providerConf, nil
}

func validateRedisConf(redisConf RedisConf) error {
	if !util.StrNotSet(redisConf.RedisAddr) && redisConf.TTL <= 0 {
		return errors.New("redis ttl must be a positive number of seconds")
	}
	return nil
}

// Reads the Viper mapstructure tag to get the valid keys for a given config struct
func getValidConfigKeys(section any, baseName string) (keys []string) {
	v := reflect.ValueOf(section)
	typeOfS := v.Type()

	if baseName == "" {
		baseName = strings.ToLower(typeOfS.Name())
	}

	for i := 0; i < v.NumField(); i++ {
		field := typeOfS.Field(i)

		// embedded bases contribute their own keys through a separate call
		if field.Anonymous {
			continue
		}

		name := field.Tag.Get("mapstructure")
		if name == "" {
			name = field.Name
		}

		key := fmt.Sprintf("%v.%v", baseName, strings.ReplaceAll(strings.ToLower(name), " ", ""))
		keys = append(keys, key)
	}
	return
}

func addDatabaseConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(Database{}, "") {
		validKeys[key] = struct{}{}
	}
}

func addLogConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(log{}, "") {
		validKeys[key] = struct{}{}
	}
}

func addProviderConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(Providers{}, "") {
		validKeys[key] = struct{}{}
	}
}

func addServerConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(Server{}, "") {
		validKeys[key] = struct{}{}
	}
}

func addRedisConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(RedisConf{}, "redis") {
		validKeys[key] = struct{}{}
	}
}

// The currency table and gas policy are arrays of tables, viper reports them as a single key.
func addTableConfigKeys(validKeys map[string]struct{}) {
	validKeys[currenciesKey] = struct{}{}
	validKeys[gasPolicyKey] = struct{}{}
}

func ignoredConfigKeys(keys []string, validKeys map[string]struct{}) []string {
	ignoredKeys := make([]string, 0)
	for _, key := range keys {
		if _, ok := validKeys[key]; !ok {
			ignoredKeys = append(ignoredKeys, key)
		}
	}
	return ignoredKeys
}
