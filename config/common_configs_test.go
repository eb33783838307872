package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func readTOML(suite *ConfigTestSuite, content string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	suite.Require().NoError(v.ReadConfig(strings.NewReader(content)))
	return v
}

func (suite *ConfigTestSuite) TestValidateDatabaseConf() {
	conf := Database{
		Host:     "",
		Port:     "",
		Database: "",
		User:     "",
		Password: "",
	}

	err := validateDatabaseConf(conf)
	suite.Require().Error(err)
	conf.Host = "fake-host"

	err = validateDatabaseConf(conf)
	suite.Require().Error(err)

	conf.Port = "5432"
	err = validateDatabaseConf(conf)
	suite.Require().Error(err)

	conf.Database = "fake-database"
	err = validateDatabaseConf(conf)
	suite.Require().Error(err)

	conf.User = "fake-user"
	err = validateDatabaseConf(conf)
	suite.Require().Error(err)

	conf.Password = "fake-password"
	err = validateDatabaseConf(conf)
	suite.Require().NoError(err)
}

func (suite *ConfigTestSuite) TestValidateProvidersConf() {
	conf := Providers{
		BandchainHost: DefaultBandchainHost + "/",
		CoingeckoHost: DefaultCoingeckoHost,
		Timeout:       0,
	}

	_, err := validateProvidersConf(conf)
	suite.Require().Error(err)

	conf.Timeout = 10
	validConf, err := validateProvidersConf(conf)
	suite.Require().NoError(err)
	suite.Equal(DefaultBandchainHost, validConf.BandchainHost)

	conf.CoingeckoHost = ""
	_, err = validateProvidersConf(conf)
	suite.Require().Error(err)

	conf.CoingeckoHost = "api.coingecko.com"
	_, err = validateProvidersConf(conf)
	suite.Require().Error(err)
}

func (suite *ConfigTestSuite) TestValidateRedisConf() {
	suite.Require().NoError(validateRedisConf(RedisConf{}))
	suite.Require().Error(validateRedisConf(RedisConf{RedisAddr: "localhost:6379"}))
	suite.Require().NoError(validateRedisConf(RedisConf{RedisAddr: "localhost:6379", TTL: 600}))
}

func (suite *ConfigTestSuite) TestServeConfigValidate() {
	conf := ServeConfig{
		Server:    Server{Port: 9002},
		Providers: Providers{BandchainHost: DefaultBandchainHost, CoingeckoHost: DefaultCoingeckoHost, Timeout: 10},
		Base:      serveBase{RefreshInterval: 60, CurrencySource: CurrencySourceConfig, AllowedOrigins: "*"},
	}
	suite.Require().NoError(conf.Validate())
	suite.False(conf.UsesDatabase())

	conf.Base.CurrencySource = CurrencySourceDB
	suite.Require().Error(conf.Validate())

	conf.Database = Database{Host: "localhost", Port: "5432", Database: "bridge", User: "bridge", Password: "bridge"}
	suite.Require().NoError(conf.Validate())
	suite.True(conf.UsesDatabase())

	conf.Base.CurrencySource = "file"
	suite.Require().Error(conf.Validate())

	conf.Base.CurrencySource = CurrencySourceConfig
	conf.Base.RefreshInterval = 0
	suite.Require().Error(conf.Validate())
}

func (suite *ConfigTestSuite) TestFetchConfigValidate() {
	conf := FetchConfig{
		Providers: Providers{BandchainHost: DefaultBandchainHost, CoingeckoHost: DefaultCoingeckoHost, Timeout: 10},
		Base:      fetchBase{Currencies: []string{"BTC", "RENBTC"}},
	}
	suite.Require().NoError(conf.Validate())
	suite.Equal("USD", conf.Base.Quote)

	conf.Base.Currencies = []string{"BTC/USD"}
	suite.Require().Error(conf.Validate())
}

func (suite *ConfigTestSuite) TestUpdateCurrenciesConfigValidate() {
	conf := UpdateCurrenciesConfig{
		Database: Database{Host: "localhost", Port: "5432", Database: "bridge", User: "bridge", Password: "bridge"},
	}
	suite.Require().NoError(conf.Validate())

	conf.Base.CurrencyListURL = "not a url"
	suite.Require().Error(conf.Validate())

	conf.Base.CurrencyListURL = "https://example.com/currencies.json"
	suite.Require().NoError(conf.Validate())
}

func (suite *ConfigTestSuite) TestCheckSuperfluousServeKeys() {
	v := readTOML(suite, `
[log]
level = "debug"

[redis]
addr = "localhost:6379"

[base]
refresh-interval = 30
start-block = 1

[[currencies]]
symbol = "BTC"
`)

	ignored := CheckSuperfluousServeKeys(v.AllKeys())
	suite.Equal([]string{"base.start-block"}, ignored)

	ignored = CheckSuperfluousFetchKeys(v.AllKeys())
	suite.ElementsMatch([]string{"redis.addr", "base.refresh-interval", "base.start-block"}, ignored)
}

func (suite *ConfigTestSuite) TestCheckSuperfluousUpdateCurrenciesKeys() {
	ignored := CheckSuperfluousUpdateCurrenciesKeys([]string{"base.request-retry-attempts", "base.currency-list-url", "database.host", "server.port"})
	suite.Equal([]string{"server.port"}, ignored)
}

func (suite *ConfigTestSuite) TestLoadTablesDefaults() {
	currencies, err := LoadCurrencies(viper.New())
	suite.Require().NoError(err)
	suite.Equal(DefaultCurrencies(), currencies)

	chains, err := LoadGasPolicy(nil)
	suite.Require().NoError(err)
	suite.Equal(DefaultGasPolicy(), chains)
}

func (suite *ConfigTestSuite) TestLoadTablesFromConfig() {
	v := readTOML(suite, `
[[currencies]]
symbol = "BTC"
coingecko-symbol = "bitcoin"

[[currencies]]
symbol = "RENBTC"
bandchain-symbol = "BTC"

[[currencies]]
symbol = "AVAX"
coingecko-symbol = "avalanche-2"
bandchain-unsupported = true

[[gas]]
chain = "ethc"
endpoint = "https://gas.example/eth"
standard = 50
floor = 20
floor-substitute = 50

[[gas]]
chain = "arbitrumc"
standard = 0.4
`)

	currencies, err := LoadCurrencies(v)
	suite.Require().NoError(err)
	suite.Equal([]Currency{
		{Symbol: "BTC", CoingeckoSymbol: "bitcoin"},
		{Symbol: "RENBTC", BandchainSymbol: "BTC"},
		{Symbol: "AVAX", CoingeckoSymbol: "avalanche-2", BandchainUnsupported: true},
	}, currencies)

	chains, err := LoadGasPolicy(v)
	suite.Require().NoError(err)
	suite.Equal([]GasChain{
		{Chain: "ethc", Endpoint: "https://gas.example/eth", Standard: "50", Floor: "20", FloorSubstitute: "50"},
		{Chain: "arbitrumc", Standard: "0.4"},
	}, chains)
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
