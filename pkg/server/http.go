// Package server exposes the market service over HTTP.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/DefiantLabs/bridge-market-data/marketdata"
	"github.com/DefiantLabs/bridge-market-data/pkg/model"
	"github.com/DefiantLabs/bridge-market-data/pkg/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MarketServer struct {
	srv service.Market
}

func NewMarketServer(srv service.Market) *MarketServer {
	return &MarketServer{srv: srv}
}

// NewRouter builds the gin engine. allowedOrigins may hold "*" to accept any origin.
func NewRouter(s *MarketServer, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ZeroLogMiddleware())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	r.GET("/healthcheck", Healthcheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/pairs", s.Pairs)
	r.GET("/rates", s.ExchangeRates)
	r.GET("/rates/:base", s.ExchangeRate)
	r.GET("/gas", s.GasPrices)
	r.GET("/gas/:chain", s.GasPrice)

	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	conf := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Cache-Control", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			conf.AllowAllOrigins = true
			return conf
		}
	}
	if len(allowedOrigins) == 0 {
		conf.AllowAllOrigins = true
		return conf
	}

	conf.AllowOrigins = allowedOrigins
	conf.AllowCredentials = true
	return conf
}

func Healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *MarketServer) Pairs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pairs": s.srv.Pairs()})
}

func (s *MarketServer) ExchangeRates(c *gin.Context) {
	snapshot := s.srv.Snapshot()
	rates := snapshot.ExchangeRates
	if rates == nil {
		rates = []marketdata.ExchangeRate{}
	}
	c.JSON(http.StatusOK, gin.H{"exchange_rates": rates, "updated_at": snapshot.UpdatedAt})
}

// ExchangeRate answers a single lookup. A missing rate is reported with found=false and a zero
// rate rather than an error status.
func (s *MarketServer) ExchangeRate(c *gin.Context) {
	base := strings.ToUpper(c.Param("base"))
	quote := strings.ToUpper(c.DefaultQuery("quote", marketdata.USD))

	rate, found := s.srv.ExchangeRate(base, quote)
	c.JSON(http.StatusOK, model.RateLookup{
		Pair:  marketdata.Pair(base, quote),
		Found: found,
		Rate:  rate.String(),
	})
}

func (s *MarketServer) GasPrices(c *gin.Context) {
	snapshot := s.srv.Snapshot()
	prices := snapshot.GasPrices
	if prices == nil {
		prices = []marketdata.GasPrice{}
	}
	c.JSON(http.StatusOK, gin.H{"gas_prices": prices, "updated_at": snapshot.UpdatedAt})
}

func (s *MarketServer) GasPrice(c *gin.Context) {
	chain := c.Param("chain")

	price, found := s.srv.GasPrice(chain)
	c.JSON(http.StatusOK, model.GasLookup{
		Chain:    chain,
		Found:    found,
		Standard: price.String(),
	})
}

func GetClientIP(c *gin.Context) string {
	// first check the X-Forwarded-For header
	requester := c.Request.Header.Get("X-Forwarded-For")
	if len(requester) == 0 {
		requester = c.Request.Header.Get("X-Real-IP")
	}
	if len(requester) == 0 {
		requester = c.Request.RemoteAddr
	}

	// proxies append to the list, the first entry is the client
	if strings.Contains(requester, ",") {
		requester = strings.TrimSpace(strings.Split(requester, ",")[0])
	}

	return requester
}

// ZeroLogMiddleware sends gin logs to our zerologger
func ZeroLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := fmt.Sprint(time.Since(start).Milliseconds())

		event := config.Log.ZInfo().
			Str("client_ip", GetClientIP(c)).
			Str("duration", duration).
			Str("method", c.Request.Method).
			Str("path", c.Request.RequestURI).
			Str("status", fmt.Sprint(c.Writer.Status())).
			Str("referrer", c.Request.Referer())

		if last := c.Errors.Last(); c.Writer.Status() >= 500 && last != nil {
			event.Err(last)
		}

		event.Send()
	}
}
