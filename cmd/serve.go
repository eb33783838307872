package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DefiantLabs/bridge-market-data/config"
	dbTypes "github.com/DefiantLabs/bridge-market-data/db"
	"github.com/DefiantLabs/bridge-market-data/pkg/consumer"
	"github.com/DefiantLabs/bridge-market-data/pkg/repository"
	"github.com/DefiantLabs/bridge-market-data/pkg/server"
	"github.com/DefiantLabs/bridge-market-data/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	serveConfig       config.ServeConfig
	serveDbConnection *gorm.DB
)

func init() {
	config.SetupLogFlags(&serveConfig.Log, serveCmd)
	config.SetupDatabaseFlags(&serveConfig.Database, serveCmd)
	config.SetupRedisFlags(&serveConfig.Redis, serveCmd)
	config.SetupServerFlags(&serveConfig.Server, serveCmd)
	config.SetupProviderFlags(&serveConfig.Providers, serveCmd)
	config.SetupServeSpecificFlags(&serveConfig, serveCmd)
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh market data on an interval and serve it over HTTP.",
	Long: `Starts the market data service. Exchange rates and gas prices are refreshed every
	base.refresh-interval seconds and served as JSON to the bridge UI. When redis.addr is set the latest
	snapshot is cached in redis and published on the pub/market channel.`,
	PreRunE: setupServe,
	RunE:    serve,
}

func setupServe(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)

	err := serveConfig.Validate()
	if err != nil {
		return err
	}

	ignoredKeys := config.CheckSuperfluousServeKeys(viperConf.AllKeys())

	if len(ignoredKeys) > 0 {
		config.Log.Warnf("Warning, the following invalid keys will be ignored: %v", ignoredKeys)
	}

	setupLogger(serveConfig.Log.Level, serveConfig.Log.Path, serveConfig.Log.Pretty)

	if serveConfig.UsesDatabase() {
		db, err := connectToDBAndMigrate(serveConfig.Database)
		if err != nil {
			config.Log.Fatal("Could not establish connection to the database", err)
		}
		serveDbConnection = db
	}

	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg := serveConfig

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var currencies []config.Currency
	if cfg.UsesDatabase() {
		var err error
		currencies, err = dbTypes.GetCurrencies(serveDbConnection)
		if err != nil {
			return fmt.Errorf("error reading currency table from the database: %w", err)
		}
		config.Log.Infof("Loaded %d currencies from the database", len(currencies))
	}

	registry, err := loadRegistry(currencies)
	if err != nil {
		return err
	}

	policy, err := loadGasPolicy()
	if err != nil {
		return err
	}

	client := newProviderClient(cfg.Providers)

	var cache repository.SnapshotCache
	if cfg.Redis.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.RedisAddr,
			Password: cfg.Redis.RedisPsw,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("error connecting to redis at %s: %w", cfg.Redis.RedisAddr, err)
		}
		cache = repository.NewCache(rdb, time.Duration(cfg.Redis.TTL)*time.Second)
	}

	market := service.NewMarket(registry, policy, client, client, client, cache)
	if err := market.Warm(ctx); err != nil {
		config.Log.Warn("Could not load cached market snapshot", err)
	}

	if !strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.NewRouter(server.NewMarketServer(market), splitOrigins(cfg.Base.AllowedOrigins)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.NewRefresher(market, time.Duration(cfg.Base.RefreshInterval)*time.Second).Run(gCtx)
	})

	g.Go(func() error {
		config.Log.Infof("Serving market data on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	config.Log.Info("Market data service stopped")
	return err
}

func splitOrigins(origins string) []string {
	var out []string
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
