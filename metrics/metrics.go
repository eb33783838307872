package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderFailuresTotal counts failed upstream requests (bandchain, coingecko, gas oracles).
	ProviderFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_provider_failures_total",
			Help: "Failed requests to market data providers",
		},
		[]string{"provider"},
	)

	// GasFallbacksTotal counts gas prices replaced by the configured fallback.
	GasFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_gas_fallbacks_total",
			Help: "Gas prices served from the fallback value after an oracle failure",
		},
		[]string{"chain"},
	)

	GasFloorSubstitutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_gas_floor_substitutions_total",
			Help: "Fetched gas prices below the chain floor that were substituted",
		},
		[]string{"chain"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "market_data_refresh_duration_seconds",
			Help:    "Time spent refreshing the market snapshot",
			Buckets: prometheus.DefBuckets,
		},
	)

	LastRefreshTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_data_last_refresh_timestamp_seconds",
			Help: "Unix time of the last completed refresh",
		},
	)
)

func ProviderFailed(provider string) {
	ProviderFailuresTotal.WithLabelValues(provider).Inc()
}

func GasFallbackUsed(chain string) {
	GasFallbacksTotal.WithLabelValues(chain).Inc()
}

func GasFloorSubstituted(chain string) {
	GasFloorSubstitutionsTotal.WithLabelValues(chain).Inc()
}
