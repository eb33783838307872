package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DefiantLabs/bridge-market-data/marketdata"
	"github.com/DefiantLabs/bridge-market-data/metrics"
	"github.com/DefiantLabs/bridge-market-data/pkg/model"
	"github.com/DefiantLabs/bridge-market-data/pkg/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	providerBandchain = "bandchain"
	providerCoingecko = "coingecko"
)

type ReferenceRateProvider interface {
	GetBandReferenceData(ctx context.Context, pairs []string) ([]marketdata.BandchainReferenceData, error)
}

type MarketPriceProvider interface {
	GetCoingeckoMarkets(ctx context.Context, ids []string) ([]marketdata.CoingeckoReferenceData, error)
}

type Market interface {
	Refresh(ctx context.Context) (*model.MarketSnapshot, error)
	Warm(ctx context.Context) error
	Snapshot() *model.MarketSnapshot
	Pairs() []string
	ExchangeRate(base, quote string) (decimal.Decimal, bool)
	GasPrice(chain string) (decimal.Decimal, bool)
}

type market struct {
	registry  *marketdata.Registry
	policy    marketdata.GasPolicy
	bandchain ReferenceRateProvider
	coingecko MarketPriceProvider
	oracle    marketdata.GasOracle
	cache     repository.SnapshotCache
	now       func() time.Time

	mu             sync.RWMutex
	bandchainRates []marketdata.ExchangeRate
	coingeckoRates []marketdata.ExchangeRate
	snapshot       *model.MarketSnapshot
}

// NewMarket wires the providers into a market service. cache may be nil.
func NewMarket(registry *marketdata.Registry, policy marketdata.GasPolicy, bandchain ReferenceRateProvider,
	coingecko MarketPriceProvider, oracle marketdata.GasOracle, cache repository.SnapshotCache,
) *market {
	return &market{
		registry:  registry,
		policy:    policy,
		bandchain: bandchain,
		coingecko: coingecko,
		oracle:    oracle,
		cache:     cache,
		now:       time.Now,
		snapshot:  &model.MarketSnapshot{},
	}
}

// Refresh queries both rate providers and the gas oracles and replaces the snapshot. A provider
// that fails keeps its rates from the previous refresh; the returned error lists those failures
// while the snapshot is still updated.
func (s *market) Refresh(ctx context.Context) (*model.MarketSnapshot, error) {
	start := s.now()
	var errs []error

	bandchainRates, err := s.fetchBandchainRates(ctx)
	if err != nil {
		metrics.ProviderFailed(providerBandchain)
		log.Err(err).Msg("Error refreshing bandchain rates, keeping previous values")
		errs = append(errs, err)
	}

	coingeckoRates, err := s.fetchCoingeckoRates(ctx)
	if err != nil {
		metrics.ProviderFailed(providerCoingecko)
		log.Err(err).Msg("Error refreshing coingecko rates, keeping previous values")
		errs = append(errs, err)
	}

	gasPrices := marketdata.FetchGasPrices(ctx, s.oracle, s.policy)

	s.mu.Lock()
	if bandchainRates != nil {
		s.bandchainRates = bandchainRates
	}
	if coingeckoRates != nil {
		s.coingeckoRates = coingeckoRates
	}
	rates := make([]marketdata.ExchangeRate, 0, len(s.bandchainRates)+len(s.coingeckoRates))
	rates = append(rates, s.bandchainRates...)
	rates = append(rates, s.coingeckoRates...)
	snapshot := &model.MarketSnapshot{
		ExchangeRates:  rates,
		BandchainRates: s.bandchainRates,
		CoingeckoRates: s.coingeckoRates,
		GasPrices:      gasPrices,
		UpdatedAt:      s.now().UTC(),
	}
	s.snapshot = snapshot
	s.mu.Unlock()

	s.writeThrough(ctx, snapshot)

	metrics.RefreshDuration.Observe(s.now().Sub(start).Seconds())
	metrics.LastRefreshTimestamp.Set(float64(snapshot.UpdatedAt.Unix()))

	return snapshot, errors.Join(errs...)
}

func (s *market) fetchBandchainRates(ctx context.Context) ([]marketdata.ExchangeRate, error) {
	data, err := s.bandchain.GetBandReferenceData(ctx, s.registry.ReferencePairs())
	if err != nil {
		return nil, fmt.Errorf("fetching bandchain reference data: %w", err)
	}

	rates, err := s.registry.NormalizeBandchain(data)
	if err != nil {
		return nil, err
	}

	return rates, nil
}

func (s *market) fetchCoingeckoRates(ctx context.Context) ([]marketdata.ExchangeRate, error) {
	data, err := s.coingecko.GetCoingeckoMarkets(ctx, s.registry.CoingeckoSymbols())
	if err != nil {
		return nil, fmt.Errorf("fetching coingecko markets: %w", err)
	}

	return marketdata.NormalizeCoingecko(data), nil
}

func (s *market) writeThrough(ctx context.Context, snapshot *model.MarketSnapshot) {
	if s.cache == nil {
		return
	}

	if err := s.cache.SetSnapshot(ctx, snapshot); err != nil {
		log.Err(err).Msg("Error caching market snapshot")
		return
	}

	if err := s.cache.PublishSnapshot(ctx, snapshot); err != nil {
		log.Err(err).Msg("Error publishing market snapshot")
	}
}

// Warm loads the last cached snapshot so lookups have data before the first refresh completes.
func (s *market) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	snapshot, err := s.cache.GetSnapshot(ctx)
	if err != nil {
		return err
	}
	if snapshot.IsEmpty() {
		log.Info().Msg("No cached market snapshot found")
		return nil
	}

	bandchainRates, coingeckoRates := snapshot.BandchainRates, snapshot.CoingeckoRates
	if bandchainRates == nil && coingeckoRates == nil {
		bandchainRates, coingeckoRates = s.splitRates(snapshot.ExchangeRates)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bandchainRates = bandchainRates
	s.coingeckoRates = coingeckoRates
	s.snapshot = snapshot
	log.Info().Time("updated_at", snapshot.UpdatedAt).Msg("Loaded cached market snapshot")

	return nil
}

// splitRates sorts merged rates back by provider for snapshots cached without the
// per-provider slices. Band rates are keyed by the identifier that owns their bandchain symbol.
func (s *market) splitRates(rates []marketdata.ExchangeRate) (bandchain, coingecko []marketdata.ExchangeRate) {
	for _, rate := range rates {
		base, _, err := marketdata.SplitPair(rate.Pair)
		if err == nil {
			if owner, err := s.registry.CurrencyForBandchainSymbol(s.registry.BandchainSymbol(base)); err == nil && owner.Symbol == base {
				bandchain = append(bandchain, rate)
				continue
			}
		}
		coingecko = append(coingecko, rate)
	}
	return bandchain, coingecko
}

func (s *market) Snapshot() *model.MarketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *market) Pairs() []string {
	return s.registry.ReferencePairs()
}

func (s *market) ExchangeRate(base, quote string) (decimal.Decimal, bool) {
	return s.registry.LookupExchangeRate(s.Snapshot().ExchangeRates, base, quote)
}

func (s *market) GasPrice(chain string) (decimal.Decimal, bool) {
	return marketdata.LookupGasPrice(s.Snapshot().GasPrices, chain)
}
