package consumer

import (
	"context"
	"time"

	"github.com/DefiantLabs/bridge-market-data/pkg/model"
	"github.com/rs/zerolog/log"
)

type Refreshable interface {
	Refresh(ctx context.Context) (*model.MarketSnapshot, error)
}

type refresher struct {
	market   Refreshable
	interval time.Duration
}

func NewRefresher(market Refreshable, interval time.Duration) *refresher {
	return &refresher{market: market, interval: interval}
}

// Run refreshes once immediately and then on every tick until ctx is done.
func (s *refresher) Run(ctx context.Context) error {
	log.Info().Dur("interval", s.interval).Msg("Starting market refresher")

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("breaking the refresher loop.")
			return nil
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *refresher) refresh(ctx context.Context) {
	snapshot, err := s.market.Refresh(ctx)
	if err != nil {
		log.Err(err).Msg("Market refresh completed with provider errors")
		return
	}
	log.Debug().
		Int("rates", len(snapshot.ExchangeRates)).
		Int("gas_prices", len(snapshot.GasPrices)).
		Msg("Market refreshed")
}
