package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/DefiantLabs/bridge-market-data/assetlists"
	"github.com/DefiantLabs/bridge-market-data/config"
	dbTypes "github.com/DefiantLabs/bridge-market-data/db"
	"github.com/DefiantLabs/bridge-market-data/marketdata"
	"gorm.io/gorm"
)

var sleep = time.Sleep

// UpsertCurrencies validates the currency table and stores it. When listURL is set the table is
// downloaded from there, otherwise the given currencies are used.
func UpsertCurrencies(ctx context.Context, db *gorm.DB, currencies []config.Currency, listURL string, retryMaxAttempts int64, retryMaxWaitSeconds uint64) error {
	if listURL != "" {
		config.Log.Infof("Downloading currency table from %s", listURL)
		list, err := getCurrencyListWithRetry(ctx, listURL, retryMaxAttempts, retryMaxWaitSeconds)
		if err != nil {
			return fmt.Errorf("error downloading currency table: %w", err)
		}
		currencies = list.Currencies
	}

	if _, err := marketdata.NewRegistry(currencies); err != nil {
		return fmt.Errorf("refusing to store invalid currency table: %w", err)
	}

	if err := dbTypes.UpsertCurrencies(db, currencies); err != nil {
		return err
	}

	config.Log.Infof("Upserted %d currencies", len(currencies))
	return nil
}

func getCurrencyListWithRetry(ctx context.Context, listURL string, retryMaxAttempts int64, retryMaxWaitSeconds uint64) (assetlists.CurrencyList, error) {
	if retryMaxAttempts == 0 {
		return assetlists.GetCurrencyList(ctx, listURL)
	}

	if retryMaxWaitSeconds < 2 {
		retryMaxWaitSeconds = 2
	}

	var attempts int64
	maxRetryTime := time.Duration(retryMaxWaitSeconds) * time.Second
	if maxRetryTime < 0 {
		config.Log.Warn("Detected maxRetryTime overflow, setting time to sane maximum of 30s")
		maxRetryTime = 30 * time.Second
	}

	currentBackoffDuration, maxReached := GetBackoffDurationForAttempts(attempts, maxRetryTime)

	for {
		resp, err := assetlists.GetCurrencyList(ctx, listURL)
		attempts++
		if err != nil && ctx.Err() == nil && (retryMaxAttempts < 0 || (attempts <= retryMaxAttempts)) {
			config.Log.Error("Error getting HTTP response, backing off and trying again", err)
			config.Log.Debugf("Attempt %d with wait time %+v", attempts, currentBackoffDuration)
			sleep(currentBackoffDuration)

			// guard against overflow
			if !maxReached {
				currentBackoffDuration, maxReached = GetBackoffDurationForAttempts(attempts, maxRetryTime)
			}

			continue
		}

		if err != nil {
			config.Log.Error("Error getting HTTP response, reached max retry attempts")
		}
		return resp, err
	}
}
