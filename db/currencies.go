package db

import (
	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/DefiantLabs/bridge-market-data/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertCurrencies makes the stored table match currencies: existing symbols get their aliases
// replaced and symbols missing from the new table are removed.
func UpsertCurrencies(db *gorm.DB, currencies []config.Currency) error {
	if len(currencies) == 0 {
		return nil
	}

	rows := make([]models.Currency, len(currencies))
	symbols := make([]string, len(currencies))
	for i, c := range currencies {
		symbols[i] = c.Symbol
		rows[i] = models.Currency{
			Symbol:               c.Symbol,
			BandchainSymbol:      c.BandchainSymbol,
			CoingeckoSymbol:      c.CoingeckoSymbol,
			BandchainUnsupported: c.BandchainUnsupported,
		}
	}

	return db.Transaction(func(dbTransaction *gorm.DB) error {
		if err := dbTransaction.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"bandchain_symbol", "coingecko_symbol", "bandchain_unsupported", "updated_at"}),
		}).Create(&rows).Error; err != nil {
			config.Log.Error("Error upserting currencies.", err)
			return err
		}

		if err := dbTransaction.Where("symbol NOT IN ?", symbols).Delete(&models.Currency{}).Error; err != nil {
			config.Log.Error("Error removing stale currencies.", err)
			return err
		}

		return nil
	})
}

// GetCurrencies returns the stored currency table in insertion order.
func GetCurrencies(db *gorm.DB) ([]config.Currency, error) {
	var rows []models.Currency
	if err := db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	currencies := make([]config.Currency, len(rows))
	for i, row := range rows {
		currencies[i] = config.Currency{
			Symbol:               row.Symbol,
			BandchainSymbol:      row.BandchainSymbol,
			CoingeckoSymbol:      row.CoingeckoSymbol,
			BandchainUnsupported: row.BandchainUnsupported,
		}
	}

	return currencies, nil
}
