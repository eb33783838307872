package models

import "time"

// Currency is one row of the bridge currency table.
type Currency struct {
	ID                   uint
	Symbol               string `gorm:"uniqueIndex"`
	BandchainSymbol      string
	CoingeckoSymbol      string
	BandchainUnsupported bool
	UpdatedAt            time.Time
}
