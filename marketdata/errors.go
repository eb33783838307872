package marketdata

import "errors"

var (
	ErrEmptyCurrencyTable       = errors.New("currency table is empty")
	ErrInvalidCurrency          = errors.New("invalid currency entry")
	ErrDuplicateCurrency        = errors.New("duplicate currency symbol")
	ErrAmbiguousBandchainSymbol = errors.New("bandchain symbol is shared by several currencies")
	ErrUnknownBandchainSymbol   = errors.New("no currency configured for bandchain symbol")
	ErrMalformedPair            = errors.New("malformed currency pair")

	ErrEmptyGasPolicy   = errors.New("gas policy is empty")
	ErrInvalidGasPolicy = errors.New("invalid gas policy entry")
)
