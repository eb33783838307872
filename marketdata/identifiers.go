package marketdata

// Chain identifiers of the default gas policy.
const (
	ChainEthereum  = "ethc"
	ChainBSC       = "bscc"
	ChainAvalanche = "avaxc"
	ChainFantom    = "ftmc"
	ChainPolygon   = "maticc"
	ChainSolana    = "solc"
	ChainArbitrum  = "arbitrumc"
)

// Currency identifiers of the default currency table that the code refers to directly.
const (
	CurrencyBTC     = "BTC"
	CurrencyETH     = "ETH"
	CurrencyAVAX    = "AVAX"
	CurrencyUnknown = "UNKNOWN"
)
