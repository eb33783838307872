package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DefiantLabs/bridge-market-data/marketdata"
	"github.com/shopspring/decimal"
)

var apiEndpoints = map[string]string{
	"band_request_prices": "/oracle/v1/request_prices",
	"coingecko_markets":   "/coins/markets",
}

// Band asks this many validators and needs this many answers for a price to resolve.
const (
	bandAskCount = 4
	bandMinCount = 3
)

var ErrMissingFastPrice = errors.New("gas oracle response has no fast price")

func GetEndpoint(key string) string {
	return apiEndpoints[key]
}

// Client talks to the market data providers. It implements marketdata.GasOracle.
type Client struct {
	httpClient    *http.Client
	bandchainHost string
	coingeckoHost string
}

var _ marketdata.GasOracle = (*Client)(nil)

func NewClient(timeout time.Duration, bandchainHost, coingeckoHost string) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		bandchainHost: strings.TrimSuffix(bandchainHost, "/"),
		coingeckoHost: strings.TrimSuffix(coingeckoHost, "/"),
	}
}

type bandPriceResult struct {
	Symbol     string `json:"symbol"`
	Multiplier string `json:"multiplier"`
	Px         string `json:"px"`
}

type bandPricesResponse struct {
	PriceResults []bandPriceResult `json:"price_results"`
}

// GetBandReferenceData requests the USD prices of every symbol in pairs from Band Protocol and
// returns the reference rate of each pair. Pairs with a symbol Band did not price are left out.
func (c *Client) GetBandReferenceData(ctx context.Context, pairs []string) ([]marketdata.BandchainReferenceData, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	var symbols []string
	seen := make(map[string]bool)
	for _, pair := range pairs {
		base, quote, err := marketdata.SplitPair(pair)
		if err != nil {
			return nil, err
		}
		for _, symbol := range []string{base, quote} {
			if symbol == marketdata.USD || seen[symbol] {
				continue
			}
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}

	query := url.Values{}
	for _, symbol := range symbols {
		query.Add("symbols", symbol)
	}
	query.Set("min_count", fmt.Sprint(bandMinCount))
	query.Set("ask_count", fmt.Sprint(bandAskCount))

	requestEndpoint := apiEndpoints["band_request_prices"]
	var result bandPricesResponse
	if err := c.getJSON(ctx, c.bandchainHost, requestEndpoint, query, &result); err != nil {
		return nil, err
	}

	usdPrices := map[string]decimal.Decimal{marketdata.USD: decimal.NewFromInt(1)}
	for _, price := range result.PriceResults {
		px, err := decimal.NewFromString(price.Px)
		if err != nil {
			return nil, fmt.Errorf("invalid px %q for %s: %w", price.Px, price.Symbol, err)
		}
		multiplier, err := decimal.NewFromString(price.Multiplier)
		if err != nil || multiplier.IsZero() {
			return nil, fmt.Errorf("invalid multiplier %q for %s", price.Multiplier, price.Symbol)
		}
		usdPrices[price.Symbol] = px.Div(multiplier)
	}

	data := make([]marketdata.BandchainReferenceData, 0, len(pairs))
	for _, pair := range pairs {
		base, quote, _ := marketdata.SplitPair(pair)
		basePrice, ok := usdPrices[base]
		if !ok {
			continue
		}
		quotePrice, ok := usdPrices[quote]
		if !ok || quotePrice.IsZero() {
			continue
		}

		rate := basePrice
		if quote != marketdata.USD {
			rate = basePrice.Div(quotePrice)
		}
		data = append(data, marketdata.BandchainReferenceData{Pair: pair, Rate: rate})
	}

	return data, nil
}

type coingeckoMarket struct {
	ID           string              `json:"id"`
	Symbol       string              `json:"symbol"`
	CurrentPrice decimal.NullDecimal `json:"current_price"`
}

// GetCoingeckoMarkets requests the USD market data of the given CoinGecko ids. Markets without
// a current price are skipped.
func (c *Client) GetCoingeckoMarkets(ctx context.Context, ids []string) ([]marketdata.CoingeckoReferenceData, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("vs_currency", strings.ToLower(marketdata.USD))
	query.Set("ids", strings.Join(ids, ","))

	requestEndpoint := apiEndpoints["coingecko_markets"]
	var markets []coingeckoMarket
	if err := c.getJSON(ctx, c.coingeckoHost, requestEndpoint, query, &markets); err != nil {
		return nil, err
	}

	data := make([]marketdata.CoingeckoReferenceData, 0, len(markets))
	for _, market := range markets {
		if !market.CurrentPrice.Valid {
			continue
		}
		data = append(data, marketdata.CoingeckoReferenceData{Symbol: market.Symbol, CurrentPrice: market.CurrentPrice.Decimal})
	}

	return data, nil
}

type gasOracleResponse struct {
	Fast decimal.NullDecimal `json:"fast"`
}

// FetchFast reads the "fast" field of a gas oracle. Other fields are ignored.
func (c *Client) FetchFast(ctx context.Context, endpoint string) (decimal.Decimal, error) {
	var result gasOracleResponse
	if err := c.getJSON(ctx, endpoint, "", nil, &result); err != nil {
		return decimal.Zero, err
	}

	if !result.Fast.Valid {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingFastPrice, endpoint)
	}

	return result.Fast.Decimal, nil
}

func (c *Client) getJSON(ctx context.Context, host string, requestEndpoint string, query url.Values, target interface{}) error {
	u := fmt.Sprintf("%s%s", host, requestEndpoint)
	if len(query) > 0 {
		u = fmt.Sprintf("%s?%s", u, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	err = checkResponseErrorCode(u, resp)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	err = json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("error decoding response for endpoint %s: %w", u, err)
	}

	return nil
}

func checkResponseErrorCode(requestEndpoint string, resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("error getting response for endpoint %s: Status %s Body %s", requestEndpoint, resp.Status, body)
	}

	return nil
}
