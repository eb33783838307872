package assetlists

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DefiantLabs/bridge-market-data/config"
)

// CurrencyList is the published currency table format.
type CurrencyList struct {
	Name       string            `json:"name"`
	Currencies []config.Currency `json:"currencies"`
}

func GetCurrencyList(ctx context.Context, url string) (CurrencyList, error) {
	var currencyList CurrencyList

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return currencyList, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return currencyList, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return currencyList, fmt.Errorf("got status code: %v from url: %v", resp.Status, url)
	}

	resBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return currencyList, err
	}

	err = json.Unmarshal(resBody, &currencyList)

	return currencyList, err
}
