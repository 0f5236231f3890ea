package market

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // Upstream JSON decoding
	"fmt"           // Error formatting
	"net/http"      // HTTP client
	"net/url"       // URL building
	"strconv"       // Query params
	"strings"       // Symbol list joining
	"time"          // Client timeout
)

const defaultCryptoCompareURL = "https://min-api.cryptocompare.com"

// Coin is the reshaped market snapshot handed to the frontend
type Coin struct {
	ID        string  `json:"id"`        // Upstream coin identifier (symbol)
	Name      string  `json:"name"`      // Full name when available
	Symbol    string  `json:"symbol"`    // Ticker symbol
	Price     float64 `json:"price"`     // Latest USD price
	Change24h float64 `json:"change24h"` // 24h percent change
	MarketCap float64 `json:"marketCap"` // USD market cap
	Volume24h float64 `json:"volume24h"` // 24h USD volume
	ImageURL  string  `json:"imageUrl"`  // Coin image URL
}

// Candle is one hourly closing-price sample
type Candle struct {
	Time  int64   `json:"time"`  // Unix timestamp of the sample
	Close float64 `json:"close"` // Closing USD price
}

// SnapshotProvider serves the /latest market snapshot
type SnapshotProvider interface {
	TopList(ctx context.Context, page, limit int) ([]Coin, error)
	PriceMultiFull(ctx context.Context, symbols []string) ([]Coin, error)
}

// HistoryProvider serves hourly price history for portfolio aggregation
type HistoryProvider interface {
	HistoHour(ctx context.Context, symbol string, limit int) ([]Candle, error)
}

// CryptoCompareClient talks to the min-api.cryptocompare.com endpoints
type CryptoCompareClient struct {
	baseURL string       // Override for tests
	apiKey  string       // api_key query param
	client  *http.Client // Shared HTTP client with timeout
}

// NewCryptoCompareClient builds a client; an empty baseURL selects production
func NewCryptoCompareClient(baseURL, apiKey string) *CryptoCompareClient {
	if baseURL == "" {
		baseURL = defaultCryptoCompareURL
	}
	return &CryptoCompareClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// topListResponse mirrors /data/top/mktcapfull
type topListResponse struct {
	Message string `json:"Message"`
	Data    []struct {
		CoinInfo struct {
			Name     string `json:"Name"`
			FullName string `json:"FullName"`
			ImageURL string `json:"ImageUrl"`
		} `json:"CoinInfo"`
		Raw struct {
			USD struct {
				Price        float64 `json:"PRICE"`
				ChangePct24h float64 `json:"CHANGEPCT24HOUR"`
				MarketCap    float64 `json:"MKTCAP"`
				Volume24h    float64 `json:"VOLUME24HOUR"`
			} `json:"USD"`
		} `json:"RAW"`
	} `json:"Data"`
}

// TopList returns one page of coins ordered by market cap
func (c *CryptoCompareClient) TopList(ctx context.Context, page, limit int) ([]Coin, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	params.Set("tsym", "USD")

	var resp topListResponse
	if err := c.get(ctx, "/data/top/mktcapfull", params, &resp); err != nil {
		return nil, err
	}
	if resp.Message != "Success" {
		return nil, fmt.Errorf("cryptocompare toplist: %s", resp.Message)
	}
	coins := make([]Coin, 0, len(resp.Data))
	for _, d := range resp.Data {
		coins = append(coins, Coin{
			ID:        d.CoinInfo.Name,
			Name:      d.CoinInfo.FullName,
			Symbol:    d.CoinInfo.Name,
			Price:     d.Raw.USD.Price,
			Change24h: d.Raw.USD.ChangePct24h,
			MarketCap: d.Raw.USD.MarketCap,
			Volume24h: d.Raw.USD.Volume24h,
			ImageURL:  "https://www.cryptocompare.com" + d.CoinInfo.ImageURL,
		})
	}
	return coins, nil
}

// priceMultiResponse mirrors /data/pricemultifull
type priceMultiResponse struct {
	Message string `json:"Message"`
	Raw     map[string]struct {
		USD struct {
			Price        float64 `json:"PRICE"`
			ChangePct24h float64 `json:"CHANGEPCT24HOUR"`
			MarketCap    float64 `json:"MKTCAP"`
			Volume24h    float64 `json:"VOLUME24HOUR"`
		} `json:"USD"`
	} `json:"RAW"`
	Display map[string]struct {
		USD struct {
			ImageURL string `json:"IMAGEURL"`
		} `json:"USD"`
	} `json:"DISPLAY"`
}

// PriceMultiFull looks up specific symbols. Unknown symbols return an empty
// slice rather than an error, matching the search UX.
func (c *CryptoCompareClient) PriceMultiFull(ctx context.Context, symbols []string) ([]Coin, error) {
	params := url.Values{}
	params.Set("fsyms", strings.Join(symbols, ","))
	params.Set("tsyms", "USD")

	var resp priceMultiResponse
	if err := c.get(ctx, "/data/pricemultifull", params, &resp); err != nil {
		return nil, err
	}
	// Unknown symbols come back as an error message with no RAW block
	if strings.HasPrefix(resp.Message, "Error") || resp.Raw == nil {
		return []Coin{}, nil
	}
	coins := make([]Coin, 0, len(resp.Raw))
	for sym, d := range resp.Raw {
		img := ""
		if disp, ok := resp.Display[sym]; ok && disp.USD.ImageURL != "" {
			img = "https://www.cryptocompare.com" + disp.USD.ImageURL
		}
		coins = append(coins, Coin{
			ID:        sym,
			Name:      sym,
			Symbol:    sym,
			Price:     d.USD.Price,
			Change24h: d.USD.ChangePct24h,
			MarketCap: d.USD.MarketCap,
			Volume24h: d.USD.Volume24h,
			ImageURL:  img,
		})
	}
	return coins, nil
}

// histoHourResponse mirrors /data/v2/histohour
type histoHourResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []Candle `json:"Data"`
	} `json:"Data"`
}

// HistoHour returns the last `limit` hourly candles for one symbol
func (c *CryptoCompareClient) HistoHour(ctx context.Context, symbol string, limit int) ([]Candle, error) {
	params := url.Values{}
	params.Set("fsym", symbol)
	params.Set("tsym", "USD")
	params.Set("limit", strconv.Itoa(limit))

	var resp histoHourResponse
	if err := c.get(ctx, "/data/v2/histohour", params, &resp); err != nil {
		return nil, err
	}
	if resp.Response != "Success" {
		return nil, fmt.Errorf("cryptocompare histohour %s: %s", symbol, resp.Message)
	}
	return resp.Data.Data, nil
}

// get performs one GET against the API and decodes the JSON body into dest
func (c *CryptoCompareClient) get(ctx context.Context, path string, params url.Values, dest any) error {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("cryptocompare %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
