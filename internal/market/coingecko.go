package market

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // Raw passthrough payloads
	"fmt"           // Error formatting
	"net/http"      // HTTP client
	"net/url"       // URL building
	"strconv"       // Query params
	"strings"       // URL trimming
	"time"          // Client timeout
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient proxies the CoinGecko v3 API. Payloads are passed through
// as raw JSON; only the envelope is reshaped by the handlers.
type CoinGeckoClient struct {
	baseURL string       // Override for tests
	apiKey  string       // Optional demo API key header
	client  *http.Client // Shared HTTP client with timeout
}

// NewCoinGeckoClient builds a client; an empty baseURL selects production
func NewCoinGeckoClient(baseURL, apiKey string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	return &CoinGeckoClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// CoinListParams are the /coins/markets query knobs; zero values select the
// upstream defaults used by the frontend.
type CoinListParams struct {
	VsCurrency            string // Default usd
	Order                 string // Default market_cap_desc
	PerPage               int    // Default 100
	Page                  int    // Default 1
	Sparkline             bool   // Default false
	PriceChangePercentage string // Default 24h
}

// CoinList returns one page of coin market rows
func (c *CoinGeckoClient) CoinList(ctx context.Context, p CoinListParams) ([]json.RawMessage, error) {
	if p.VsCurrency == "" {
		p.VsCurrency = "usd"
	}
	if p.Order == "" {
		p.Order = "market_cap_desc"
	}
	if p.PerPage <= 0 {
		p.PerPage = 100
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PriceChangePercentage == "" {
		p.PriceChangePercentage = "24h"
	}
	params := url.Values{}
	params.Set("vs_currency", p.VsCurrency)
	params.Set("order", p.Order)
	params.Set("per_page", strconv.Itoa(p.PerPage))
	params.Set("page", strconv.Itoa(p.Page))
	params.Set("sparkline", strconv.FormatBool(p.Sparkline))
	params.Set("price_change_percentage", p.PriceChangePercentage)

	var list []json.RawMessage
	if err := c.get(ctx, "/coins/markets", params, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CoinDetails returns the full detail payload for one coin
func (c *CoinGeckoClient) CoinDetails(ctx context.Context, coinID string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "true")
	params.Set("developer_data", "false")
	params.Set("sparkline", "true")

	var raw json.RawMessage
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID), params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TrendingCoins returns the trending-search payload
func (c *CoinGeckoClient) TrendingCoins(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/search/trending", url.Values{}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CoinMarketChart returns price history for one coin
func (c *CoinGeckoClient) CoinMarketChart(ctx context.Context, coinID, vsCurrency string, days int, interval string) (json.RawMessage, error) {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	if days <= 0 {
		days = 7
	}
	if interval == "" {
		interval = "daily"
	}
	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", interval)

	var raw json.RawMessage
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// NFTList returns one page of NFT collections
func (c *CoinGeckoClient) NFTList(ctx context.Context, order string, perPage, page int) ([]json.RawMessage, error) {
	if order == "" {
		order = "market_cap_desc"
	}
	if perPage <= 0 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("order", order)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	var list []json.RawMessage
	if err := c.get(ctx, "/nfts/list", params, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// NFTDetails returns the detail payload for one NFT collection
func (c *CoinGeckoClient) NFTDetails(ctx context.Context, nftID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/nfts/"+url.PathEscape(nftID), url.Values{}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TrendingNFTs extracts the nfts slice from the trending-search payload
func (c *CoinGeckoClient) TrendingNFTs(ctx context.Context) ([]json.RawMessage, error) {
	var resp struct {
		NFTs []json.RawMessage `json:"nfts"`
	}
	if err := c.get(ctx, "/search/trending", url.Values{}, &resp); err != nil {
		return nil, err
	}
	if resp.NFTs == nil {
		return []json.RawMessage{}, nil
	}
	return resp.NFTs, nil
}

// NFTMarketChart returns floor-price history for one NFT collection
func (c *CoinGeckoClient) NFTMarketChart(ctx context.Context, nftID string, days int) (json.RawMessage, error) {
	if days <= 0 {
		days = 7
	}
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	var raw json.RawMessage
	if err := c.get(ctx, "/nfts/"+url.PathEscape(nftID)+"/market_chart", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Global returns the aggregate market payload
func (c *CoinGeckoClient) Global(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/global", url.Values{}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// get performs one GET against the API and decodes the JSON body into dest
func (c *CoinGeckoClient) get(ctx context.Context, path string, params url.Values, dest any) error {
	u := c.baseURL + path
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("coingecko %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
