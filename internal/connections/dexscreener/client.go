// Package dexscreener wraps the public DexScreener search API used for ticker
// resolution and market rankings on the Sonic chain.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.dexscreener.com"
	defaultTimeout = 15 * time.Second

	// SonicChainID is the chain identifier DexScreener uses for Sonic pairs.
	SonicChainID = "sonic"

	// hotTokensQuery seeds the search with the major Sonic DEXes so the
	// result set covers the actively traded pairs.
	hotTokensQuery = "dyorswap wagmi shadow-exchange silverswap sonic"
)

// Config describes how to reach the DexScreener API.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin HTTP client for the DexScreener search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a DexScreener client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Token identifies one side of a trading pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Pair mirrors the subset of the DexScreener pair payload the agent consumes.
type Pair struct {
	ChainID     string `json:"chainId"`
	URL         string `json:"url"`
	PriceUSD    string `json:"priceUsd"`
	PriceNative string `json:"priceNative"`
	MarketCap   float64
	BaseToken   Token `json:"baseToken"`
	Volume      struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
}

// UnmarshalJSON tolerates marketCap being absent or a JSON string.
func (p *Pair) UnmarshalJSON(data []byte) error {
	type alias Pair
	aux := struct {
		*alias
		MarketCap json.Number `json:"marketCap"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.MarketCap != "" {
		if v, err := aux.MarketCap.Float64(); err == nil {
			p.MarketCap = v
		}
	}
	return nil
}

// Search queries /latest/dex/search and returns the raw pair list.
func (c *Client) Search(ctx context.Context, query string) ([]Pair, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/search?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build dexscreener request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query dexscreener: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("dexscreener returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Pairs []Pair `json:"pairs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode dexscreener response: %w", err)
	}
	return decoded.Pairs, nil
}

// FindTokenByTicker resolves a ticker to its contract address on the given
// chain. Among matching pairs the one with the deepest liquidity wins.
// Returns an empty address when the ticker is unknown.
func (c *Client) FindTokenByTicker(ctx context.Context, chainID, ticker string) (string, error) {
	pairs, err := c.Search(ctx, ticker)
	if err != nil {
		return "", err
	}

	var best *Pair
	for i := range pairs {
		pair := &pairs[i]
		if pair.ChainID != chainID {
			continue
		}
		if !strings.EqualFold(pair.BaseToken.Symbol, ticker) {
			continue
		}
		if best == nil || pair.Liquidity.USD > best.Liquidity.USD {
			best = pair
		}
	}
	if best == nil {
		return "", nil
	}
	return best.BaseToken.Address, nil
}

// SonicPairs returns the pairs from the hot-tokens seed query that trade on
// the Sonic chain.
func (c *Client) SonicPairs(ctx context.Context) ([]Pair, error) {
	pairs, err := c.Search(ctx, hotTokensQuery)
	if err != nil {
		return nil, err
	}
	filtered := pairs[:0]
	for _, pair := range pairs {
		if pair.ChainID == SonicChainID {
			filtered = append(filtered, pair)
		}
	}
	return filtered, nil
}
