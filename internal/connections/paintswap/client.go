// Package paintswap wraps the PaintSwap marketplace API used for NFT
// collection rankings and metadata on the Sonic chain.
package paintswap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.paintswap.finance"
	defaultTimeout = 15 * time.Second
)

// Config describes how to reach the PaintSwap API.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin HTTP client for the PaintSwap collections endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a PaintSwap client.
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

// Stats carries the marketplace statistics of a collection. Monetary values
// stay in wei strings, mirroring the upstream payload.
type Stats struct {
	Symbol            string `json:"symbol"`
	Floor             string `json:"floor"`
	VolumeLast24Hours string `json:"volumeLast24Hours"`
	VolumeLast7Days   string `json:"volumeLast7Days"`
	TotalVolumeTraded string `json:"totalVolumeTraded"`
	HighestSale       string `json:"highestSale"`
	TotalMinted       string `json:"totalMinted"`
	NumOwners         string `json:"numOwners"`
	ActiveSales       string `json:"activeSales"`
	TotalTrades       string `json:"totalTrades"`
}

// Collection mirrors the subset of the PaintSwap collection payload the
// agent consumes.
type Collection struct {
	Address       string `json:"address"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Owner         string `json:"owner"`
	Standard      string `json:"standard"`
	ChainID       int    `json:"chainId"`
	Verified      bool   `json:"verified"`
	NSFW          bool   `json:"nsfw"`
	MintPriceLow  string `json:"mintPriceLow"`
	MintPriceHigh string `json:"mintPriceHigh"`
	Stats         Stats  `json:"stats"`
}

// HotCollections returns the collections ranked by 24h traded volume.
func (c *Client) HotCollections(ctx context.Context, limit int) ([]Collection, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint := fmt.Sprintf("%s/v2/collections?orderDirection=desc&numToFetch=%s&orderBy=volumeLast24Hours",
		c.baseURL, strconv.Itoa(limit))

	var decoded struct {
		Collections []Collection `json:"collections"`
	}
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Collections) > limit {
		decoded.Collections = decoded.Collections[:limit]
	}
	return decoded.Collections, nil
}

// CollectionInfo fetches a single collection by contract address.
func (c *Client) CollectionInfo(ctx context.Context, address string) (*Collection, error) {
	endpoint := fmt.Sprintf("%s/v2/collections/%s", c.baseURL, strings.TrimSpace(address))

	var decoded struct {
		Collection Collection `json:"collection"`
	}
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}
	return &decoded.Collection, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build paintswap request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("query paintswap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("paintswap returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode paintswap response: %w", err)
	}
	return nil
}
