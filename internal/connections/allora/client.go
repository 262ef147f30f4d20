// Package allora wraps the Allora Network prediction API: topic discovery and
// per-topic network inference queries.
package allora

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
	defaultBaseURL   = "https://api.allora.network/v2"
	defaultSignature = "ethereum-11155111"
	defaultTimeout   = 15 * time.Second
)

// Config describes how to reach the Allora API.
type Config struct {
	BaseURL string
	APIKey  string
	// Signature selects the consumer signature format for inference queries.
	Signature string
	Timeout   time.Duration
}

// Client is a thin HTTP client for the Allora topics and consumer endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	signature  string
	httpClient *http.Client
}

// NewClient constructs an Allora client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	signature := strings.TrimSpace(cfg.Signature)
	if signature == "" {
		signature = defaultSignature
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		signature:  signature,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Topic describes a prediction topic published by the network.
type Topic struct {
	ID          int64  `json:"topic_id"`
	Name        string `json:"topic_name"`
	Description string `json:"description"`
	EpochLength int64  `json:"epoch_length"`
	IsActive    bool   `json:"is_active"`
	UpdatedAt   string `json:"updated_at"`
}

// Inference carries the aggregated network prediction for a topic.
type Inference struct {
	NetworkInference           string `json:"network_inference"`
	NetworkInferenceNormalized string `json:"network_inference_normalized"`
	Timestamp                  int64  `json:"timestamp"`
}

// Topics lists the prediction topics available on the network.
func (c *Client) Topics(ctx context.Context) ([]Topic, error) {
	endpoint := c.baseURL + "/allora/topics"

	var decoded struct {
		Data struct {
			Topics []Topic `json:"topics"`
		} `json:"data"`
	}
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}
	return decoded.Data.Topics, nil
}

// TopicInference fetches the latest network inference for a topic.
func (c *Client) TopicInference(ctx context.Context, topicID int64) (*Inference, error) {
	endpoint := fmt.Sprintf("%s/allora/consumer/%s?allora_topic_id=%s",
		c.baseURL, c.signature, strconv.FormatInt(topicID, 10))

	var decoded struct {
		Data struct {
			InferenceData Inference `json:"inference_data"`
		} `json:"data"`
	}
	if err := c.get(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}
	return &decoded.Data.InferenceData, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build allora request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("query allora: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("allora returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode allora response: %w", err)
	}
	return nil
}
