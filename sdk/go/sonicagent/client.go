// Package sonicagent provides a small Go client for the agent's REST API.
package sonicagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the agent REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// ActionRequest is the payload for an action invocation. Params are bound
// positionally against the action's declared parameter order.
type ActionRequest struct {
	Connection string   `json:"connection"`
	Action     string   `json:"action"`
	Params     []string `json:"params"`
}

// TransactionData describes an unsigned transaction prepared by the server.
// Signing and submission happen on the caller's side.
type TransactionData struct {
	From              string      `json:"from"`
	To                string      `json:"to"`
	Amount            json.Number `json:"amount"`
	TokenName         string      `json:"token_name"`
	TokenAddress      string      `json:"token_address"`
	Decimals          int         `json:"decimals"`
	RequiresSignature bool        `json:"requires_signature"`
}

// ActionResponse is the uniform response envelope returned by the server.
// Exactly one of the three shapes is populated: a plain result, a pending
// transaction, or an error.
type ActionResponse struct {
	Status          string           `json:"status,omitempty"`
	Result          string           `json:"result,omitempty"`
	Action          string           `json:"action,omitempty"`
	TransactionData *TransactionData `json:"transaction_data,omitempty"`
	Message         string           `json:"message,omitempty"`
	Error           string           `json:"error,omitempty"`
	Detail          string           `json:"detail,omitempty"`
}

// IsError reports whether the response carries an error envelope.
func (r *ActionResponse) IsError() bool {
	return r != nil && r.Status == "error"
}

// IsPending reports whether the response carries an unsigned transaction.
func (r *ActionResponse) IsPending() bool {
	return r != nil && r.TransactionData != nil
}

// HistoryRecord mirrors one persisted action execution.
type HistoryRecord struct {
	RequestID   string `json:"request_id"`
	Connection  string `json:"connection"`
	Action      string `json:"action"`
	Instruction string `json:"instruction"`
	Status      string `json:"status"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Reply       string `json:"reply"`
	CreatedAt   int64  `json:"created_at"`
}

// APIError represents transport level failures reported by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("sonicagent api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the agent API. When httpClient is nil,
// a default client with a sensible timeout is used.
func NewClient(rawURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// ExecuteAction invokes an action and returns the response envelope.
// Action-level failures arrive inside the envelope, not as a Go error.
func (c *Client) ExecuteAction(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.post(ctx, "/agent/action", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches the most recent action executions.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryRecord, error) {
	endpoint := "/agent/history"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	var records []HistoryRecord
	if err := c.get(ctx, endpoint, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Connections lists the registered connections and their actions.
func (c *Client) Connections(ctx context.Context) (map[string][]string, error) {
	connections := make(map[string][]string)
	if err := c.get(ctx, "/agent/connections", &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	rel := &url.URL{Path: path.Join(c.baseURL.Path, parsed.Path), RawQuery: parsed.RawQuery}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
