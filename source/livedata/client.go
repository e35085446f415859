package livedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/railmitra/railmitra/pkg/logging"
)

// API is the boundary to the third-party railway data provider. A non-200
// response yields nil data with whatever headers arrived; a transport error
// is returned as err with nil data.
type API interface {
	Call(ctx context.Context, path string, params map[string]string) (json.RawMessage, http.Header, error)
}

// ClientConfig holds RapidAPI connection settings.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Host    string
	Timeout time.Duration
}

// DefaultClientConfig returns the default IRCTC RapidAPI configuration.
func DefaultClientConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		BaseURL: "https://irctc1.p.rapidapi.com",
		APIKey:  apiKey,
		Host:    "irctc1.p.rapidapi.com",
		Timeout: 10 * time.Second,
	}
}

// Client implements API over the RapidAPI IRCTC provider.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// NewClient creates a RapidAPI client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig("")
	}
	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("x-rapidapi-key", config.APIKey).
		SetHeader("x-rapidapi-host", config.Host)
	return &Client{
		http:   httpClient,
		logger: logging.WithComponent("livedata.client"),
	}
}

// Call performs a GET against the provider.
func (c *Client) Call(ctx context.Context, path string, params map[string]string) (json.RawMessage, http.Header, error) {
	c.logger.Debug("api call", "path", path, "params", params)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, nil, fmt.Errorf("call %s: %w", path, err)
	}

	headers := resp.Header()
	c.logger.Debug("api response", "path", path, "status", resp.StatusCode())
	if resp.StatusCode() != http.StatusOK {
		return nil, headers, nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, headers, fmt.Errorf("decode %s response: %w", path, err)
	}
	if isEmptyData(env.Data) {
		return nil, headers, nil
	}
	return env.Data, headers, nil
}

// isEmptyData reports whether the payload carries no usable data
// (absent, null, empty string/object/array, or boolean false).
func isEmptyData(data json.RawMessage) bool {
	switch string(data) {
	case "", "null", `""`, "[]", "{}", "false":
		return true
	}
	return false
}
