package exportconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"photobook-render/internal/logger"
)

// Client fetches export configuration from the backend.
type Client struct {
	*http.Client
	BaseURL string
	// Token returns the bearer token for the request. Nil sends none.
	Token func(ctx context.Context) (string, error)
	Log   *logger.Logger
}

// NewClient returns a client rooted at baseURL.
func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		Client:  &http.Client{},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Log:     logger.OrNop(log),
	}
}

// Get implements Provider. Any transport error, non-2xx status or malformed
// body is a *ConfigFetchError.
func (c *Client) Get(ctx context.Context, category string) (Config, error) {
	u := c.BaseURL + "/export-config/" + url.PathEscape(category)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Config{}, &ConfigFetchError{Category: category, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != nil {
		tok, err := c.Token(ctx)
		if err != nil {
			return Config{}, &ConfigFetchError{Category: category, Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.Do(req)
	if err != nil {
		return Config{}, &ConfigFetchError{Category: category, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.Log.Warn("close export config body", "error", err)
		}
	}()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Config{}, &ConfigFetchError{Category: category, StatusCode: res.StatusCode}
	}

	var cfg Config
	if err := json.NewDecoder(res.Body).Decode(&cfg); err != nil {
		return Config{}, &ConfigFetchError{Category: category, Err: fmt.Errorf("decode: %w", err)}
	}
	if cfg.Category == "" {
		cfg.Category = category
	}
	return cfg, nil
}
