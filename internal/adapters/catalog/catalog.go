// Package catalog resolves product metadata from the external product
// catalog service.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/truscore/internal/domain/model"
	"github.com/okian/truscore/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout = 10 * time.Second
)

// Fetcher resolves a product record by id. A missing record is
// reported via ErrNotFound; it is the only legitimate "stop, no
// retry" signal for callers.
type Fetcher interface {
	Fetch(ctx context.Context, productID string) (*model.Product, error)
}

// Client implements Fetcher over the catalog HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout sets the request timeout for catalog lookups.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch resolves the product record for a product id.
func (c *Client) Fetch(ctx context.Context, productID string) (*model.Product, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(productID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordCatalogError()
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productID)
	case resp.StatusCode != http.StatusOK:
		metrics.RecordCatalogError()
		return nil, fmt.Errorf("%w: unexpected status %d", ErrLookupFailed, resp.StatusCode)
	}

	var product model.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		metrics.RecordCatalogError()
		return nil, fmt.Errorf("%w: decode: %w", ErrLookupFailed, err)
	}
	if product.ID == "" {
		product.ID = productID
	}

	return &product, nil
}
