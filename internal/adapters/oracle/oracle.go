// Package oracle invokes the external LLM oracle that turns a product
// record into a ten-criterion review breakdown.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/truscore/internal/domain/model"
	"github.com/okian/truscore/internal/domain/scoring"
	"github.com/okian/truscore/pkg/metrics"
)

// Default oracle configuration constants.
const (
	defaultModel       = "gpt-4o"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.5
)

// Oracle produces a review breakdown for a product. Implementations
// are treated as unreliable: a call may fail outright or return a
// payload that does not survive validation.
type Oracle interface {
	Review(ctx context.Context, product *model.Product) (model.Review, error)
}

// Client implements Oracle against an OpenAI-compatible chat
// completions endpoint, requesting a strict JSON reply.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	http        *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		if t >= 0 {
			c.temperature = t
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

// NewClient creates an oracle client for the given endpoint and key.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       defaultModel,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		http:        &http.Client{},
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Wire shapes for the chat completions API.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat json.RawMessage `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// reviewPayload is the raw shape decoded from the model reply before
// the breakdown is validated criterion by criterion.
type reviewPayload struct {
	Product   string         `json:"product"`
	Breakdown map[string]int `json:"breakdown"`
}

// Review asks the oracle to rate a product and validates the reply.
func (c *Client) Review(ctx context.Context, product *model.Product) (model.Review, error) {
	metrics.RecordOracleCall()
	start := time.Now()
	defer func() {
		metrics.RecordOracleLatency(float64(time.Since(start).Milliseconds()))
	}()

	review, err := c.review(ctx, product)
	if err != nil {
		metrics.RecordOracleError()
		return model.Review{}, err
	}
	return review, nil
}

func (c *Client) review(ctx context.Context, product *model.Product) (model.Review, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(product)},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: json.RawMessage(`{"type":"json_object"}`),
	})
	if err != nil {
		return model.Review{}, fmt.Errorf("%w: encode request: %w", ErrGenerateFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return model.Review{}, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Review{}, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Review{}, fmt.Errorf("%w: status %d: %s", ErrGenerateFailed, resp.StatusCode, bytes.TrimSpace(raw))
	}

	var reply chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return model.Review{}, fmt.Errorf("%w: decode: %w", ErrGenerateFailed, err)
	}
	if len(reply.Choices) == 0 {
		return model.Review{}, ErrEmptyReply
	}

	return parseReview(reply.Choices[0].Message.Content)
}

// parseReview decodes the model's JSON content and validates the
// breakdown against the fixed criterion table.
func parseReview(content string) (model.Review, error) {
	var payload reviewPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return model.Review{}, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	breakdown, err := scoring.FromMap(payload.Breakdown)
	if err != nil {
		return model.Review{}, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	return model.Review{
		Product:   payload.Product,
		Breakdown: breakdown,
	}, nil
}
