package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultEndpoint is the hosted generateContent endpoint.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

	// DefaultTimeout bounds a single generation call. The tick loop waits
	// on this, so it stays in the low seconds.
	DefaultTimeout = 2 * time.Second

	// DefaultQuotaCooldown is how long the client refuses to call out
	// after the API answers 429.
	DefaultQuotaCooldown = 5 * time.Minute

	maxOutputTokens = 80
)

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client calls the generateContent API. After a 429 it suspends itself
// for the quota cooldown and fails fast; the caller's fallback text
// covers the gap. Safe for concurrent use.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	now      func() time.Time

	quotaCooldown time.Duration

	mu             sync.Mutex
	suspendedUntil time.Time
}

var _ Generator = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the API endpoint (tests).
func WithEndpoint(url string) ClientOption {
	return func(c *Client) { c.endpoint = url }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithQuotaCooldown overrides how long a 429 suspends the client.
func WithQuotaCooldown(d time.Duration) ClientOption {
	return func(c *Client) { c.quotaCooldown = d }
}

// WithClientNow overrides the clock source (tests).
func WithClientNow(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient builds a Client for the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:      DefaultEndpoint,
		apiKey:        apiKey,
		http:          &http.Client{Timeout: DefaultTimeout},
		now:           time.Now,
		quotaCooldown: DefaultQuotaCooldown,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suspended reports whether the client is inside a 429 cooldown window.
func (c *Client) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.suspendedUntil)
}

// Generate asks the API for one line of text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("quote: api key not configured")
	}
	if c.Suspended() {
		return "", fmt.Errorf("quote: suspended until quota cooldown expires")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     1.0,
			MaxOutputTokens: maxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("quote: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("quote: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("quote: call api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.mu.Lock()
		c.suspendedUntil = c.now().Add(c.quotaCooldown)
		c.mu.Unlock()
		return "", fmt.Errorf("quote: rate limited, calls suspended for %s", c.quotaCooldown)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("quote: api status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("quote: decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("quote: response carries no candidates")
	}

	line := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if line == "" {
		return "", fmt.Errorf("quote: response text is empty")
	}
	return line, nil
}
