// Package embedding holds the HTTP plumbing shared by the embedding
// backends in its subpackages.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Client sends JSON requests to one embedding backend.
type Client struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
	header   http.Header
}

// NewClient creates a client. A non-positive rps disables throttling.
func NewClient(provider string, timeout time.Duration, rps float64) *Client {
	c := &Client{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
		header:   make(http.Header),
	}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// SetHeader adds a header to every request.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// Throttled reports whether requests are rate limited.
func (c *Client) Throttled() bool {
	return c.limiter != nil
}

// PostJSON encodes in, posts it to url and decodes the reply into out.
// Transport failures wrap domain.ErrEmbeddingUnavailable and HTTP 429
// wraps domain.ErrRateLimited.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrRateLimited, c.provider, err)
		}
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: building request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", c.provider, err)
	}
	return nil
}

// Get issues a GET and discards the body. Used for reachability checks.
func (c *Client) Get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", c.provider, err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, c.provider, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	sentinel := domain.ErrEmbeddingUnavailable
	if resp.StatusCode == http.StatusTooManyRequests {
		sentinel = domain.ErrRateLimited
	}
	return nil, fmt.Errorf("%w: %s returned %d: %s", sentinel, c.provider, resp.StatusCode, bytes.TrimSpace(msg))
}

// Float32s narrows a JSON float slice to the vector element type.
func Float32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
