// Client - provider wrapper with cost accounting.

package llm

import (
	"context"
	"sync"
)

// Client wraps a Provider and tracks per-call and accumulated monetary
// cost. Safe for concurrent use; cost tracking is shared across all
// queries issued through the same client.
type Client struct {
	provider Provider

	mu        sync.Mutex
	lastCost  *float64
	totalCost float64
}

// NewClient creates a new client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// ProcessText sends a text-only completion request and records its cost.
func (c *Client) ProcessText(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	resp, err := c.provider.ProcessText(ctx, messages, opts)
	c.recordCost(resp, err)
	return resp, err
}

// ProcessMultimodal sends a multimodal completion request and records its
// cost.
func (c *Client) ProcessMultimodal(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	resp, err := c.provider.ProcessMultimodal(ctx, messages, opts)
	c.recordCost(resp, err)
	return resp, err
}

func (c *Client) recordCost(resp Response, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastCost = nil
		return
	}
	c.lastCost = resp.Cost
	if resp.Cost != nil {
		c.totalCost += *resp.Cost
	}
}

// LastCost returns the cost of the most recent successful call, or nil if
// the provider could not determine it.
func (c *Client) LastCost() *float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastCost == nil {
		return nil
	}
	cost := *c.lastCost
	return &cost
}

// TotalCost returns the accumulated cost across all calls.
func (c *Client) TotalCost() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCost
}

// ResetCostTracking clears accumulated cost state.
func (c *Client) ResetCostTracking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCost = nil
	c.totalCost = 0
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}
