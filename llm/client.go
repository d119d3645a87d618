package llm

import "context"

// Client is a thin convenience wrapper around a Provider, returning plain
// strings where callers don't care about usage accounting.
type Client struct {
	provider Provider
}

// NewClient creates a client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends a completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	resp, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// ChatWithUsage returns the content along with token usage.
func (c *Client) ChatWithUsage(ctx context.Context, messages []ChatMessage) (string, *TokenUsage, error) {
	resp, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	return resp.Content, resp.Usage, nil
}

// ChatWithFormat sends a format-constrained request and returns the content.
func (c *Client) ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat) (string, error) {
	resp, err := c.provider.ChatWithFormat(ctx, messages, format)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// StreamChat streams a completion.
func (c *Client) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	return c.provider.StreamChat(ctx, messages, chunks)
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}
