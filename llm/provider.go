package llm

import "context"

// Provider is the abstract interface over chat-completion backends.
// Implementations hide authentication, request conversion, and
// provider-specific error shapes.
type Provider interface {
	// Name returns the provider name for logging.
	Name() string

	// Model returns the model identifier in use.
	Model() string

	// Chat sends a chat completion request.
	Chat(ctx context.Context, messages []ChatMessage) (ChatResponse, error)

	// ChatWithFormat sends a chat completion request with a response
	// format constraint. A nil format means plain text.
	ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat) (ChatResponse, error)

	// StreamChat streams a completion, sending text chunks to the channel.
	// Token usage is returned when the provider reports it.
	StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error)
}
