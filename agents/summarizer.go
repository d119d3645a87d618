package agents

import (
	"context"

	"github.com/richinex/deskflow/llm"
	"github.com/richinex/deskflow/model"
	"github.com/richinex/deskflow/orchestration"
)

// Summarizer implements orchestration.Synthesizer: it re-prompts the model
// over the finished transcript to compose the customer-facing reply.
type Summarizer struct {
	client *llm.Client
}

// NewSummarizer creates a synthesizer backed by the given client.
func NewSummarizer(client *llm.Client) *Summarizer {
	return &Summarizer{client: client}
}

// Synthesize composes the final reply from the transcript.
func (s *Summarizer) Synthesize(ctx context.Context, conv *model.Conversation) (model.Message, error) {
	messages := append([]llm.ChatMessage{llm.SystemMessage(summaryPrompt)}, toChatMessages(conv)...)

	content, err := s.client.Chat(ctx, messages)
	if err != nil {
		return model.Message{}, err
	}
	return model.AssistantMessage(content), nil
}

var _ orchestration.Synthesizer = (*Summarizer)(nil)
