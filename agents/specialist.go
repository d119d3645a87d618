package agents

import (
	"context"

	"github.com/richinex/deskflow/llm"
	"github.com/richinex/deskflow/model"
	"github.com/richinex/deskflow/orchestration"
)

// Specialist implements orchestration.Worker by running the envelope's
// conversation against an LLM under a per-specialist system prompt.
type Specialist struct {
	id     model.WorkerID
	prompt string
	client *llm.Client
}

// NewSpecialist creates a worker with an arbitrary system prompt.
func NewSpecialist(id model.WorkerID, prompt string, client *llm.Client) *Specialist {
	return &Specialist{id: id, prompt: prompt, client: client}
}

// NewCatalogSpecialist creates the music catalog worker.
func NewCatalogSpecialist(client *llm.Client) *Specialist {
	return NewSpecialist("catalog", catalogPrompt, client)
}

// NewInvoiceSpecialist creates the purchases and invoices worker.
func NewInvoiceSpecialist(client *llm.Client) *Specialist {
	return NewSpecialist("invoice", invoicePrompt, client)
}

// ID returns the worker identifier.
func (s *Specialist) ID() model.WorkerID {
	return s.id
}

// Run answers the envelope's task. The envelope state is whatever the
// supervisor's context policy produced; the specialist just prompts over it.
func (s *Specialist) Run(ctx context.Context, env orchestration.Envelope) (orchestration.WorkerResult, error) {
	messages := append([]llm.ChatMessage{llm.SystemMessage(s.prompt)}, toChatMessages(env.State)...)

	content, err := s.client.Chat(ctx, messages)
	if err != nil {
		return orchestration.WorkerResult{}, err
	}
	return orchestration.TextResult(s.id, content), nil
}

var _ orchestration.Worker = (*Specialist)(nil)
