// Package model provides domain types shared across packages.
package model

// Role identifies the author of a conversation message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleWorker    = "worker"
)

// WorkerID identifies a specialist worker. The set of valid IDs is fixed
// when the supervisor is constructed.
type WorkerID string

// Message is a single entry in a conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// Worker attributes the message to the specialist that produced it.
	Worker WorkerID `json:"worker,omitempty"`
	// Failed marks a synthetic entry recording a worker failure.
	Failed bool `json:"failed,omitempty"`
	// Handoff annotates a control transfer recorded in the transcript.
	Handoff string `json:"handoff,omitempty"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// WorkerMessage creates a message attributed to a specialist worker.
func WorkerMessage(worker WorkerID, content string) Message {
	return Message{Role: RoleWorker, Worker: worker, Content: content}
}

// FailureMessage creates the synthetic transcript entry recorded when a
// worker run fails or times out.
func FailureMessage(worker WorkerID, cause string) Message {
	return Message{Role: RoleWorker, Worker: worker, Content: cause, Failed: true}
}

// Conversation is the shared state threaded through every supervisor cycle.
// Message order is append-only and causally ordered; only the supervisor
// mutates a conversation, and only by appending.
type Conversation struct {
	Messages []Message `json:"messages"`
	// CustomerID is an opaque identifier carried for the workers' benefit.
	CustomerID string `json:"customer_id,omitempty"`
	// LoadedMemory is an opaque blob of prior context, if any.
	LoadedMemory string `json:"loaded_memory,omitempty"`
	// RemainingSteps bounds the number of supervisor cycles. Never negative;
	// zero forces termination regardless of pending decisions.
	RemainingSteps int `json:"remaining_steps"`
}

// NewConversation creates a conversation with the given step budget.
func NewConversation(remainingSteps int) *Conversation {
	if remainingSteps < 0 {
		remainingSteps = 0
	}
	return &Conversation{
		Messages:       []Message{},
		RemainingSteps: remainingSteps,
	}
}

// Append adds messages to the transcript.
func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
}

// ConsumeStep decrements the step budget, stopping at zero.
// Returns false when the budget was already exhausted.
func (c *Conversation) ConsumeStep() bool {
	if c.RemainingSteps <= 0 {
		return false
	}
	c.RemainingSteps--
	return true
}

// Exhausted reports whether the step budget has run out.
func (c *Conversation) Exhausted() bool {
	return c.RemainingSteps <= 0
}

// LastMessage returns the most recent message, or a zero Message when the
// transcript is empty.
func (c *Conversation) LastMessage() Message {
	if len(c.Messages) == 0 {
		return Message{}
	}
	return c.Messages[len(c.Messages)-1]
}

// Clone returns a deep, independent copy. Workers receive clones so the
// supervisor's retained state can never be mutated from outside.
func (c *Conversation) Clone() *Conversation {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	return &Conversation{
		Messages:       msgs,
		CustomerID:     c.CustomerID,
		LoadedMemory:   c.LoadedMemory,
		RemainingSteps: c.RemainingSteps,
	}
}
