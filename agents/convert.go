package agents

import (
	"fmt"

	"github.com/richinex/deskflow/llm"
	"github.com/richinex/deskflow/model"
)

// toChatMessages converts a conversation transcript into prompt messages.
// Specialist output becomes assistant messages tagged with the worker name
// so the model can tell the contributions apart; failure entries are kept
// visible as annotations.
func toChatMessages(conv *model.Conversation) []llm.ChatMessage {
	var out []llm.ChatMessage
	if conv.LoadedMemory != "" {
		out = append(out, llm.SystemMessage("Known customer context: "+conv.LoadedMemory))
	}
	for _, m := range conv.Messages {
		switch m.Role {
		case model.RoleUser:
			out = append(out, llm.UserMessage(m.Content))
		case model.RoleAssistant:
			out = append(out, llm.AssistantMessage(m.Content))
		case model.RoleWorker:
			if m.Failed {
				out = append(out, llm.AssistantMessage(fmt.Sprintf("[%s failed: %s]", m.Worker, m.Content)))
				continue
			}
			out = append(out, llm.AssistantMessage(fmt.Sprintf("%s: %s", m.Worker, m.Content)))
		}
	}
	return out
}
