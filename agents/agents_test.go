package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/richinex/deskflow/llm"
	"github.com/richinex/deskflow/model"
	"github.com/richinex/deskflow/orchestration"
)

// stubProvider replays canned responses and records the prompts it saw.
type stubProvider struct {
	replies []string
	calls   int
	seen    [][]llm.ChatMessage
	err     error
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.ChatResponse, error) {
	return s.ChatWithFormat(ctx, messages, nil)
}

func (s *stubProvider) ChatWithFormat(ctx context.Context, messages []llm.ChatMessage, _ *llm.ResponseFormat) (llm.ChatResponse, error) {
	s.seen = append(s.seen, messages)
	if s.err != nil {
		return llm.ChatResponse{}, s.err
	}
	reply := s.replies[s.calls%len(s.replies)]
	s.calls++
	return llm.ChatResponse{Content: reply}, nil
}

func (s *stubProvider) StreamChat(ctx context.Context, messages []llm.ChatMessage, chunks chan<- string) (*llm.TokenUsage, error) {
	resp, err := s.ChatWithFormat(ctx, messages, nil)
	if err != nil {
		return nil, err
	}
	chunks <- resp.Content
	return nil, nil
}

func clientWith(replies ...string) (*llm.Client, *stubProvider) {
	p := &stubProvider{replies: replies}
	return llm.NewClient(p), p
}

func TestRouterDecodesSingleStep(t *testing.T) {
	client, _ := clientWith(`{"steps": [{"worker": "catalog", "context": "find Miles Davis albums"}]}`)
	router := NewRouter(client)

	conv := model.NewConversation(3)
	conv.Append(model.UserMessage("What Miles Davis albums do you have?"))

	decision, err := router.Decide(context.Background(), conv)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decision.Terminate {
		t.Fatal("expected a dispatch, got terminate")
	}
	if len(decision.Dispatches) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(decision.Dispatches))
	}
	d := decision.Dispatches[0]
	if d.Target != "catalog" || d.Context != "find Miles Davis albums" {
		t.Errorf("unexpected dispatch: %+v", d)
	}
}

func TestRouterDecodesFencedMultiStep(t *testing.T) {
	client, _ := clientWith("```json\n{\"steps\": [{\"worker\": \"catalog\", \"context\": \"a\"}, {\"worker\": \"invoice\", \"context\": \"b\"}]}\n```")
	router := NewRouter(client)

	conv := model.NewConversation(3)
	conv.Append(model.UserMessage("two things"))

	decision, err := router.Decide(context.Background(), conv)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if len(decision.Dispatches) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(decision.Dispatches))
	}
	if decision.Dispatches[1].Target != "invoice" {
		t.Errorf("unexpected second dispatch: %+v", decision.Dispatches[1])
	}
}

func TestRouterDone(t *testing.T) {
	for _, reply := range []string{
		`{"done": true}`,
		`{"steps": [{"worker": "END", "context": ""}]}`,
	} {
		client, _ := clientWith(reply)
		conv := model.NewConversation(3)
		conv.Append(model.UserMessage("thanks, that's all"))

		decision, err := NewRouter(client).Decide(context.Background(), conv)
		if err != nil {
			t.Fatalf("decide(%q): %v", reply, err)
		}
		if !decision.Terminate {
			t.Errorf("decide(%q): expected terminate", reply)
		}
	}
}

func TestRouterMalformedOutput(t *testing.T) {
	cases := []string{
		"I think the catalog agent should handle this.",
		`{"steps": []}`,
		`{"steps": [{"context": "missing worker"}]}`,
		`{"steps": [{"worker": "catalog"}]}`,
	}
	for _, reply := range cases {
		client, _ := clientWith(reply)
		conv := model.NewConversation(3)
		conv.Append(model.UserMessage("hi"))

		_, err := NewRouter(client).Decide(context.Background(), conv)
		var rerr *orchestration.RoutingError
		if !errors.As(err, &rerr) {
			t.Errorf("decide(%q): expected RoutingError, got %v", reply, err)
		}
	}
}

func TestRouterModelFailure(t *testing.T) {
	p := &stubProvider{err: errors.New("rate limited")}
	router := NewRouter(llm.NewClient(p))

	conv := model.NewConversation(3)
	conv.Append(model.UserMessage("hi"))

	_, err := router.Decide(context.Background(), conv)
	var rerr *orchestration.RoutingError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RoutingError, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("cause lost: %v", err)
	}
}

func TestSpecialistAnswersEnvelope(t *testing.T) {
	client, p := clientWith("We carry Kind of Blue and Bitches Brew.")
	catalog := NewCatalogSpecialist(client)

	if catalog.ID() != "catalog" {
		t.Errorf("unexpected id %q", catalog.ID())
	}

	state := model.NewConversation(1)
	state.Append(model.UserMessage("list albums by Miles Davis"))

	result, err := catalog.Run(context.Background(), orchestration.Envelope{
		Target:      "catalog",
		Instruction: "list albums by Miles Davis",
		State:       state,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.Messages))
	}
	m := result.Messages[0]
	if m.Worker != "catalog" || !strings.Contains(m.Content, "Kind of Blue") {
		t.Errorf("unexpected result message: %+v", m)
	}

	// The system prompt leads and the task follows.
	prompt := p.seen[0]
	if prompt[0].Role != "system" {
		t.Errorf("expected system prompt first, got %+v", prompt[0])
	}
	if prompt[len(prompt)-1].Content != "list albums by Miles Davis" {
		t.Errorf("task missing from prompt: %+v", prompt)
	}
}

func TestSummarizerComposesAssistantReply(t *testing.T) {
	client, _ := clientWith("Here is a summary of what we found.")
	summarizer := NewSummarizer(client)

	conv := model.NewConversation(0)
	conv.Append(
		model.UserMessage("question"),
		model.WorkerMessage("catalog", "three albums"),
	)

	reply, err := summarizer.Synthesize(context.Background(), conv)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if reply.Role != model.RoleAssistant {
		t.Errorf("expected assistant role, got %q", reply.Role)
	}
	if reply.Content == "" {
		t.Error("expected non-empty summary")
	}
}

func TestToChatMessagesTagsWorkers(t *testing.T) {
	conv := model.NewConversation(1)
	conv.LoadedMemory = "prefers jazz"
	conv.Append(
		model.UserMessage("hello"),
		model.WorkerMessage("catalog", "found it"),
		model.FailureMessage("invoice", "timed out"),
		model.AssistantMessage("summary"),
	)

	msgs := toChatMessages(conv)
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "prefers jazz") {
		t.Errorf("loaded memory not surfaced: %+v", msgs[0])
	}
	if !strings.Contains(msgs[2].Content, "catalog:") {
		t.Errorf("worker output untagged: %+v", msgs[2])
	}
	if !strings.Contains(msgs[3].Content, "failed") {
		t.Errorf("failure entry not annotated: %+v", msgs[3])
	}
}
