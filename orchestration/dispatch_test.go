package orchestration

import (
	"errors"
	"testing"

	"github.com/richinex/deskflow/model"
)

func newTestSupervisor(cfg Config) *Supervisor {
	return New(
		&scriptedOracle{decisions: nil},
		transcriptSynth{},
		[]Worker{echoWorker("catalog", "x", 0), echoWorker("invoice", "y", 0)},
		cfg,
	)
}

func TestBuildEnvelopeFocused(t *testing.T) {
	sup := newTestSupervisor(testConfig())
	sup.Conversation().CustomerID = "cust-1"
	sup.Conversation().LoadedMemory = "prior notes"
	sup.Conversation().Append(model.UserMessage("turn one"), model.WorkerMessage("catalog", "old answer"))

	env := sup.buildEnvelope(Dispatch{Target: "catalog", Context: "just this task"})

	if env.Target != "catalog" || env.Instruction != "just this task" {
		t.Errorf("unexpected envelope header: %+v", env)
	}
	if env.ID == "" {
		t.Error("expected a dispatch id")
	}
	if len(env.State.Messages) != 1 || env.State.Messages[0].Content != "just this task" {
		t.Errorf("focused state should hold only the instruction: %+v", env.State.Messages)
	}
	if env.State.CustomerID != "cust-1" || env.State.LoadedMemory != "prior notes" {
		t.Error("focused state lost auxiliary fields")
	}
}

func TestBuildEnvelopeFull(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = ContextFull
	sup := newTestSupervisor(cfg)
	sup.Conversation().Append(model.UserMessage("turn one"), model.WorkerMessage("catalog", "old answer"))

	env := sup.buildEnvelope(Dispatch{Target: "invoice", Context: "task"})

	if len(env.State.Messages) != 2 {
		t.Fatalf("full state should carry the transcript, got %d messages", len(env.State.Messages))
	}
	env.State.Messages[0].Content = "mutated"
	if sup.Conversation().Messages[0].Content != "turn one" {
		t.Error("envelope state must be an independent clone")
	}
}

func TestMergeOutcomesFillsAttribution(t *testing.T) {
	conv := model.NewConversation(3)
	outcomes := []outcome{
		{
			dispatch: Dispatch{Target: "catalog"},
			result:   WorkerResult{Messages: []model.Message{{Content: "bare answer"}}},
		},
		{
			dispatch: Dispatch{Target: "invoice"},
			err:      &WorkerFailure{Worker: "invoice", Err: errors.New("boom")},
		},
	}

	mergeOutcomes(conv, outcomes)

	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 merged entries, got %d", len(conv.Messages))
	}
	first := conv.Messages[0]
	if first.Worker != "catalog" || first.Role != model.RoleWorker {
		t.Errorf("merge did not fill attribution: %+v", first)
	}
	second := conv.Messages[1]
	if !second.Failed || second.Worker != "invoice" {
		t.Errorf("expected failure entry for invoice: %+v", second)
	}
}

func TestContextPolicyParsing(t *testing.T) {
	cases := []struct {
		in      string
		want    ContextPolicy
		wantErr bool
	}{
		{"focused", ContextFocused, false},
		{"", ContextFocused, false},
		{"full", ContextFull, false},
		{"everything", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseContextPolicy(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseContextPolicy(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseContextPolicy(%q) = %v, %v", tc.in, got, err)
		}
	}
}
