package model

import "testing"

func TestConsumeStepNeverGoesNegative(t *testing.T) {
	c := NewConversation(2)

	if !c.ConsumeStep() {
		t.Fatal("expected first consume to succeed")
	}
	if !c.ConsumeStep() {
		t.Fatal("expected second consume to succeed")
	}
	if c.ConsumeStep() {
		t.Error("expected consume to fail once budget is exhausted")
	}
	if c.RemainingSteps != 0 {
		t.Errorf("expected remaining steps 0, got %d", c.RemainingSteps)
	}
	if !c.Exhausted() {
		t.Error("expected conversation to report exhausted")
	}
}

func TestNewConversationClampsNegativeBudget(t *testing.T) {
	c := NewConversation(-5)
	if c.RemainingSteps != 0 {
		t.Errorf("expected clamped budget 0, got %d", c.RemainingSteps)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := NewConversation(3)
	c.CustomerID = "cust-42"
	c.LoadedMemory = "prefers jazz"
	c.Append(UserMessage("hello"))

	snapshot := c.Clone()
	c.Append(AssistantMessage("hi there"))
	c.Messages[0].Content = "mutated"

	if len(snapshot.Messages) != 1 {
		t.Fatalf("expected snapshot to keep 1 message, got %d", len(snapshot.Messages))
	}
	if snapshot.Messages[0].Content != "hello" {
		t.Errorf("snapshot message mutated: %q", snapshot.Messages[0].Content)
	}
	if snapshot.CustomerID != "cust-42" || snapshot.LoadedMemory != "prefers jazz" {
		t.Error("snapshot lost auxiliary fields")
	}
}

func TestLastMessageEmpty(t *testing.T) {
	c := NewConversation(1)
	if got := c.LastMessage(); got.Content != "" || got.Role != "" {
		t.Errorf("expected zero message, got %+v", got)
	}

	c.Append(UserMessage("first"), WorkerMessage("catalog", "Album A"))
	if got := c.LastMessage(); got.Worker != "catalog" {
		t.Errorf("expected last message from catalog worker, got %+v", got)
	}
}

func TestFailureMessageMarksEntry(t *testing.T) {
	m := FailureMessage("invoice", "worker timed out")
	if !m.Failed {
		t.Error("expected failure marker")
	}
	if m.Worker != "invoice" || m.Role != RoleWorker {
		t.Errorf("unexpected attribution: %+v", m)
	}
}
