package storage

import (
	"context"
	"testing"

	"github.com/richinex/deskflow/model"
)

func stores(t *testing.T) map[string]ConversationStore {
	t.Helper()
	sqlite, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]ConversationStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func sampleConversation() *model.Conversation {
	conv := model.NewConversation(4)
	conv.CustomerID = "cust-9"
	conv.LoadedMemory = "prefers jazz"
	conv.Append(
		model.UserMessage("what albums do you have?"),
		model.WorkerMessage("catalog", "Kind of Blue"),
		model.FailureMessage("invoice", "timed out"),
		model.AssistantMessage("here is what we found"),
	)
	return conv
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleConversation()

			if err := store.Save(ctx, "s1", want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := store.Load(ctx, "s1")
			if err != nil {
				t.Fatalf("load: %v", err)
			}

			if got.CustomerID != want.CustomerID || got.LoadedMemory != want.LoadedMemory {
				t.Errorf("auxiliary fields lost: %+v", got)
			}
			if got.RemainingSteps != want.RemainingSteps {
				t.Errorf("remaining steps lost: %d", got.RemainingSteps)
			}
			if len(got.Messages) != len(want.Messages) {
				t.Fatalf("expected %d messages, got %d", len(want.Messages), len(got.Messages))
			}
			for i := range want.Messages {
				if got.Messages[i] != want.Messages[i] {
					t.Errorf("message %d: got %+v, want %+v", i, got.Messages[i], want.Messages[i])
				}
			}
		})
	}
}

func TestLoadMissingSessionIsEmpty(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Load(context.Background(), "nope")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got == nil || len(got.Messages) != 0 {
				t.Errorf("expected empty conversation, got %+v", got)
			}
		})
	}
}

func TestSaveReplacesPriorState(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Save(ctx, "s1", sampleConversation()); err != nil {
				t.Fatalf("save: %v", err)
			}

			short := model.NewConversation(2)
			short.Append(model.UserMessage("only this"))
			if err := store.Save(ctx, "s1", short); err != nil {
				t.Fatalf("re-save: %v", err)
			}

			got, err := store.Load(ctx, "s1")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(got.Messages) != 1 {
				t.Errorf("old messages survived replace: %d entries", len(got.Messages))
			}
		})
	}
}

func TestDeleteAndExists(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Save(ctx, "s1", sampleConversation()); err != nil {
				t.Fatalf("save: %v", err)
			}

			ok, err := store.Exists(ctx, "s1")
			if err != nil || !ok {
				t.Fatalf("exists after save: %v, %v", ok, err)
			}

			if err := store.Delete(ctx, "s1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			ok, err = store.Exists(ctx, "s1")
			if err != nil || ok {
				t.Errorf("exists after delete: %v, %v", ok, err)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"a", "b", "c"} {
				if err := store.Save(ctx, id, sampleConversation()); err != nil {
					t.Fatalf("save %s: %v", id, err)
				}
			}
			ids, err := store.ListSessions(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(ids) != 3 {
				t.Errorf("expected 3 sessions, got %v", ids)
			}
		})
	}
}

func TestSavedStateIsolatedFromCaller(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	conv := sampleConversation()
	if err := store.Save(ctx, "s1", conv); err != nil {
		t.Fatalf("save: %v", err)
	}
	conv.Messages[0].Content = "mutated"

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Messages[0].Content == "mutated" {
		t.Error("caller mutation leaked into stored state")
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
