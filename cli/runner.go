// Command execution for CLI commands.
//
// Information Hiding:
// - Supervisor/agent setup hidden
// - Session persistence hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/richinex/deskflow/agents"
	"github.com/richinex/deskflow/config"
	"github.com/richinex/deskflow/llm"
	"github.com/richinex/deskflow/orchestration"
	"github.com/richinex/deskflow/storage"
)

// Options holds CLI execution options. Zero values defer to environment
// configuration.
type Options struct {
	Provider      string
	MaxCycles     int
	TimeoutSecs   int
	ContextPolicy string
	Handoff       bool
	Verbose       bool

	// CustomerID and Memory seed the conversation's auxiliary context.
	CustomerID string
	Memory     string
}

// Ask answers a single question and exits.
func Ask(ctx context.Context, question string, opts Options) error {
	sup, err := createSupervisor(opts)
	if err != nil {
		return err
	}

	seedConversation(sup, opts)

	reply, err := sup.Submit(ctx, question)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	fmt.Printf("%s\n", reply.Content)
	return nil
}

// Chat starts an interactive support session. When sessionID is non-empty
// the conversation is persisted to SQLite and resumed across runs.
func Chat(ctx context.Context, sessionID, dbPath string, opts Options) error {
	sup, err := createSupervisor(opts)
	if err != nil {
		return err
	}

	var store storage.ConversationStore
	if sessionID != "" {
		s, err := storage.OpenSqlite(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()
		store = s

		conv, err := store.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if len(conv.Messages) > 0 {
			fmt.Printf("Resuming session '%s' (%d messages)\n\n", sessionID, len(conv.Messages))
		}
		sup.Restore(conv)
	}

	seedConversation(sup, opts)

	fmt.Printf("Support chat (%s). Type 'exit' to quit.\n\n", strings.Join(workerNames(sup), ", "))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptFor(sup))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply, err := sup.Submit(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
			continue
		}

		fmt.Printf("\n%s\n\n", reply.Content)

		if store != nil {
			if err := store.Save(ctx, sessionID, sup.Conversation()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
			}
		}
	}

	return scanner.Err()
}

// Sessions lists stored session IDs, most recently updated first.
func Sessions(ctx context.Context, dbPath string) error {
	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	ids, err := store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("No stored sessions.")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// createSupervisor wires the full stack: provider, router, specialists,
// summarizer, supervisor.
func createSupervisor(opts Options) (*orchestration.Supervisor, error) {
	provider, settings, err := createProvider(opts.Provider)
	if err != nil {
		return nil, err
	}

	cfg := settings.OrchestrationConfig()
	if opts.MaxCycles > 0 {
		cfg.MaxCycles = opts.MaxCycles
	}
	if opts.TimeoutSecs > 0 {
		cfg.WorkerTimeout = time.Duration(opts.TimeoutSecs) * time.Second
	}
	if opts.ContextPolicy != "" {
		policy, err := orchestration.ParseContextPolicy(opts.ContextPolicy)
		if err != nil {
			return nil, err
		}
		cfg.Policy = policy
	}
	if opts.Handoff {
		cfg.Handoff = true
	}

	client := llm.NewClient(provider)

	sup := orchestration.New(
		agents.NewRouter(client),
		agents.NewSummarizer(client),
		[]orchestration.Worker{
			agents.NewCatalogSpecialist(client),
			agents.NewInvoiceSpecialist(client),
		},
		cfg,
	)
	sup.SetVerbose(opts.Verbose)

	return sup, nil
}

func createProvider(providerName string) (llm.Provider, config.Settings, error) {
	if providerName == "" {
		return nil, config.Settings{}, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, config.Settings{}, err
	}

	settings, err := config.New(providerName)
	if err != nil {
		return nil, config.Settings{}, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, config.Settings{}, err
	}

	provider, err := providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
	if err != nil {
		return nil, config.Settings{}, err
	}

	return provider, settings, nil
}

// seedConversation applies customer context flags to the retained
// conversation without disturbing any resumed transcript.
func seedConversation(sup *orchestration.Supervisor, opts Options) {
	conv := sup.Conversation()
	if opts.CustomerID != "" {
		conv.CustomerID = opts.CustomerID
	}
	if opts.Memory != "" {
		conv.LoadedMemory = opts.Memory
	}
}

// promptFor shows who will handle the next message: the supervisor, or a
// specialist that currently owns the conversation.
func promptFor(sup *orchestration.Supervisor) string {
	if owner := sup.CurrentOwner(); owner != "" {
		return fmt.Sprintf("%s> ", owner)
	}
	return "> "
}

func workerNames(sup *orchestration.Supervisor) []string {
	ids := sup.WorkerIDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return names
}
