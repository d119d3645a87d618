// Package main provides the deskflow CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/deskflow/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider      string
	maxCycles     int
	timeoutSecs   int
	contextPolicy string
	handoff       bool
	verbose       bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "deskflow",
		Short: "LLM-routed customer support with specialist agents",
		Long: `A customer support supervisor that routes each message to specialist
agents (catalog, invoice), runs them concurrently, and composes their
answers into a single reply.

The supervisor consults a routing model each cycle and stops when the
model decides the question is answered or the step budget runs out.
With --handoff a specialist can take over the conversation directly.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxCycles, "max-cycles", "m", 0, "Routing step budget per conversation (0 = from environment)")
	rootCmd.PersistentFlags().IntVar(&timeoutSecs, "timeout", 0, "Per-specialist timeout in seconds (0 = from environment)")
	rootCmd.PersistentFlags().StringVar(&contextPolicy, "context", "", "Context policy for specialists: focused or full")
	rootCmd.PersistentFlags().BoolVar(&handoff, "handoff", false, "Allow specialists to take over the conversation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show routing and dispatch progress")

	// Add commands
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildOptions(customerID, memory string) cli.Options {
	return cli.Options{
		Provider:      provider,
		MaxCycles:     maxCycles,
		TimeoutSecs:   timeoutSecs,
		ContextPolicy: contextPolicy,
		Handoff:       handoff,
		Verbose:       verbose,
		CustomerID:    customerID,
		Memory:        memory,
	}
}

func askCmd() *cobra.Command {
	var customerID string
	var memory string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Ask(context.Background(), args[0], buildOptions(customerID, memory))
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "Customer identifier attached to the conversation")
	cmd.Flags().StringVar(&memory, "memory", "", "Known customer context passed to the agents")

	return cmd
}

func chatCmd() *cobra.Command {
	var sessionID string
	var dbPath string
	var customerID string
	var memory string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive support session",
		Long: `Start an interactive support session.

With --session the conversation is persisted to SQLite and resumed on
the next run with the same session ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(context.Background(), sessionID, dbPath, buildOptions(customerID, memory))
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", ".deskflow/deskflow.db", "Database path for storage")
	cmd.Flags().StringVar(&customerID, "customer", "", "Customer identifier attached to the conversation")
	cmd.Flags().StringVar(&memory, "memory", "", "Known customer context passed to the agents")

	return cmd
}

func sessionsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored session IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Sessions(context.Background(), dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", ".deskflow/deskflow.db", "Database path for storage")

	return cmd
}
