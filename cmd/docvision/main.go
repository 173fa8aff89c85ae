// Package main provides the docvision CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/docvision/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider string
	dbPath   string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "docvision",
		Short: "Adaptive vision agent for document question answering",
		Long: `DocVision answers questions about documents stored as page images.

Queries run through an adaptive loop: the agent plans analysis tasks,
selects relevant pages, analyzes them with a vision model, and revises
the plan as findings come in before synthesizing a final answer.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, openrouter, anthropic, gemini)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path for document and session storage")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(docsCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func globalOpts() cli.Options {
	return cli.Options{
		Provider: provider,
		DBPath:   dbPath,
		Verbose:  verbose,
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [question]",
		Short: "Answer a single question against the document knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Query(context.Background(), args[0], globalOpts())
		},
	}
}

func chatCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session with conversation memory",
		Long: `Start an interactive question-answering session.

Conversation history is persisted per session and used to resolve
follow-up questions ("what about Q3?", "compare that to last year").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(context.Background(), sessionID, globalOpts())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")

	return cmd
}

func docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage the document knowledge base",
	}

	cmd.AddCommand(docsAddCmd())
	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsSearchCmd())
	cmd.AddCommand(docsDeleteCmd())

	return cmd
}

func docsAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add [directory]",
		Short: "Add a document from a directory of page images",
		Long: `Add a document whose pages are pre-rendered image files.

Image files (.jpg, .jpeg, .png) in the directory are ordered by filename
and become pages 1..N. The document is summarized so the agent can route
tasks to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.AddDocument(context.Background(), name, args[0], globalOpts())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Document name (defaults to the directory name)")

	return cmd
}

func docsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListDocuments(context.Background(), globalOpts())
		},
	}
}

func docsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search documents by name or summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.SearchDocuments(context.Background(), args[0], globalOpts())
		},
	}
}

func docsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a document by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.DeleteDocument(context.Background(), args[0], globalOpts())
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show engine configuration and knowledge base stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Stats(context.Background(), globalOpts())
		},
	}
}
