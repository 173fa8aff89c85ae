// Command execution for CLI commands.
//
// Information Hiding:
// - Engine and storage setup hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/richinex/docvision/agent"
	"github.com/richinex/docvision/config"
	"github.com/richinex/docvision/internal/logging"
	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
	"github.com/richinex/docvision/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	DBPath   string
	Verbose  bool
}

// env is everything a command needs: the engine, its storage and the
// resolved settings.
type env struct {
	settings config.Settings
	client   *llm.Client
	store    *storage.SqliteStorage
	engine   *agent.Orchestrator
	logger   zerolog.Logger
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
}

// setup resolves settings, opens storage and builds the engine.
func setup(opts Options) (*env, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}

	level := settings.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Pretty: settings.Log.Pretty})

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = settings.Storage.DatabasePath
	}
	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return nil, err
	}

	client, err := createClient(settings)
	if err != nil {
		store.Close()
		return nil, err
	}

	engine := agent.NewOrchestrator(client, store, agentConfig(settings), logger)
	return &env{
		settings: settings,
		client:   client,
		store:    store,
		engine:   engine,
		logger:   logger,
	}, nil
}

func createClient(settings config.Settings) (*llm.Client, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProviderBuilder(providerType).
		Model(settings.LLM.Model).
		VisionModel(settings.LLM.VisionModel).
		APIKey(apiKey)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(provider), nil
}

func agentConfig(settings config.Settings) agent.Config {
	cfg := agent.DefaultConfig()
	cfg.MaxIterations = settings.Agent.MaxIterations
	cfg.MaxPagesPerTask = settings.Agent.MaxPagesPerTask
	cfg.MaxTasksPerPlan = settings.Agent.MaxTasksPerPlan
	cfg.MaxSummaryPages = settings.Agent.MaxSummaryPages
	cfg.VisionDetail = settings.Agent.VisionDetail
	cfg.ClassifierFailClosed = settings.Agent.ClassifierFailClosed
	cfg.MaxConversationTurns = settings.Conversation.MaxTurns
	cfg.TurnsToSummarize = settings.Conversation.TurnsToSummarize
	cfg.TurnsToKeepFull = settings.Conversation.TurnsToKeepFull
	return cfg
}

// Query answers a single question and prints the result.
func Query(ctx context.Context, question string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	result := e.engine.ProcessQuery(ctx, question, nil, progressPrinter(opts.Verbose))

	fmt.Printf("\n%s\n", result.Answer)
	printResultSummary(&result)
	return nil
}

// Chat starts an interactive conversation. A named session persists its
// history in the database and resumes it on the next run.
func Chat(ctx context.Context, sessionID string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	if sessionID == "" {
		sessionID = "default"
	}

	history, err := e.store.LoadConversation(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	conversation := model.NewConversation(history...)
	if len(history) > 0 {
		fmt.Printf("Resuming session '%s' (%d messages)\n\n", sessionID, len(history))
	}

	fmt.Println("Ask questions about your documents. Type 'exit' to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		result := e.engine.ProcessQuery(ctx, question, conversation, progressPrinter(opts.Verbose))
		fmt.Printf("\n%s\n\n", result.Answer)

		if err := e.store.SaveConversation(ctx, sessionID, conversation.Messages()); err != nil {
			e.logger.Warn().Err(err).Msg("failed to persist session")
		}
	}

	return scanner.Err()
}

func printResultSummary(result *model.AgentQueryResult) {
	if len(result.TaskResults) == 0 {
		return
	}

	fmt.Printf("\n(%d tasks, %d pages analyzed, %.2fs", len(result.TaskResults),
		result.TotalPagesAnalyzed(), result.ProcessingTime.Seconds())
	if result.TotalCost > 0 {
		fmt.Printf(", $%.4f", result.TotalCost)
	}
	fmt.Println(")")

	for name, pages := range model.PagesByDocument(result.UniquePages()) {
		fmt.Printf("  %s: pages %v\n", name, pages)
	}
}
