package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	ijson "github.com/richinex/docvision/internal/json"
	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// Reformulator rewrites a follow-up question into a self-contained one
// using resolved conversation context.
type Reformulator struct {
	client *llm.Client
	logger zerolog.Logger
}

// NewReformulator creates a query reformulator.
func NewReformulator(client *llm.Client, logger zerolog.Logger) *Reformulator {
	return &Reformulator{client: client, logger: logger}
}

type reformulationResult struct {
	ReformulatedQuery string `json:"reformulated_query"`
}

// Reformulate resolves references in query against the conversation
// context. Returns ErrQueryReformulation on malformed model output; the
// caller keeps the original query in that case.
func (r *Reformulator) Reformulate(ctx context.Context, query, contextText string, recent []model.ConversationMessage) (string, error) {
	prompt := fmt.Sprintf(reformulationPrompt, contextText, recentTopics(recent), query)

	resp, err := r.client.ProcessText(ctx, []llm.Message{
		llm.SystemMessage(systemReformulator),
		llm.UserMessage(prompt),
	}, llm.CallOptions{MaxTokens: 200, Temperature: 0.1})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryReformulation, err)
	}

	parsed, err := ijson.ExtractJSONFromResponse[reformulationResult](resp.Text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryReformulation, err)
	}

	reformulated := strings.TrimSpace(parsed.ReformulatedQuery)
	if reformulated == "" {
		return "", fmt.Errorf("%w: empty reformulated query", ErrQueryReformulation)
	}

	if reformulated != query {
		r.logger.Debug().Str("original", query).Str("reformulated", reformulated).Msg("query reformulated")
	}
	return reformulated, nil
}
