package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// Synthesizer merges all per-task findings into one final answer.
type Synthesizer struct {
	client *llm.Client
	logger zerolog.Logger
}

// NewSynthesizer creates a response synthesizer.
func NewSynthesizer(client *llm.Client, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{client: client, logger: logger}
}

// Synthesize answers query from the task analyses. Any returned text is
// accepted as-is; only a provider failure is an error (ErrResponseSynthesis,
// surfaced to the outermost handler).
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []model.TaskResult) (string, error) {
	var b strings.Builder
	for i, result := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "TASK: %s\nFINDINGS:\n%s", result.Task.Name, result.Analysis)
	}

	prompt := fmt.Sprintf(synthesisPrompt, query, b.String())

	resp, err := s.client.ProcessText(ctx, []llm.Message{
		llm.SystemMessage(systemSynthesis),
		llm.UserMessage(prompt),
	}, llm.CallOptions{MaxTokens: 800, Temperature: 0.4})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseSynthesis, err)
	}

	s.logger.Debug().Int("results", len(results)).Msg("response synthesized")
	return strings.TrimSpace(resp.Text), nil
}
