package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// Summarizer produces the short document summaries shown to the planner
// in the document catalog. It is invoked at ingest time, not during query
// processing.
type Summarizer struct {
	client *llm.Client
	config Config
	logger zerolog.Logger
}

// NewSummarizer creates a document summarizer.
func NewSummarizer(client *llm.Client, config Config, logger zerolog.Logger) *Summarizer {
	return &Summarizer{client: client, config: config, logger: logger}
}

// SummarizeDocument looks at up to the first MaxSummaryPages pages and
// returns a planner-facing summary of the document's contents.
func (s *Summarizer) SummarizeDocument(ctx context.Context, doc *model.Document) (string, error) {
	if len(doc.Pages) == 0 {
		return "", fmt.Errorf("document %s has no pages to summarize", doc.Name)
	}

	pages := doc.Pages
	if len(pages) > s.config.MaxSummaryPages {
		pages = pages[:s.config.MaxSummaryPages]
	}

	parts := make([]llm.Part, 0, 2*len(pages)+1)
	parts = append(parts, llm.TextPart(documentSummaryPrompt))
	for _, page := range pages {
		parts = append(parts,
			llm.ImagePart(page.ImagePath, s.config.VisionDetail),
			llm.TextPart(fmt.Sprintf("[Page %d]", page.PageNumber)),
		)
	}

	resp, err := s.client.ProcessMultimodal(ctx, []llm.Message{
		llm.SystemMessage(systemSummarizer),
		llm.MultimodalMessage(parts...),
	}, llm.CallOptions{MaxTokens: 300, Temperature: 0.3})
	if err != nil {
		return "", fmt.Errorf("summarizing document %s: %w", doc.Name, err)
	}

	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return "", fmt.Errorf("empty summary for document %s", doc.Name)
	}

	s.logger.Info().Str("document", doc.Name).Int("pages", len(pages)).Msg("document summarized")
	return summary, nil
}
