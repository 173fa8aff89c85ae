package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	ijson "github.com/richinex/docvision/internal/json"
	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// PageSelector picks, from a pool of candidate pages, the subset worth
// visual analysis for a task.
type PageSelector struct {
	client *llm.Client
	config Config
	logger zerolog.Logger
}

// NewPageSelector creates a page selector.
func NewPageSelector(client *llm.Client, config Config, logger zerolog.Logger) *PageSelector {
	return &PageSelector{client: client, config: config, logger: logger}
}

type pageSelection struct {
	SelectedPages []int `json:"selected_pages"`
}

// SelectPages shows every pool page to the vision model and returns the
// pages it names, in the model's order, deduplicated and capped at
// MaxPagesPerTask. Page numbers not present in the pool are dropped.
// An empty pool returns an empty selection without a model call; any
// failure returns an empty selection with ErrPageSelection, never an
// aborted query.
func (s *PageSelector) SelectPages(ctx context.Context, task *model.AgentTask, pool []model.Page) ([]model.Page, error) {
	if len(pool) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(pageSelectionPrompt, task.Name, task.Description)
	parts := make([]llm.Part, 0, 2*len(pool)+1)
	parts = append(parts, llm.TextPart(prompt))
	for _, page := range pool {
		parts = append(parts,
			llm.ImagePart(page.ImagePath, s.config.VisionDetail),
			llm.TextPart(fmt.Sprintf("[Page %d from %s]", page.PageNumber, page.DocumentName)),
		)
	}

	resp, err := s.client.ProcessMultimodal(ctx, []llm.Message{
		llm.SystemMessage(systemPageSelector),
		llm.MultimodalMessage(parts...),
	}, llm.CallOptions{MaxTokens: 200, Temperature: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageSelection, err)
	}

	parsed, err := ijson.ExtractJSONFromResponse[pageSelection](resp.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageSelection, err)
	}

	byNumber := make(map[int]model.Page, len(pool))
	for _, page := range pool {
		if _, exists := byNumber[page.PageNumber]; !exists {
			byNumber[page.PageNumber] = page
		}
	}

	selected := make([]model.Page, 0, len(parsed.SelectedPages))
	taken := make(map[int]bool, len(parsed.SelectedPages))
	for _, number := range parsed.SelectedPages {
		if len(selected) == s.config.MaxPagesPerTask {
			break
		}
		page, ok := byNumber[number]
		if !ok || taken[number] {
			continue
		}
		taken[number] = true
		selected = append(selected, page)
	}

	s.logger.Debug().Str("task", task.Name).Int("pool", len(pool)).Int("selected", len(selected)).Msg("pages selected")
	return selected, nil
}
