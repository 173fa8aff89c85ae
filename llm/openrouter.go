// OpenRouter Provider implementation.
//
// OpenRouter exposes an OpenAI-compatible Chat Completions API, so this
// provider reuses the go-openai client with a custom base URL. Model names
// carry a vendor prefix, e.g. "openai/gpt-4o" or "google/gemini-2.5-flash".

package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider implements the Provider interface for OpenRouter.
type OpenRouterProvider struct {
	client      *openai.Client
	model       string
	visionModel string
}

// NewOpenRouterProvider creates a new OpenRouter provider.
func NewOpenRouterProvider(apiKey, model, visionModel string) *OpenRouterProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	return &OpenRouterProvider{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		visionModel: visionModel,
	}
}

// Name returns the provider name.
func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

// Model returns the current text model.
func (p *OpenRouterProvider) Model() string {
	return p.model
}

// ProcessText sends a text-only completion request.
func (p *OpenRouterProvider) ProcessText(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	return completeOpenAI(ctx, p.client, p.model, convertToOpenAIMessages(messages), opts)
}

// ProcessMultimodal sends a completion request with text and page images.
func (p *OpenRouterProvider) ProcessMultimodal(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	converted, err := convertToOpenAIMultimodal(messages)
	if err != nil {
		return Response{}, err
	}
	return completeOpenAI(ctx, p.client, p.visionModel, converted, opts)
}

// Verify OpenRouterProvider implements Provider
var _ Provider = (*OpenRouterProvider)(nil)
