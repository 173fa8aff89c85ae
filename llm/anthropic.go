// Anthropic Provider implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - Page images as base64 image blocks

package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	visionModel string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model, visionModel string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:      client,
		model:       model,
		visionModel: visionModel,
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the current text model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// ProcessText sends a text-only completion request.
func (p *AnthropicProvider) ProcessText(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	anthropicMessages, systemPrompt := convertToAnthropicMessages(messages)
	return p.complete(ctx, p.model, anthropicMessages, systemPrompt, opts)
}

// ProcessMultimodal sends a completion request with text and page images.
func (p *AnthropicProvider) ProcessMultimodal(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	anthropicMessages, systemPrompt, err := convertToAnthropicMultimodal(messages)
	if err != nil {
		return Response{}, err
	}
	return p.complete(ctx, p.visionModel, anthropicMessages, systemPrompt, opts)
}

func (p *AnthropicProvider) complete(ctx context.Context, model string, messages []anthropic.MessageParam, systemPrompt string, opts CallOptions) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(opts.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(float64(opts.Temperature)),
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("chat completion failed: %w", err)
	}

	content := ""
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += variant.Text
		}
	}

	usage := &TokenUsage{
		PromptTokens:     uint32(message.Usage.InputTokens),
		CompletionTokens: uint32(message.Usage.OutputTokens),
		TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
	}

	return Response{Text: content, Cost: costForUsage(model, usage), Usage: usage}, nil
}

// convertToAnthropicMessages converts text-only messages to Anthropic format.
// Extracts the system message and returns it separately.
func convertToAnthropicMessages(messages []Message) ([]anthropic.MessageParam, string) {
	var anthropicMessages []anthropic.MessageParam
	var systemPrompt string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemPrompt = msg.Content
		case "user":
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case "assistant":
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return anthropicMessages, systemPrompt
}

// convertToAnthropicMultimodal converts messages whose user turns may carry
// image parts. Image files are inlined as base64 image blocks.
func convertToAnthropicMultimodal(messages []Message) ([]anthropic.MessageParam, string, error) {
	var anthropicMessages []anthropic.MessageParam
	var systemPrompt string

	for _, msg := range messages {
		if len(msg.Parts) == 0 {
			switch msg.Role {
			case "system":
				systemPrompt = msg.Content
			case "user":
				anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
					anthropic.NewTextBlock(msg.Content),
				))
			case "assistant":
				anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(
					anthropic.NewTextBlock(msg.Content),
				))
			}
			continue
		}

		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch part.Type {
			case PartText:
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			case PartImage:
				encoded, err := encodeImageBase64(part.ImagePath)
				if err != nil {
					return nil, "", err
				}
				blocks = append(blocks, anthropic.NewImageBlockBase64("image/jpeg", encoded))
			}
		}
		anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(blocks...))
	}

	return anthropicMessages, systemPrompt, nil
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
