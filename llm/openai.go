// OpenAI Provider implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for OpenAI Chat Completions API
// - Image encoding as data URLs for vision input

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	visionModel string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, model, visionModel string) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		visionModel: visionModel,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the current text model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// ProcessText sends a text-only completion request.
func (p *OpenAIProvider) ProcessText(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	return completeOpenAI(ctx, p.client, p.model, convertToOpenAIMessages(messages), opts)
}

// ProcessMultimodal sends a completion request with text and page images.
func (p *OpenAIProvider) ProcessMultimodal(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	converted, err := convertToOpenAIMultimodal(messages)
	if err != nil {
		return Response{}, err
	}
	return completeOpenAI(ctx, p.client, p.visionModel, converted, opts)
}

// completeOpenAI issues one chat completion against an OpenAI-compatible
// endpoint. Shared with the OpenRouter provider.
func completeOpenAI(ctx context.Context, client *openai.Client, model string, messages []openai.ChatCompletionMessage, opts CallOptions) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("chat completion failed: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	usage := &TokenUsage{
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		TotalTokens:      uint32(resp.Usage.TotalTokens),
	}

	return Response{Text: content, Cost: costForUsage(model, usage), Usage: usage}, nil
}

// convertToOpenAIMessages converts text-only messages to OpenAI format.
func convertToOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return result
}

// convertToOpenAIMultimodal converts messages whose user turns may carry
// image parts. Image files are inlined as base64 data URLs.
func convertToOpenAIMultimodal(messages []Message) ([]openai.ChatCompletionMessage, error) {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		if len(msg.Parts) == 0 {
			result = append(result, openai.ChatCompletionMessage{
				Role:    msg.Role,
				Content: msg.Content,
			})
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch part.Type {
			case PartText:
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			case PartImage:
				dataURL, err := imageDataURL(part.ImagePath)
				if err != nil {
					return nil, err
				}
				detail := openai.ImageURLDetail(part.Detail)
				if part.Detail == "" {
					detail = openai.ImageURLDetailAuto
				}
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: detail,
					},
				})
			}
		}
		result = append(result, openai.ChatCompletionMessage{
			Role:         msg.Role,
			MultiContent: parts,
		})
	}
	return result, nil
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
