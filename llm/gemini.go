// Google Gemini Provider implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Request/response format for Gemini API
// - System instruction handling via config
// - Page images as inline data blobs

package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	visionModel string
	initErr     error // Stores client initialization error for deferred reporting
}

// NewGeminiProvider creates a new Gemini provider.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiProvider(apiKey, model, visionModel string) *GeminiProvider {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &GeminiProvider{
			client:      nil,
			model:       model,
			visionModel: visionModel,
			initErr:     fmt.Errorf("failed to initialize Gemini client: %w", err),
		}
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		visionModel: visionModel,
		initErr:     nil,
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the current text model.
func (p *GeminiProvider) Model() string {
	return p.model
}

// ProcessText sends a text-only completion request.
func (p *GeminiProvider) ProcessText(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	contents, systemInstruction := convertToGeminiMessages(messages)
	return p.complete(ctx, p.model, contents, systemInstruction, opts)
}

// ProcessMultimodal sends a completion request with text and page images.
func (p *GeminiProvider) ProcessMultimodal(ctx context.Context, messages []Message, opts CallOptions) (Response, error) {
	contents, systemInstruction, err := convertToGeminiMultimodal(messages)
	if err != nil {
		return Response{}, err
	}
	return p.complete(ctx, p.visionModel, contents, systemInstruction, opts)
}

func (p *GeminiProvider) complete(ctx context.Context, model string, contents []*genai.Content, systemInstruction string, opts CallOptions) (Response, error) {
	if p.initErr != nil {
		return Response{}, p.initErr
	}
	if p.client == nil {
		return Response{}, fmt.Errorf("gemini client not initialized")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	response, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return Response{}, fmt.Errorf("chat completion failed: %w", err)
	}

	content := response.Text()
	if content == "" {
		return Response{}, fmt.Errorf("empty response from Gemini")
	}

	var usage *TokenUsage
	if response.UsageMetadata != nil {
		usage = &TokenUsage{
			PromptTokens:     uint32(response.UsageMetadata.PromptTokenCount),
			CompletionTokens: uint32(response.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      uint32(response.UsageMetadata.TotalTokenCount),
		}
	}

	return Response{Text: content, Cost: costForUsage(model, usage), Usage: usage}, nil
}

// convertToGeminiMessages converts text-only messages to Gemini format.
// Extracts the system message and returns it separately.
func convertToGeminiMessages(messages []Message) ([]*genai.Content, string) {
	var contents []*genai.Content
	var systemInstruction string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemInstruction = msg.Content
		case "user":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}

	return contents, systemInstruction
}

// convertToGeminiMultimodal converts messages whose user turns may carry
// image parts. Image files are inlined as raw bytes.
func convertToGeminiMultimodal(messages []Message) ([]*genai.Content, string, error) {
	var contents []*genai.Content
	var systemInstruction string

	for _, msg := range messages {
		if len(msg.Parts) == 0 {
			switch msg.Role {
			case "system":
				systemInstruction = msg.Content
			case "user":
				contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
			case "assistant":
				contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
			}
			continue
		}

		content := &genai.Content{Role: genai.RoleUser}
		for _, part := range msg.Parts {
			switch part.Type {
			case PartText:
				content.Parts = append(content.Parts, &genai.Part{Text: part.Text})
			case PartImage:
				data, err := os.ReadFile(part.ImagePath)
				if err != nil {
					return nil, "", fmt.Errorf("failed to read image %s: %w", part.ImagePath, err)
				}
				content.Parts = append(content.Parts, &genai.Part{
					InlineData: &genai.Blob{
						MIMEType: "image/jpeg",
						Data:     data,
					},
				})
			}
		}
		contents = append(contents, content)
	}

	return contents, systemInstruction, nil
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
