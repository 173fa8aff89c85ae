// Vision language model provider interface.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Image encoding for vision input
// - Provider-specific error handling

package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
)

// Provider defines the abstract interface for vision language model
// providers. Implementations expose two operations: answering from a
// text-only conversation and answering from a mixed text+image
// conversation. Both return the response text and, when the provider can
// determine it, the monetary cost of the call.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// ProcessText sends a text-only completion request.
	ProcessText(ctx context.Context, messages []Message, opts CallOptions) (Response, error)

	// ProcessMultimodal sends a completion request whose user turns may
	// carry page images alongside text.
	ProcessMultimodal(ctx context.Context, messages []Message, opts CallOptions) (Response, error)
}

// encodeImageBase64 reads an image file and returns its base64 encoding.
// Shared by all providers.
func encodeImageBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// imageDataURL builds a data URL for providers that take images inline.
func imageDataURL(path string) (string, error) {
	encoded, err := encodeImageBase64(path)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + encoded, nil
}
