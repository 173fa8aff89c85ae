// Package llm provides shared data models for vision language model
// providers.
package llm

// Part types for multimodal message content.
const (
	PartText  = "text"
	PartImage = "image"
)

// Part is one typed element of a multimodal user turn: either text or a
// reference to a page image on disk.
type Part struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
	Detail    string `json:"detail,omitempty"` // image detail hint: "low", "high", "auto"
}

// TextPart creates a text content part.
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// ImagePart creates an image content part referencing an image file.
func ImagePart(path, detail string) Part {
	return Part{Type: PartImage, ImagePath: path, Detail: detail}
}

// Message represents a chat message. Text-only messages use Content;
// multimodal user turns use Parts instead.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Parts   []Part `json:"parts,omitempty"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a text-only user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// MultimodalMessage creates a user message with mixed text/image parts.
func MultimodalMessage(parts ...Part) Message {
	return Message{Role: "user", Parts: parts}
}

// CallOptions bound a single model call.
type CallOptions struct {
	MaxTokens   int
	Temperature float32
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}

// Response represents a response from a provider. Cost is the monetary
// cost of the call in USD when the provider can determine it, nil
// otherwise.
type Response struct {
	Text  string
	Cost  *float64
	Usage *TokenUsage
}
