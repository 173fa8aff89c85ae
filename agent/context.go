package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// ContextProcessor condenses conversation history before it is used for
// query reformulation. Short histories pass through verbatim; once the
// exchange count reaches the summarization threshold, older turns are
// summarized with one text call and only recent turns stay verbatim.
type ContextProcessor struct {
	client *llm.Client
	config Config
	logger zerolog.Logger
}

// NewContextProcessor creates a context processor.
func NewContextProcessor(client *llm.Client, config Config, logger zerolog.Logger) *ContextProcessor {
	return &ContextProcessor{client: client, config: config, logger: logger}
}

// Process returns the context text for downstream stages and the messages
// that remain verbatim. Summarization failure falls back to the raw
// history; this stage never fails the query.
func (p *ContextProcessor) Process(ctx context.Context, conversation *model.Conversation, query string) (string, []model.ConversationMessage) {
	messages := conversation.Messages()
	if len(messages) == 0 {
		return "", nil
	}

	// Cap memory depth at MaxConversationTurns exchanges.
	if max := p.config.MaxConversationTurns * 2; len(messages) > max {
		messages = messages[len(messages)-max:]
	}

	exchanges := len(messages) / 2
	if exchanges < p.config.TurnsToSummarize {
		return formatMessages(messages), messages
	}

	keep := p.config.TurnsToKeepFull * 2
	if keep > len(messages) {
		keep = len(messages)
	}
	older := messages[:len(messages)-keep]
	recent := messages[len(messages)-keep:]

	summary, err := p.summarize(ctx, older)
	if err != nil {
		p.logger.Warn().Err(err).Msg("conversation summarization failed, using raw history")
		return formatMessages(messages), messages
	}

	contextText := "CONVERSATION SUMMARY:\n" + summary + "\n\nRECENT MESSAGES:\n" + formatMessages(recent)
	return contextText, recent
}

func (p *ContextProcessor) summarize(ctx context.Context, messages []model.ConversationMessage) (string, error) {
	prompt := fmt.Sprintf(summarizationPrompt, formatMessages(messages))
	resp, err := p.client.ProcessText(ctx, []llm.Message{
		llm.UserMessage(prompt),
	}, llm.CallOptions{MaxTokens: 300, Temperature: 0.3})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContextProcessing, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// formatMessages renders history as "User:"/"Assistant:" lines.
func formatMessages(messages []model.ConversationMessage) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		role := "User"
		if msg.Role == model.RoleAssistant {
			role = "Assistant"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}

// recentTopics extracts the latest user questions for the reformulation
// prompt.
func recentTopics(messages []model.ConversationMessage) string {
	var topics []string
	for _, msg := range messages {
		if msg.Role == model.RoleUser {
			topics = append(topics, msg.Content)
		}
	}
	if len(topics) > 3 {
		topics = topics[len(topics)-3:]
	}
	return strings.Join(topics, "; ")
}
