package model

// Message roles for conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one turn of conversation history. Immutable once
// appended.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserTurn creates a user message.
func UserTurn(content string) ConversationMessage {
	return ConversationMessage{Role: RoleUser, Content: content}
}

// AssistantTurn creates an assistant message.
func AssistantTurn(content string) ConversationMessage {
	return ConversationMessage{Role: RoleAssistant, Content: content}
}

// Conversation is caller-owned conversation history. The query engine
// treats it as read-only, except for the single query/answer exchange it
// appends at the end of a non-error, document-consuming query.
type Conversation struct {
	messages []ConversationMessage
}

// NewConversation creates a conversation seeded with history.
func NewConversation(history ...ConversationMessage) *Conversation {
	c := &Conversation{}
	c.messages = append(c.messages, history...)
	return c
}

// Len returns the number of turns. Nil-safe.
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.messages)
}

// Messages returns a copy of the history. Nil-safe.
func (c *Conversation) Messages() []ConversationMessage {
	if c == nil {
		return nil
	}
	copied := make([]ConversationMessage, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// AppendExchange appends one user/assistant pair. Nil-safe.
func (c *Conversation) AppendExchange(query, answer string) {
	if c == nil {
		return
	}
	c.messages = append(c.messages, UserTurn(query), AssistantTurn(answer))
}
