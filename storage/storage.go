// Package storage persists documents, pages and chat sessions.
package storage

import (
	"context"

	"github.com/richinex/docvision/model"
)

// DocumentStorage is the document persistence surface. The query engine
// consumes only GetAllDocuments; the remaining operations serve the CLI.
type DocumentStorage interface {
	// SaveDocument inserts or replaces a document and its pages.
	SaveDocument(ctx context.Context, doc model.Document) error

	// GetDocument returns a document by id, or an error when absent.
	GetDocument(ctx context.Context, id string) (model.Document, error)

	// GetAllDocuments returns every completed document with its pages.
	GetAllDocuments(ctx context.Context) ([]model.Document, error)

	// ListDocuments returns all documents regardless of status, without
	// loading pages.
	ListDocuments(ctx context.Context) ([]model.Document, error)

	// SearchDocuments returns documents whose name or summary contains
	// the query, case-insensitively.
	SearchDocuments(ctx context.Context, query string) ([]model.Document, error)

	// DeleteDocument removes a document and its pages.
	DeleteDocument(ctx context.Context, id string) error
}

// ConversationStorage persists chat session history.
type ConversationStorage interface {
	SaveConversation(ctx context.Context, sessionID string, messages []model.ConversationMessage) error
	LoadConversation(ctx context.Context, sessionID string) ([]model.ConversationMessage, error)
	ListSessions(ctx context.Context) ([]string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
