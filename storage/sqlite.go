// SQLite-backed document and session storage.
//
// Information Hiding:
// - SQLite connection management hidden behind interfaces
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/docvision/model"
)

// SqliteStorage implements DocumentStorage and ConversationStorage on a
// SQLite database file.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			metadata TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pages (
			document_id TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			image_path TEXT NOT NULL,
			metadata TEXT,
			PRIMARY KEY (document_id, page_number),
			FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_pages_document
		ON pages(document_id, page_number);

		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			message_index INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, message_index)
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session
		ON messages(session_id, message_index);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveDocument inserts or replaces a document and all of its pages.
func (s *SqliteStorage) SaveDocument(ctx context.Context, doc model.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op after Commit
	defer func() { _ = tx.Rollback() }()

	metadata, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (id, name, summary, status, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Summary, string(doc.Status), metadata, doc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM pages WHERE document_id = ?", doc.ID)
	if err != nil {
		return fmt.Errorf("failed to clear old pages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO pages (document_id, page_number, image_path, metadata) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, page := range doc.Pages {
		pageMetadata, err := marshalMetadata(page.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, page.PageNumber, page.ImagePath, pageMetadata); err != nil {
			return fmt.Errorf("failed to insert page %d: %w", page.PageNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetDocument returns a document with its pages.
func (s *SqliteStorage) GetDocument(ctx context.Context, id string) (model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, summary, status, metadata, created_at FROM documents WHERE id = ?", id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return model.Document{}, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return model.Document{}, err
	}

	pages, err := s.loadPages(ctx, doc.ID, doc.Name)
	if err != nil {
		return model.Document{}, err
	}
	doc.Pages = pages
	return doc, nil
}

// GetAllDocuments returns every completed document with its pages. This
// is the only read the query engine performs.
func (s *SqliteStorage) GetAllDocuments(ctx context.Context) ([]model.Document, error) {
	docs, err := s.queryDocuments(ctx,
		"SELECT id, name, summary, status, metadata, created_at FROM documents WHERE status = ? ORDER BY created_at ASC",
		string(model.DocumentCompleted))
	if err != nil {
		return nil, err
	}

	for i := range docs {
		pages, err := s.loadPages(ctx, docs[i].ID, docs[i].Name)
		if err != nil {
			return nil, err
		}
		docs[i].Pages = pages
	}
	return docs, nil
}

// ListDocuments returns all documents regardless of status, without pages.
func (s *SqliteStorage) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return s.queryDocuments(ctx,
		"SELECT id, name, summary, status, metadata, created_at FROM documents ORDER BY created_at ASC")
}

// SearchDocuments returns documents whose name or summary matches query,
// case-insensitively, without pages.
func (s *SqliteStorage) SearchDocuments(ctx context.Context, query string) ([]model.Document, error) {
	pattern := "%" + query + "%"
	return s.queryDocuments(ctx, `
		SELECT id, name, summary, status, metadata, created_at FROM documents
		WHERE name LIKE ? COLLATE NOCASE OR summary LIKE ? COLLATE NOCASE
		ORDER BY created_at ASC`,
		pattern, pattern)
}

// DeleteDocument removes a document and its pages.
func (s *SqliteStorage) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM pages WHERE document_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	return nil
}

func (s *SqliteStorage) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

func (s *SqliteStorage) loadPages(ctx context.Context, documentID, documentName string) ([]model.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT page_number, image_path, metadata FROM pages WHERE document_id = ? ORDER BY page_number ASC",
		documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		var page model.Page
		var metadata sql.NullString
		if err := rows.Scan(&page.PageNumber, &page.ImagePath, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page.DocumentID = documentID
		page.DocumentName = documentName
		if page.Metadata, err = unmarshalMetadata(metadata); err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}
	return pages, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var doc model.Document
	var status, createdAt string
	var metadata sql.NullString

	err := row.Scan(&doc.ID, &doc.Name, &doc.Summary, &status, &metadata, &createdAt)
	if err == sql.ErrNoRows {
		return model.Document{}, err
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.Status = model.DocumentStatus(status)
	if doc.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return model.Document{}, err
	}
	if doc.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Conversation session storage

func (s *SqliteStorage) ensureSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (session_id) VALUES (?)", sessionID)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

// SaveConversation replaces the stored history for a session.
func (s *SqliteStorage) SaveConversation(ctx context.Context, sessionID string, messages []model.ConversationMessage) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (session_id, message_index, role, content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		if _, err := stmt.ExecContext(ctx, sessionID, i, msg.Role, msg.Content); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = datetime('now') WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadConversation returns the stored history for a session. Returns an
// empty slice when the session doesn't exist.
func (s *SqliteStorage) LoadConversation(ctx context.Context, sessionID string) ([]model.ConversationMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content FROM messages WHERE session_id = ? ORDER BY message_index ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []model.ConversationMessage{}
	for rows.Next() {
		var msg model.ConversationMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// ListSessions lists all session IDs, most recently updated first.
func (s *SqliteStorage) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sessionID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes a session and its messages.
func (s *SqliteStorage) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func marshalMetadata(metadata map[string]string) (interface{}, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(data), nil
}

func unmarshalMetadata(raw sql.NullString) (map[string]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(raw.String), &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return metadata, nil
}

// Verify SqliteStorage implements all interfaces
var _ DocumentStorage = (*SqliteStorage)(nil)
var _ ConversationStorage = (*SqliteStorage)(nil)
