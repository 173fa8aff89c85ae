package storage

import (
	"context"
	"testing"
	"time"

	"github.com/richinex/docvision/model"
)

func newTestStorage(t *testing.T) *SqliteStorage {
	t.Helper()
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func testDocument(name string, status model.DocumentStatus) model.Document {
	doc := model.NewDocument(name, []model.Page{
		{PageNumber: 1, ImagePath: "/tmp/" + name + "-1.jpg"},
		{PageNumber: 2, ImagePath: "/tmp/" + name + "-2.jpg", Metadata: map[string]string{"dpi": "150"}},
	})
	doc.Status = status
	doc.Summary = "Summary of " + name
	return doc
}

func TestSqliteDocumentRoundTrip(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	doc := testDocument("report", model.DocumentCompleted)
	doc.Metadata = map[string]string{"source": "upload"}

	if err := storage.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	loaded, err := storage.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if loaded.Name != "report" {
		t.Errorf("expected name 'report', got '%s'", loaded.Name)
	}
	if loaded.Summary != "Summary of report" {
		t.Errorf("unexpected summary: '%s'", loaded.Summary)
	}
	if loaded.Status != model.DocumentCompleted {
		t.Errorf("expected completed status, got '%s'", loaded.Status)
	}
	if loaded.Metadata["source"] != "upload" {
		t.Errorf("metadata not preserved: %v", loaded.Metadata)
	}
	if len(loaded.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(loaded.Pages))
	}
	if loaded.Pages[0].PageNumber != 1 || loaded.Pages[1].PageNumber != 2 {
		t.Errorf("pages out of order: %+v", loaded.Pages)
	}
	if loaded.Pages[1].Metadata["dpi"] != "150" {
		t.Errorf("page metadata not preserved: %v", loaded.Pages[1].Metadata)
	}
	if loaded.Pages[0].DocumentID != doc.ID || loaded.Pages[0].DocumentName != "report" {
		t.Errorf("page back-references missing: %+v", loaded.Pages[0])
	}
}

func TestSqliteSaveDocumentReplacesPages(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	doc := testDocument("report", model.DocumentProcessing)
	if err := storage.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	doc.Pages = []model.Page{{PageNumber: 1, ImagePath: "/tmp/only.jpg", DocumentID: doc.ID}}
	doc.Status = model.DocumentCompleted
	if err := storage.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("second SaveDocument failed: %v", err)
	}

	loaded, err := storage.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if len(loaded.Pages) != 1 {
		t.Errorf("expected stale pages to be replaced, got %d pages", len(loaded.Pages))
	}
	if loaded.Status != model.DocumentCompleted {
		t.Errorf("expected status update, got '%s'", loaded.Status)
	}
}

func TestSqliteGetDocumentNotFound(t *testing.T) {
	storage := newTestStorage(t)

	if _, err := storage.GetDocument(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestSqliteGetAllDocumentsCompletedOnly(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first := testDocument("first", model.DocumentCompleted)
	first.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := testDocument("second", model.DocumentCompleted)
	second.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pending := testDocument("pending", model.DocumentProcessing)

	for _, doc := range []model.Document{second, pending, first} {
		if err := storage.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}

	docs, err := storage.GetAllDocuments(ctx)
	if err != nil {
		t.Fatalf("GetAllDocuments failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 completed documents, got %d", len(docs))
	}
	if docs[0].Name != "first" || docs[1].Name != "second" {
		t.Errorf("expected creation order, got %s, %s", docs[0].Name, docs[1].Name)
	}
	if len(docs[0].Pages) == 0 {
		t.Error("GetAllDocuments must load pages")
	}

	all, err := storage.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListDocuments must include all statuses, got %d", len(all))
	}
}

func TestSqliteGetAllDocumentsEmpty(t *testing.T) {
	storage := newTestStorage(t)

	docs, err := storage.GetAllDocuments(context.Background())
	if err != nil {
		t.Fatalf("GetAllDocuments failed: %v", err)
	}
	if docs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}

func TestSqliteSearchDocuments(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	report := testDocument("Annual Report", model.DocumentCompleted)
	report.Summary = "Financial results and revenue breakdown"
	memo := testDocument("memo", model.DocumentCompleted)
	memo.Summary = "Office relocation plan"

	for _, doc := range []model.Document{report, memo} {
		if err := storage.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}

	byName, err := storage.SearchDocuments(ctx, "annual")
	if err != nil {
		t.Fatalf("SearchDocuments failed: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Annual Report" {
		t.Errorf("case-insensitive name search failed: %+v", byName)
	}

	bySummary, err := storage.SearchDocuments(ctx, "revenue")
	if err != nil {
		t.Fatalf("SearchDocuments failed: %v", err)
	}
	if len(bySummary) != 1 || bySummary[0].Name != "Annual Report" {
		t.Errorf("summary search failed: %+v", bySummary)
	}

	none, err := storage.SearchDocuments(ctx, "quarterly")
	if err != nil {
		t.Fatalf("SearchDocuments failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestSqliteDeleteDocument(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	doc := testDocument("report", model.DocumentCompleted)
	if err := storage.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if err := storage.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := storage.GetDocument(ctx, doc.ID); err == nil {
		t.Error("expected error after delete")
	}
	if err := storage.DeleteDocument(ctx, doc.ID); err == nil {
		t.Error("expected error deleting missing document")
	}
}

func TestSqliteConversationRoundTrip(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	messages := []model.ConversationMessage{
		{Role: model.RoleUser, Content: "What was Q2 revenue?"},
		{Role: model.RoleAssistant, Content: "Q2 revenue was $4.2M."},
	}
	if err := storage.SaveConversation(ctx, "session-1", messages); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}

	loaded, err := storage.LoadConversation(ctx, "session-1")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "What was Q2 revenue?" {
		t.Errorf("unexpected first message: '%s'", loaded[0].Content)
	}
	if loaded[1].Role != model.RoleAssistant {
		t.Errorf("unexpected second role: '%s'", loaded[1].Role)
	}

	// Saving again replaces the stored history.
	messages = append(messages, model.ConversationMessage{Role: model.RoleUser, Content: "And Q3?"})
	if err := storage.SaveConversation(ctx, "session-1", messages); err != nil {
		t.Fatalf("second SaveConversation failed: %v", err)
	}
	loaded, err = storage.LoadConversation(ctx, "session-1")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Errorf("expected 3 messages after resave, got %d", len(loaded))
	}
}

func TestSqliteLoadConversationNonexistentSession(t *testing.T) {
	storage := newTestStorage(t)

	loaded, err := storage.LoadConversation(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty slice, got %d messages", len(loaded))
	}
}

func TestSqliteSessions(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	msg := []model.ConversationMessage{{Role: model.RoleUser, Content: "hi"}}
	if err := storage.SaveConversation(ctx, "a", msg); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}
	if err := storage.SaveConversation(ctx, "b", msg); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(sessions))
	}

	if err := storage.DeleteSession(ctx, "a"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	loaded, err := storage.LoadConversation(ctx, "a")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected deleted session to be empty, got %d messages", len(loaded))
	}
}
