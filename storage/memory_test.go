package storage

import (
	"context"
	"testing"
	"time"

	"github.com/richinex/docvision/model"
)

func TestInMemoryStorageRoundTrip(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	doc := testDocument("report", model.DocumentCompleted)
	if err := storage.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	loaded, err := storage.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if loaded.Name != "report" || len(loaded.Pages) != 2 {
		t.Errorf("unexpected document: %+v", loaded)
	}

	if _, err := storage.GetDocument(ctx, "missing"); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestInMemoryStorageCompletedFilter(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	older := testDocument("older", model.DocumentCompleted)
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testDocument("newer", model.DocumentCompleted)
	newer.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	processing := testDocument("processing", model.DocumentProcessing)

	for _, doc := range []model.Document{newer, processing, older} {
		if err := storage.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}

	completed, err := storage.GetAllDocuments(ctx)
	if err != nil {
		t.Fatalf("GetAllDocuments failed: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed documents, got %d", len(completed))
	}
	if completed[0].Name != "older" || completed[1].Name != "newer" {
		t.Errorf("expected creation order, got %s, %s", completed[0].Name, completed[1].Name)
	}

	all, err := storage.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 documents, got %d", len(all))
	}
}

func TestInMemoryStorageSearchAndDelete(t *testing.T) {
	storage := NewInMemoryStorage()
	ctx := context.Background()

	doc := testDocument("Annual Report", model.DocumentCompleted)
	doc.Summary = "Revenue and cost breakdown"
	if err := storage.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	matched, err := storage.SearchDocuments(ctx, "REVENUE")
	if err != nil {
		t.Fatalf("SearchDocuments failed: %v", err)
	}
	if len(matched) != 1 {
		t.Errorf("expected case-insensitive summary match, got %d", len(matched))
	}

	if err := storage.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if err := storage.DeleteDocument(ctx, doc.ID); err == nil {
		t.Error("expected error deleting missing document")
	}
}
