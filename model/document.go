// Package model provides domain types shared across packages.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document's processing lifecycle.
// The query engine only ever reads documents whose status is Completed;
// ingestion is responsible for the transitions.
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// Page is one renderable page of a document. Pages never outlive their
// document and have no independent lifecycle.
type Page struct {
	PageNumber   int               `json:"page_number"`
	ImagePath    string            `json:"image_path"`
	DocumentID   string            `json:"document_id,omitempty"`
	DocumentName string            `json:"document_name,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Validate checks page invariants.
func (p Page) Validate() error {
	if p.PageNumber <= 0 {
		return fmt.Errorf("page number must be positive, got %d", p.PageNumber)
	}
	if p.ImagePath == "" {
		return fmt.Errorf("page %d: image path is required", p.PageNumber)
	}
	return nil
}

// Document is an ordered set of pages with an optional AI-generated summary.
// Immutable once status is Completed, except for metadata.
type Document struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Pages     []Page            `json:"pages"`
	Summary   string            `json:"summary,omitempty"`
	Status    DocumentStatus    `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewDocument creates a pending document with a fresh id, back-referencing
// each page to its owner.
func NewDocument(name string, pages []Page) Document {
	doc := Document{
		ID:        uuid.NewString(),
		Name:      name,
		Pages:     pages,
		Status:    DocumentPending,
		CreatedAt: time.Now(),
	}
	for i := range doc.Pages {
		doc.Pages[i].DocumentID = doc.ID
		doc.Pages[i].DocumentName = doc.Name
	}
	return doc
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// GetPage returns the page with the given number, or nil.
func (d *Document) GetPage(pageNumber int) *Page {
	for i := range d.Pages {
		if d.Pages[i].PageNumber == pageNumber {
			return &d.Pages[i]
		}
	}
	return nil
}

// Validate checks document invariants.
func (d *Document) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("document name is required")
	}
	seen := make(map[int]bool, len(d.Pages))
	for _, p := range d.Pages {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("document %s: %w", d.Name, err)
		}
		if seen[p.PageNumber] {
			return fmt.Errorf("document %s: duplicate page number %d", d.Name, p.PageNumber)
		}
		seen[p.PageNumber] = true
	}
	return nil
}

// CatalogText renders a document catalog (id, name, summary) for planning
// prompts.
func CatalogText(documents []Document) string {
	var b strings.Builder
	for _, doc := range documents {
		summary := doc.Summary
		if summary == "" {
			summary = fmt.Sprintf("No summary available (%d pages)", doc.PageCount())
		}
		fmt.Fprintf(&b, "%s: %s\nSummary: %s\n\n", doc.ID, doc.Name, summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PagesByDocument groups page numbers by document name, sorted numerically.
func PagesByDocument(pages []Page) map[string][]int {
	grouped := make(map[string][]int)
	for _, p := range pages {
		name := p.DocumentName
		if name == "" {
			name = "Unknown Document"
		}
		grouped[name] = append(grouped[name], p.PageNumber)
	}
	for name := range grouped {
		sort.Ints(grouped[name])
	}
	return grouped
}
