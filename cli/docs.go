package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/richinex/docvision/agent"
	"github.com/richinex/docvision/model"
)

// AddDocument registers a directory of pre-rendered page images as one
// document: pages are numbered in filename order, the document is
// summarized for the planner catalog and stored as completed.
func AddDocument(ctx context.Context, name, dir string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	imagePaths, err := collectPageImages(dir)
	if err != nil {
		return err
	}
	if len(imagePaths) == 0 {
		return fmt.Errorf("no page images (.jpg, .jpeg, .png) found in %s", dir)
	}

	if name == "" {
		name = filepath.Base(dir)
	}

	pages := make([]model.Page, 0, len(imagePaths))
	for i, path := range imagePaths {
		pages = append(pages, model.Page{PageNumber: i + 1, ImagePath: path})
	}

	doc := model.NewDocument(name, pages)
	doc.Status = model.DocumentProcessing
	if err := e.store.SaveDocument(ctx, doc); err != nil {
		return err
	}

	fmt.Printf("Summarizing '%s' (%d pages)...\n", doc.Name, doc.PageCount())
	summarizer := agent.NewSummarizer(e.client, agentConfig(e.settings), e.logger)
	summary, err := summarizer.SummarizeDocument(ctx, &doc)
	if err != nil {
		e.logger.Warn().Err(err).Str("document", doc.Name).Msg("proceeding without summary")
	} else {
		doc.Summary = summary
	}

	doc.Status = model.DocumentCompleted
	if err := e.store.SaveDocument(ctx, doc); err != nil {
		return err
	}

	fmt.Printf("Added document %s (%s, %d pages)\n", doc.ID, doc.Name, doc.PageCount())
	if doc.Summary != "" {
		fmt.Printf("Summary: %s\n", doc.Summary)
	}
	return nil
}

// collectPageImages returns the image files in dir, sorted by filename.
func collectPageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ListDocuments prints every stored document.
func ListDocuments(ctx context.Context, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	docs, err := e.store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents stored.")
		return nil
	}

	for _, doc := range docs {
		printDocument(doc)
	}
	return nil
}

// SearchDocuments prints documents matching the query by name or summary.
func SearchDocuments(ctx context.Context, query string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	docs, err := e.store.SearchDocuments(ctx, query)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Printf("No documents match %q.\n", query)
		return nil
	}

	for _, doc := range docs {
		printDocument(doc)
	}
	return nil
}

// DeleteDocument removes a document by id.
func DeleteDocument(ctx context.Context, id string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted document %s\n", id)
	return nil
}

// Stats prints the engine configuration and knowledge base size.
func Stats(ctx context.Context, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	docs, err := e.store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	completed := 0
	for _, doc := range docs {
		if doc.Status == model.DocumentCompleted {
			completed++
		}
	}

	fmt.Printf("Provider:            %s\n", e.settings.LLM.Provider)
	fmt.Printf("Model:               %s\n", e.settings.LLM.Model)
	fmt.Printf("Vision model:        %s\n", e.settings.LLM.VisionModel)
	fmt.Printf("Max iterations:      %d\n", e.settings.Agent.MaxIterations)
	fmt.Printf("Max pages per task:  %d\n", e.settings.Agent.MaxPagesPerTask)
	fmt.Printf("Max tasks per plan:  %d\n", e.settings.Agent.MaxTasksPerPlan)
	fmt.Printf("Documents:           %d (%d completed)\n", len(docs), completed)
	return nil
}

func printDocument(doc model.Document) {
	fmt.Printf("%s  %-30s  %s\n", doc.ID, doc.Name, doc.Status)
	if doc.Summary != "" {
		fmt.Printf("    %s\n", doc.Summary)
	}
}
