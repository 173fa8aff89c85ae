package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

func newTestSelector(provider *scriptedProvider, config Config) *PageSelector {
	return NewPageSelector(llm.NewClient(provider), config, zerolog.Nop())
}

func pagePool(n int) []model.Page {
	pages := make([]model.Page, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, model.Page{PageNumber: i, ImagePath: "/tmp/p.jpg", DocumentName: "report"})
	}
	return pages
}

func selectorTask() *model.AgentTask {
	task := model.NewAgentTask("find tables", "locate revenue tables", "", model.InfoTable)
	return &task
}

func TestSelectPagesEmptyPool(t *testing.T) {
	provider := &scriptedProvider{}
	selector := newTestSelector(provider, DefaultConfig())

	selected, err := selector.SelectPages(context.Background(), selectorTask(), nil)
	if err != nil {
		t.Fatalf("SelectPages failed: %v", err)
	}
	if len(selected) != 0 {
		t.Errorf("expected empty selection, got %d", len(selected))
	}
	if provider.mmCalls != 0 {
		t.Error("empty pool must not trigger a model call")
	}
}

func TestSelectPagesOrderDedupAndUnknown(t *testing.T) {
	provider := &scriptedProvider{
		multimodal: []fakeReply{{text: `{"selected_pages": [3, 1, 3, 99, 2]}`}},
	}
	selector := newTestSelector(provider, DefaultConfig())

	selected, err := selector.SelectPages(context.Background(), selectorTask(), pagePool(4))
	if err != nil {
		t.Fatalf("SelectPages failed: %v", err)
	}
	got := make([]int, 0, len(selected))
	for _, p := range selected {
		got = append(got, p.PageNumber)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Errorf("selection = %v, want [3 1 2]", got)
	}
}

func TestSelectPagesCap(t *testing.T) {
	provider := &scriptedProvider{
		multimodal: []fakeReply{{text: `{"selected_pages": [1, 2, 3, 4, 5]}`}},
	}
	config := DefaultConfig()
	config.MaxPagesPerTask = 2
	selector := newTestSelector(provider, config)

	selected, err := selector.SelectPages(context.Background(), selectorTask(), pagePool(5))
	if err != nil {
		t.Fatalf("SelectPages failed: %v", err)
	}
	if len(selected) != 2 {
		t.Errorf("expected cap at 2 pages, got %d", len(selected))
	}
}

func TestSelectPagesFailures(t *testing.T) {
	cases := []struct {
		name  string
		reply fakeReply
	}{
		{"provider error", fakeReply{err: errors.New("timeout")}},
		{"malformed output", fakeReply{text: "these pages look relevant"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &scriptedProvider{multimodal: []fakeReply{tc.reply}}
			selector := newTestSelector(provider, DefaultConfig())

			_, err := selector.SelectPages(context.Background(), selectorTask(), pagePool(3))
			if !errors.Is(err, ErrPageSelection) {
				t.Errorf("expected ErrPageSelection, got %v", err)
			}
		})
	}
}
