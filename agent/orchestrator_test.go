package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// fakeReply is one scripted provider response.
type fakeReply struct {
	text string
	err  error
	cost float64
}

// scriptedProvider replays queued responses, separately for text and
// multimodal calls, and records what it was asked.
type scriptedProvider struct {
	text       []fakeReply
	multimodal []fakeReply

	textSeen []llm.Message
	mmSeen   []llm.Message

	textCalls int
	mmCalls   int
}

func (s *scriptedProvider) Name() string  { return "scripted" }
func (s *scriptedProvider) Model() string { return "scripted-model" }

func (s *scriptedProvider) ProcessText(_ context.Context, messages []llm.Message, _ llm.CallOptions) (llm.Response, error) {
	s.textSeen = append(s.textSeen, messages...)
	if s.textCalls >= len(s.text) {
		return llm.Response{}, fmt.Errorf("unscripted text call %d", s.textCalls)
	}
	reply := s.text[s.textCalls]
	s.textCalls++
	return reply.response(), reply.err
}

func (s *scriptedProvider) ProcessMultimodal(_ context.Context, messages []llm.Message, _ llm.CallOptions) (llm.Response, error) {
	s.mmSeen = append(s.mmSeen, messages...)
	if s.mmCalls >= len(s.multimodal) {
		return llm.Response{}, fmt.Errorf("unscripted multimodal call %d", s.mmCalls)
	}
	reply := s.multimodal[s.mmCalls]
	s.mmCalls++
	return reply.response(), reply.err
}

func (r fakeReply) response() llm.Response {
	resp := llm.Response{Text: r.text}
	if r.cost != 0 {
		cost := r.cost
		resp.Cost = &cost
	}
	return resp
}

// fakeSource serves canned documents.
type fakeSource struct {
	docs     []model.Document
	err      error
	panicMsg string
	calls    int
}

func (f *fakeSource) GetAllDocuments(context.Context) ([]model.Document, error) {
	f.calls++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.docs, f.err
}

func completedDoc(name string, pageCount int) model.Document {
	pages := make([]model.Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		pages = append(pages, model.Page{PageNumber: i, ImagePath: fmt.Sprintf("/tmp/%s-%d.jpg", name, i)})
	}
	doc := model.NewDocument(name, pages)
	doc.Status = model.DocumentCompleted
	doc.Summary = "Summary of " + name
	return doc
}

func newTestEngine(provider *scriptedProvider, source DocumentSource, config Config) *Orchestrator {
	return NewOrchestrator(llm.NewClient(provider), source, config, zerolog.Nop())
}

// eventRecorder captures progress events with the task status observed at
// callback time.
type eventRecorder struct {
	events   []ProgressEvent
	statuses []model.TaskStatus
}

func (r *eventRecorder) callback() ProgressCallback {
	return func(event ProgressEvent, payload ProgressPayload) {
		r.events = append(r.events, event)
		if payload.Task != nil {
			r.statuses = append(r.statuses, payload.Task.Status)
		} else {
			r.statuses = append(r.statuses, "")
		}
	}
}

func classifyReply(needsDocuments bool) fakeReply {
	return fakeReply{text: fmt.Sprintf(`{"reasoning": "test reasoning", "needs_documents": %t}`, needsDocuments)}
}

func planReply(tasks ...string) fakeReply {
	return fakeReply{text: fmt.Sprintf(`{"tasks": [%s]}`, strings.Join(tasks, ", "))}
}

func taskJSON(name, document, infoType string) string {
	return fmt.Sprintf(`{"name": %q, "description": "examine %s", "document": %q, "information_type": %q}`, name, name, document, infoType)
}

func continueReply() fakeReply {
	return fakeReply{text: `{"action": "continue", "reason": "plan still fits"}`}
}

func TestProcessQueryAnswersFromDocuments(t *testing.T) {
	doc := completedDoc("report", 3)
	provider := &scriptedProvider{
		text: []fakeReply{
			classifyReply(true),
			planReply(taskJSON("revenue table", doc.ID, "table"), taskJSON("outlook", "", "basic")),
			continueReply(),
			{text: "Revenue grew 12% year over year."},
		},
		multimodal: []fakeReply{
			{text: `{"selected_pages": [3, 1, 3, 99]}`},
			{text: "The table on page 3 shows revenue of $4.2M."},
			{text: `{"selected_pages": [2]}`},
			{text: "Management expects continued growth."},
		},
	}
	source := &fakeSource{docs: []model.Document{doc}}
	recorder := &eventRecorder{}
	engine := newTestEngine(provider, source, DefaultConfig())

	conversation := model.NewConversation()
	result := engine.ProcessQuery(context.Background(), "What was revenue?", conversation, recorder.callback())

	if result.Answer != "Revenue grew 12% year over year." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if result.TotalIterations != 2 {
		t.Errorf("TotalIterations = %d, want 2", result.TotalIterations)
	}
	if len(result.TaskResults) != 2 {
		t.Fatalf("expected 2 task results, got %d", len(result.TaskResults))
	}
	if len(result.TaskResults) != result.TotalIterations {
		t.Errorf("one result per iteration: %d results, %d iterations", len(result.TaskResults), result.TotalIterations)
	}

	// Selection order follows the model's output, deduplicated, with
	// out-of-pool page numbers dropped.
	first := result.TaskResults[0].SelectedPages
	if len(first) != 2 || first[0].PageNumber != 3 || first[1].PageNumber != 1 {
		t.Errorf("unexpected first selection: %+v", first)
	}

	var pageNumbers []int
	for _, p := range result.SelectedPages {
		pageNumbers = append(pageNumbers, p.PageNumber)
	}
	if len(pageNumbers) != 3 || pageNumbers[0] != 3 || pageNumbers[1] != 1 || pageNumbers[2] != 2 {
		t.Errorf("flattened pages = %v, want [3 1 2]", pageNumbers)
	}

	wantEvents := []ProgressEvent{
		EventPlanCreated,
		EventTaskStarted, EventPagesSelected, EventTaskCompleted,
		EventTaskStarted, EventPagesSelected, EventTaskCompleted,
	}
	if len(recorder.events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", recorder.events, wantEvents)
	}
	for i, want := range wantEvents {
		if recorder.events[i] != want {
			t.Errorf("event %d = %q, want %q", i, recorder.events[i], want)
		}
	}
	// Callbacks fire after the mutation they announce.
	if recorder.statuses[1] != model.TaskInProgress {
		t.Errorf("task_started status = %q, want in_progress", recorder.statuses[1])
	}
	if recorder.statuses[3] != model.TaskCompleted {
		t.Errorf("task_completed status = %q, want completed", recorder.statuses[3])
	}

	// The successful exchange lands in the conversation.
	msgs := conversation.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 conversation messages, got %d", len(msgs))
	}
	if msgs[0].Content != "What was revenue?" || msgs[1].Content != result.Answer {
		t.Errorf("unexpected exchange: %+v", msgs)
	}

	if provider.textCalls != 4 {
		t.Errorf("text calls = %d, want 4", provider.textCalls)
	}
	if provider.mmCalls != 4 {
		t.Errorf("multimodal calls = %d, want 4", provider.mmCalls)
	}
}

func TestProcessQueryDirectAnswer(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{
			{text: `{"reasoning": "It is arithmetic.", "needs_documents": false}`, cost: 0.002},
		},
	}
	source := &fakeSource{}
	engine := newTestEngine(provider, source, DefaultConfig())

	conversation := model.NewConversation()
	result := engine.ProcessQuery(context.Background(), "What is 2+2?", conversation, nil)

	want := "This query can be answered directly without document analysis. It is arithmetic."
	if result.Answer != want {
		t.Errorf("answer = %q, want %q", result.Answer, want)
	}
	if result.TotalIterations != 0 || len(result.TaskResults) != 0 || len(result.SelectedPages) != 0 {
		t.Errorf("direct answer must not execute tasks: %+v", result)
	}
	if result.TotalCost != 0.002 {
		t.Errorf("TotalCost = %v, want 0.002", result.TotalCost)
	}
	if source.calls != 0 {
		t.Error("storage must not be touched for a direct answer")
	}
	if provider.mmCalls != 0 {
		t.Errorf("multimodal calls = %d, want 0", provider.mmCalls)
	}
	if conversation.Len() != 0 {
		t.Error("direct answers must not be appended to the conversation")
	}
}

func TestProcessQueryNoDocuments(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{classifyReply(true)},
	}
	engine := newTestEngine(provider, &fakeSource{}, DefaultConfig())

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	want := "DocVision requires documents for analysis. Please add documents to the knowledge base first."
	if result.Answer != want {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.TotalCost != 0 {
		t.Errorf("TotalCost = %v, want 0", result.TotalCost)
	}
	if result.TotalIterations != 0 {
		t.Errorf("TotalIterations = %d, want 0", result.TotalIterations)
	}
}

func TestProcessQueryStorageFailure(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{classifyReply(true)},
	}
	source := &fakeSource{err: errors.New("database is locked")}
	engine := newTestEngine(provider, source, DefaultConfig())

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	if !strings.HasPrefix(result.Answer, "DocVision encountered an error:") {
		t.Errorf("answer = %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "database is locked") {
		t.Errorf("answer should carry the failure: %q", result.Answer)
	}
}

func TestProcessQueryPlanningFailure(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{
			classifyReply(true),
			{text: "I cannot produce a plan right now."},
		},
	}
	source := &fakeSource{docs: []model.Document{completedDoc("report", 2)}}
	engine := newTestEngine(provider, source, DefaultConfig())

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	if !strings.HasPrefix(result.Answer, "DocVision encountered an error:") {
		t.Errorf("answer = %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "task planning failed") {
		t.Errorf("answer should name the failed stage: %q", result.Answer)
	}
}

func TestProcessQueryClassifierFallbackOpen(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{{text: "not json at all"}},
	}
	source := &fakeSource{}
	engine := newTestEngine(provider, source, DefaultConfig())

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	// Fail-open fallback assumes documents are needed; with none stored
	// the query ends at the no-documents answer.
	if !strings.Contains(result.Answer, "requires documents") {
		t.Errorf("answer = %q", result.Answer)
	}
	if source.calls != 1 {
		t.Errorf("storage calls = %d, want 1", source.calls)
	}
}

func TestProcessQueryClassifierFailClosed(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{{err: errors.New("timeout")}},
	}
	source := &fakeSource{}
	config := DefaultConfig()
	config.ClassifierFailClosed = true
	engine := newTestEngine(provider, source, config)

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	if !strings.HasPrefix(result.Answer, "This query can be answered directly") {
		t.Errorf("answer = %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "Classification was unavailable") {
		t.Errorf("answer should carry the fallback reasoning: %q", result.Answer)
	}
	if source.calls != 0 {
		t.Error("fail-closed fallback must not touch storage")
	}
}

func TestProcessQueryReformulationFailureKeepsOriginal(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{
			{err: errors.New("timeout")}, // reformulation
			classifyReply(false),
		},
	}
	engine := newTestEngine(provider, &fakeSource{}, DefaultConfig())

	conversation := model.NewConversation(
		model.UserTurn("Tell me about the report."),
		model.AssistantTurn("It covers 2025 results."),
	)
	result := engine.ProcessQuery(context.Background(), "What about margins?", conversation, nil)

	if result.Query != "What about margins?" {
		t.Errorf("query = %q", result.Query)
	}
	if provider.textCalls != 2 {
		t.Fatalf("text calls = %d, want 2", provider.textCalls)
	}
	// The classifier must see the original query when reformulation fails.
	classifierPrompt := provider.textSeen[len(provider.textSeen)-1].Content
	if !strings.Contains(classifierPrompt, "What about margins?") {
		t.Errorf("classifier prompt missing original query: %q", classifierPrompt)
	}
	if conversation.Len() != 2 {
		t.Error("direct answer must leave the conversation untouched")
	}
}

func TestProcessQuerySelectionFailureDegrades(t *testing.T) {
	doc := completedDoc("report", 2)
	provider := &scriptedProvider{
		text: []fakeReply{
			classifyReply(true),
			planReply(taskJSON("revenue table", doc.ID, "table")),
			{text: "No relevant data was found."},
		},
		multimodal: []fakeReply{
			{text: "nothing resembling json"},
		},
	}
	source := &fakeSource{docs: []model.Document{doc}}
	engine := newTestEngine(provider, source, DefaultConfig())

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	if len(result.TaskResults) != 1 {
		t.Fatalf("expected 1 task result, got %d", len(result.TaskResults))
	}
	tr := result.TaskResults[0]
	if len(tr.SelectedPages) != 0 {
		t.Errorf("expected empty selection, got %d pages", len(tr.SelectedPages))
	}
	if !strings.Contains(tr.Analysis, "No relevant pages found for task") {
		t.Errorf("analysis = %q", tr.Analysis)
	}
	// No pages selected means no analysis call; only the selector ran.
	if provider.mmCalls != 1 {
		t.Errorf("multimodal calls = %d, want 1", provider.mmCalls)
	}
	if result.Answer != "No relevant data was found." {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestProcessQueryAnalysisFailureEncodedInResult(t *testing.T) {
	doc := completedDoc("report", 2)
	provider := &scriptedProvider{
		text: []fakeReply{
			classifyReply(true),
			planReply(taskJSON("revenue table", doc.ID, "table")),
			{text: "Partial answer from remaining findings."},
		},
		multimodal: []fakeReply{
			{text: `{"selected_pages": [1]}`},
			{err: errors.New("vision model overloaded")},
		},
	}
	source := &fakeSource{docs: []model.Document{doc}}
	engine := newTestEngine(provider, source, DefaultConfig())

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	if len(result.TaskResults) != 1 {
		t.Fatalf("expected 1 task result, got %d", len(result.TaskResults))
	}
	analysis := result.TaskResults[0].Analysis
	if !strings.Contains(analysis, "task analysis failed") || !strings.Contains(analysis, "vision model overloaded") {
		t.Errorf("analysis should encode the failure: %q", analysis)
	}
	if result.Answer != "Partial answer from remaining findings." {
		t.Errorf("synthesis must still run: %q", result.Answer)
	}
}

func TestProcessQueryIterationBound(t *testing.T) {
	doc := completedDoc("report", 2)
	addReply := fakeReply{text: fmt.Sprintf(`{"action": "add_tasks", "reason": "more to check", "new_tasks": [%s]}`,
		taskJSON("follow-up", "", "basic"))}

	provider := &scriptedProvider{
		text: []fakeReply{
			classifyReply(true),
			planReply(taskJSON("first", doc.ID, "basic"), taskJSON("second", doc.ID, "basic")),
			addReply, addReply, addReply,
			{text: "Answer from the first three tasks."},
		},
		multimodal: []fakeReply{
			{text: `{"selected_pages": [1]}`}, {text: "finding one"},
			{text: `{"selected_pages": [1]}`}, {text: "finding two"},
			{text: `{"selected_pages": [1]}`}, {text: "finding three"},
		},
	}
	source := &fakeSource{docs: []model.Document{doc}}
	config := DefaultConfig()
	config.MaxIterations = 3
	recorder := &eventRecorder{}
	engine := newTestEngine(provider, source, config)

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, recorder.callback())

	if result.TotalIterations != 3 {
		t.Errorf("TotalIterations = %d, want 3", result.TotalIterations)
	}
	if len(result.TaskResults) != 3 {
		t.Errorf("task results = %d, want 3", len(result.TaskResults))
	}
	updates := 0
	for _, event := range recorder.events {
		if event == EventPlanUpdated {
			updates++
		}
	}
	if updates != 3 {
		t.Errorf("plan_updated events = %d, want 3", updates)
	}
	if result.Answer != "Answer from the first three tasks." {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestProcessQueryRecoversFromPanic(t *testing.T) {
	provider := &scriptedProvider{
		text: []fakeReply{classifyReply(true)},
	}
	source := &fakeSource{panicMsg: "index out of range"}
	engine := newTestEngine(provider, source, DefaultConfig())

	result := engine.ProcessQuery(context.Background(), "What was revenue?", nil, nil)

	if !strings.HasPrefix(result.Answer, "DocVision encountered an error:") {
		t.Errorf("answer = %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "index out of range") {
		t.Errorf("answer should carry the panic value: %q", result.Answer)
	}
}

func TestProcessQuerySynthesisFailure(t *testing.T) {
	doc := completedDoc("report", 1)
	provider := &scriptedProvider{
		text: []fakeReply{
			classifyReply(true),
			planReply(taskJSON("only task", doc.ID, "basic")),
			{err: errors.New("model unavailable")},
		},
		multimodal: []fakeReply{
			{text: `{"selected_pages": [1]}`},
			{text: "finding"},
		},
	}
	source := &fakeSource{docs: []model.Document{doc}}
	engine := newTestEngine(provider, source, DefaultConfig())

	conversation := model.NewConversation()
	result := engine.ProcessQuery(context.Background(), "What was revenue?", conversation, nil)

	if !strings.Contains(result.Answer, "response synthesis failed") {
		t.Errorf("answer = %q", result.Answer)
	}
	if conversation.Len() != 0 {
		t.Error("failed queries must not be appended to the conversation")
	}
}
