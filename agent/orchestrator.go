package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// DocumentSource is the storage surface the engine consumes. It must
// return only documents whose status is completed.
type DocumentSource interface {
	GetAllDocuments(ctx context.Context) ([]model.Document, error)
}

// Orchestrator drives one query through the full pipeline: context
// processing, reformulation, classification, adaptive task execution and
// synthesis. ProcessQuery is a total function; every failure mode maps to
// a result value, never an error to the caller.
type Orchestrator struct {
	client  *llm.Client
	storage DocumentSource
	config  Config
	logger  zerolog.Logger

	contextProcessor *ContextProcessor
	reformulator     *Reformulator
	classifier       *Classifier
	planner          *Planner
	selector         *PageSelector
	synthesizer      *Synthesizer
}

// NewOrchestrator creates the query engine.
func NewOrchestrator(client *llm.Client, storage DocumentSource, config Config, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		client:           client,
		storage:          storage,
		config:           config,
		logger:           logger,
		contextProcessor: NewContextProcessor(client, config, logger),
		reformulator:     NewReformulator(client, logger),
		classifier:       NewClassifier(client, config.ClassifierFailClosed, logger),
		planner:          NewPlanner(client, config, logger),
		selector:         NewPageSelector(client, config, logger),
		synthesizer:      NewSynthesizer(client, logger),
	}
}

// ProcessQuery answers query against the stored documents. The optional
// conversation supplies context for follow-up questions and receives the
// query/answer exchange when documents were consumed successfully. The
// optional callback observes the adaptive loop; nil changes nothing.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string, conversation *model.Conversation, callback ProgressCallback) (result model.AgentQueryResult) {
	start := time.Now()
	costStart := o.client.TotalCost()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Msg("query processing panicked")
			result = o.errorResult(query, fmt.Sprintf("%v", r), time.Since(start))
		}
	}()

	o.logger.Info().Str("query", truncate(query, 100)).Msg("processing query")

	contextText, recent := o.contextProcessor.Process(ctx, conversation, query)

	reformulated := query
	if conversation.Len() > 0 {
		r, err := o.reformulator.Reformulate(ctx, query, contextText, recent)
		if err != nil {
			o.logger.Warn().Err(err).Msg("keeping original query")
		} else {
			reformulated = r
		}
	}

	classification, err := o.classifier.Classify(ctx, reformulated)
	if err != nil {
		o.logger.Warn().Err(err).Bool("needs_documents", classification.NeedsDocuments).Msg("using classification fallback")
	}
	if !classification.NeedsDocuments {
		return o.directAnswerResult(query, classification.Reasoning, o.client.TotalCost()-costStart)
	}

	documents, err := o.storage.GetAllDocuments(ctx)
	if err != nil {
		return o.errorResult(query, err.Error(), time.Since(start))
	}
	if len(documents) == 0 {
		o.logger.Warn().Msg("no documents available for analysis")
		return o.noDocumentsResult(query)
	}

	plan, err := o.planner.CreateInitialPlan(ctx, reformulated, documents)
	if err != nil {
		return o.errorResult(query, err.Error(), time.Since(start))
	}
	emit(callback, EventPlanCreated, ProgressPayload{Plan: plan})

	taskResults := o.executePlan(ctx, plan, reformulated, documents, recent, callback)

	answer, err := o.synthesizer.Synthesize(ctx, reformulated, taskResults)
	if err != nil {
		return o.errorResult(query, err.Error(), time.Since(start))
	}

	var selectedPages []model.Page
	for _, tr := range taskResults {
		selectedPages = append(selectedPages, tr.SelectedPages...)
	}

	result = model.AgentQueryResult{
		Query:           query,
		Answer:          answer,
		SelectedPages:   selectedPages,
		TaskResults:     taskResults,
		TotalIterations: plan.CurrentIteration,
		ProcessingTime:  time.Since(start),
		TotalCost:       o.client.TotalCost() - costStart,
	}

	conversation.AppendExchange(query, answer)

	o.logger.Info().
		Dur("elapsed", result.ProcessingTime).
		Int("iterations", result.TotalIterations).
		Float64("cost", result.TotalCost).
		Msg("query processed")
	return result
}

// executePlan runs the adaptive loop: dequeue one pending task, select
// pages, analyze, then let the planner revise the remaining plan. The
// loop is bounded by MaxIterations; tasks left pending at the bound are
// abandoned.
func (o *Orchestrator) executePlan(ctx context.Context, plan *model.TaskPlan, query string, documents []model.Document, recent []model.ConversationMessage, callback ProgressCallback) []model.TaskResult {
	var results []model.TaskResult
	iteration := 0

	for plan.HasPendingTasks() && iteration < o.config.MaxIterations {
		iteration++

		task := plan.NextPendingTask()
		if task == nil {
			break
		}

		o.logger.Info().Int("iteration", iteration).Str("task", task.Name).Msg("executing task")
		task.Status = model.TaskInProgress
		emit(callback, EventTaskStarted, ProgressPayload{Task: task, Plan: plan})

		result := o.executeTask(ctx, task, documents, recent, callback)

		task.Status = model.TaskCompleted
		results = append(results, result)
		emit(callback, EventTaskCompleted, ProgressPayload{Task: task, Result: &result, Plan: plan})

		if plan.HasPendingTasks() {
			oldCount := plan.Len()
			if err := o.planner.UpdatePlan(ctx, plan, result, query, documents); err != nil {
				o.logger.Warn().Err(err).Msg("continuing with current plan")
			}
			if plan.Len() != oldCount {
				emit(callback, EventPlanUpdated, ProgressPayload{Plan: plan})
			}
		}
	}

	plan.CurrentIteration = iteration
	return results
}

// executeTask resolves the task's page pool, selects pages and runs the
// vision analysis. Every failure degrades into the returned TaskResult;
// the loop always continues.
func (o *Orchestrator) executeTask(ctx context.Context, task *model.AgentTask, documents []model.Document, recent []model.ConversationMessage, callback ProgressCallback) model.TaskResult {
	pool := o.resolvePagePool(task, documents)

	selected, err := o.selector.SelectPages(ctx, task, pool)
	if err != nil {
		o.logger.Warn().Err(err).Str("task", task.Name).Msg("proceeding with empty selection")
		selected = nil
	}

	pageNumbers := make([]int, 0, len(selected))
	for _, page := range selected {
		pageNumbers = append(pageNumbers, page.PageNumber)
	}
	emit(callback, EventPagesSelected, ProgressPayload{Task: task, PageNumbers: pageNumbers})

	analysis := o.analyzeTask(ctx, task, selected, recent)

	return model.TaskResult{
		Task:          *task,
		SelectedPages: selected,
		Analysis:      analysis,
	}
}

// resolvePagePool returns the assigned document's pages, or every page of
// every document when the task carries no assignment. An assignment to a
// document that no longer exists yields an empty pool.
func (o *Orchestrator) resolvePagePool(task *model.AgentTask, documents []model.Document) []model.Page {
	if task.Document == "" {
		var pool []model.Page
		for _, doc := range documents {
			pool = append(pool, doc.Pages...)
		}
		o.logger.Warn().Str("task", task.Name).Msg("task has no document assignment, using all pages")
		return pool
	}

	for _, doc := range documents {
		if doc.ID == task.Document {
			return doc.Pages
		}
	}
	o.logger.Warn().Str("task", task.Name).Str("document", task.Document).Msg("assigned document not found")
	return nil
}

// analyzeTask runs the multimodal analysis call for a task over its
// selected pages. Failures are encoded in the returned analysis text.
func (o *Orchestrator) analyzeTask(ctx context.Context, task *model.AgentTask, pages []model.Page, recent []model.ConversationMessage) string {
	if len(pages) == 0 {
		return fmt.Sprintf("No relevant pages found for task: %s", task.Name)
	}

	prompt := fmt.Sprintf(taskProcessingPrompt,
		task.Description,
		string(task.InformationType),
		task.Description,
		memorySummary(recent),
		guidelinesFor(string(task.InformationType)),
	)

	parts := make([]llm.Part, 0, 2*len(pages)+1)
	parts = append(parts, llm.TextPart(prompt))
	for i, page := range pages {
		parts = append(parts,
			llm.ImagePart(page.ImagePath, o.config.VisionDetail),
			llm.TextPart(fmt.Sprintf("[Page %d from document]", i+1)),
		)
	}

	resp, err := o.client.ProcessMultimodal(ctx, []llm.Message{
		llm.SystemMessage(systemAssistant),
		llm.MultimodalMessage(parts...),
	}, llm.CallOptions{MaxTokens: o.config.AnalysisMaxTokens, Temperature: o.config.AnalysisTemperature})
	if err != nil {
		o.logger.Warn().Err(err).Str("task", task.Name).Msg("vision analysis failed")
		return fmt.Sprintf("%s for task %s: %v", ErrTaskAnalysis, task.Name, err)
	}

	return resp.Text
}

// memorySummary renders the last few conversation turns for the task
// analysis prompt.
func memorySummary(recent []model.ConversationMessage) string {
	if len(recent) == 0 {
		return "CONTEXT: First query in conversation session."
	}

	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}
	summary := "CONTEXT FROM CONVERSATION:\n"
	for _, msg := range recent {
		role := "User"
		if msg.Role == model.RoleAssistant {
			role = "Assistant"
		}
		summary += fmt.Sprintf("- %s: %s\n", role, truncate(msg.Content, 100))
	}
	return summary
}

func (o *Orchestrator) directAnswerResult(query, reasoning string, cost float64) model.AgentQueryResult {
	return model.AgentQueryResult{
		Query:     query,
		Answer:    fmt.Sprintf("This query can be answered directly without document analysis. %s", reasoning),
		TotalCost: cost,
	}
}

func (o *Orchestrator) noDocumentsResult(query string) model.AgentQueryResult {
	return model.AgentQueryResult{
		Query:  query,
		Answer: "DocVision requires documents for analysis. Please add documents to the knowledge base first.",
	}
}

func (o *Orchestrator) errorResult(query, message string, elapsed time.Duration) model.AgentQueryResult {
	return model.AgentQueryResult{
		Query:          query,
		Answer:         fmt.Sprintf("DocVision encountered an error: %s", message),
		ProcessingTime: elapsed,
	}
}

func emit(callback ProgressCallback, event ProgressEvent, payload ProgressPayload) {
	if callback != nil {
		callback(event, payload)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
