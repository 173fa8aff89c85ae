package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of an AgentTask.
// The execution loop only ever sets InProgress and Completed; Failed and
// Skipped exist for presentation layers.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskSkipped    TaskStatus = "skipped"
)

// InformationType selects which analysis guideline block is used when a
// task's pages are analyzed.
type InformationType string

const (
	InfoBasic InformationType = "basic"
	InfoTable InformationType = "table"
	InfoChart InformationType = "chart"
	InfoImage InformationType = "image"
)

// ParseInformationType maps a string to an information type, defaulting to
// basic for anything unrecognized.
func ParseInformationType(s string) InformationType {
	switch InformationType(strings.ToLower(strings.TrimSpace(s))) {
	case InfoTable:
		return InfoTable
	case InfoChart:
		return InfoChart
	case InfoImage:
		return InfoImage
	default:
		return InfoBasic
	}
}

// AgentTask is one discrete unit of evidence-gathering work, scoped to one
// document (or all documents when Document is empty) and one information
// type.
type AgentTask struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Document        string          `json:"document,omitempty"` // document id; empty = search all pages
	InformationType InformationType `json:"information_type"`
	Status          TaskStatus      `json:"status"`
	// Dependencies is informational only; the execution loop runs tasks in
	// plan order regardless of declared dependencies.
	Dependencies []string `json:"dependencies,omitempty"`
}

// NewAgentTask creates a pending task with a fresh id.
func NewAgentTask(name, description, document string, infoType InformationType) AgentTask {
	return AgentTask{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     description,
		Document:        document,
		InformationType: infoType,
		Status:          TaskPending,
	}
}

// TaskPlan is the ordered, mutable collection of tasks for one query.
// Tasks live in an arena addressed by stable id; the update step operates
// as explicit add/remove/modify operations on that arena. Owned exclusively
// by one in-flight query's orchestrator; not safe for concurrent use.
type TaskPlan struct {
	tasksByID map[string]*AgentTask
	order     []string

	// CurrentIteration counts completed loop iterations for this query.
	CurrentIteration int
}

// NewTaskPlan creates a plan from an ordered task list.
func NewTaskPlan(tasks []AgentTask) *TaskPlan {
	plan := &TaskPlan{
		tasksByID: make(map[string]*AgentTask, len(tasks)),
	}
	for _, task := range tasks {
		plan.AddTask(task)
	}
	return plan
}

// Len returns the number of tasks in the plan.
func (p *TaskPlan) Len() int {
	return len(p.order)
}

// Tasks returns the tasks in plan order.
func (p *TaskPlan) Tasks() []*AgentTask {
	tasks := make([]*AgentTask, 0, len(p.order))
	for _, id := range p.order {
		tasks = append(tasks, p.tasksByID[id])
	}
	return tasks
}

// TaskByID looks up a task by id.
func (p *TaskPlan) TaskByID(id string) (*AgentTask, bool) {
	task, ok := p.tasksByID[id]
	return task, ok
}

// HasPendingTasks reports whether any task is still pending.
func (p *TaskPlan) HasPendingTasks() bool {
	return p.NextPendingTask() != nil
}

// NextPendingTask returns the first pending task in plan order, or nil.
func (p *TaskPlan) NextPendingTask() *AgentTask {
	for _, id := range p.order {
		if p.tasksByID[id].Status == TaskPending {
			return p.tasksByID[id]
		}
	}
	return nil
}

// AddTask appends a task to the plan. A task whose id already exists is
// ignored; ids are stable across replanning.
func (p *TaskPlan) AddTask(task AgentTask) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if _, exists := p.tasksByID[task.ID]; exists {
		return
	}
	if task.Status == "" {
		task.Status = TaskPending
	}
	copied := task
	p.tasksByID[task.ID] = &copied
	p.order = append(p.order, task.ID)
}

// RemovePendingTask deletes a task by id. Completed or in-progress tasks
// are never removed.
func (p *TaskPlan) RemovePendingTask(id string) bool {
	task, ok := p.tasksByID[id]
	if !ok || task.Status != TaskPending {
		return false
	}
	delete(p.tasksByID, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// ModifyTask overwrites name/description/document of a pending task in
// place. Id and status are preserved. Empty fields leave the current value
// untouched.
func (p *TaskPlan) ModifyTask(id, name, description, document string) bool {
	task, ok := p.tasksByID[id]
	if !ok || task.Status != TaskPending {
		return false
	}
	if name != "" {
		task.Name = name
	}
	if description != "" {
		task.Description = description
	}
	if document != "" {
		task.Document = document
	}
	return true
}

// CompletedCount returns the number of completed tasks.
func (p *TaskPlan) CompletedCount() int {
	count := 0
	for _, id := range p.order {
		if p.tasksByID[id].Status == TaskCompleted {
			count++
		}
	}
	return count
}

// PendingCount returns the number of pending tasks.
func (p *TaskPlan) PendingCount() int {
	count := 0
	for _, id := range p.order {
		if p.tasksByID[id].Status == TaskPending {
			count++
		}
	}
	return count
}

// StatusText renders the plan state (ids, names, statuses) for replanning
// prompts.
func (p *TaskPlan) StatusText() string {
	var b strings.Builder
	for _, id := range p.order {
		task := p.tasksByID[id]
		fmt.Fprintf(&b, "- [%s] %s (id: %s): %s\n", task.Status, task.Name, task.ID, task.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ProgressSummary renders a short completed/total line for replanning
// prompts.
func (p *TaskPlan) ProgressSummary() string {
	return fmt.Sprintf("%d/%d tasks completed, %d pending",
		p.CompletedCount(), p.Len(), p.PendingCount())
}

// TaskResult is the immutable record of one executed task. Produced exactly
// once per executed task; failure is encoded in Analysis, never as a
// missing result.
type TaskResult struct {
	Task          AgentTask `json:"task"`
	SelectedPages []Page    `json:"selected_pages"`
	Analysis      string    `json:"analysis"`
}

// PagesAnalyzed returns the number of pages used for this task.
func (r TaskResult) PagesAnalyzed() int {
	return len(r.SelectedPages)
}

// AgentQueryResult is the terminal value returned to the caller; never
// mutated after construction.
type AgentQueryResult struct {
	Query           string        `json:"query"`
	Answer          string        `json:"answer"`
	SelectedPages   []Page        `json:"selected_pages"`
	TaskResults     []TaskResult  `json:"task_results"`
	TotalIterations int           `json:"total_iterations"`
	ProcessingTime  time.Duration `json:"processing_time"`
	TotalCost       float64       `json:"total_cost"`
}

// UniquePages returns the selected pages with per-document duplicates
// removed, preserving first-seen order.
func (r *AgentQueryResult) UniquePages() []Page {
	seen := make(map[string]bool, len(r.SelectedPages))
	unique := make([]Page, 0, len(r.SelectedPages))
	for _, p := range r.SelectedPages {
		key := fmt.Sprintf("%s:%d", p.DocumentID, p.PageNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}
	return unique
}

// TotalPagesAnalyzed returns the page count summed across all task results.
func (r *AgentQueryResult) TotalPagesAnalyzed() int {
	total := 0
	for _, tr := range r.TaskResults {
		total += tr.PagesAnalyzed()
	}
	return total
}
