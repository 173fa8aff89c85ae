package agent

import "github.com/richinex/docvision/model"

// ProgressEvent identifies a stage transition in the adaptive loop.
type ProgressEvent string

const (
	EventPlanCreated   ProgressEvent = "plan_created"
	EventTaskStarted   ProgressEvent = "task_started"
	EventPagesSelected ProgressEvent = "pages_selected"
	EventTaskCompleted ProgressEvent = "task_completed"
	EventPlanUpdated   ProgressEvent = "plan_updated"
)

// ProgressPayload carries the event-specific data. Fields are populated
// per event: Plan for plan_created/plan_updated, Task and Plan for
// task_started, Task and PageNumbers for pages_selected, Task, Result
// and Plan for task_completed.
type ProgressPayload struct {
	Plan        *model.TaskPlan
	Task        *model.AgentTask
	Result      *model.TaskResult
	PageNumbers []int
}

// ProgressCallback observes the adaptive loop. Callbacks are invoked
// synchronously, after the state mutation they announce. A nil callback
// is valid and changes nothing.
type ProgressCallback func(event ProgressEvent, payload ProgressPayload)
