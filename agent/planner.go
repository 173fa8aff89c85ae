package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	ijson "github.com/richinex/docvision/internal/json"
	"github.com/richinex/docvision/llm"
	"github.com/richinex/docvision/model"
)

// Planner produces the initial task plan for a query and revises it after
// every completed task.
type Planner struct {
	client *llm.Client
	config Config
	logger zerolog.Logger
}

// NewPlanner creates a task planner.
func NewPlanner(client *llm.Client, config Config, logger zerolog.Logger) *Planner {
	return &Planner{client: client, config: config, logger: logger}
}

type plannedTask struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Document        string `json:"document"`
	InformationType string `json:"information_type"`
}

type initialPlanResponse struct {
	Tasks []plannedTask `json:"tasks"`
}

type planUpdateResponse struct {
	Action        string         `json:"action"`
	Reason        string         `json:"reason"`
	NewTasks      []plannedTask  `json:"new_tasks"`
	TasksToRemove []string       `json:"tasks_to_remove"`
	ModifiedTasks []modifiedTask `json:"modified_tasks"`
}

type modifiedTask struct {
	TaskID         string `json:"task_id"`
	NewName        string `json:"new_name"`
	NewDescription string `json:"new_description"`
	NewDocument    string `json:"new_document"`
}

// CreateInitialPlan asks the model for the minimum set of tasks needed to
// answer query against the document catalog. A task referencing an unknown
// document id is kept with no assignment (search all pages). Malformed
// output or an empty task list is ErrTaskPlanning, a query-level failure.
func (p *Planner) CreateInitialPlan(ctx context.Context, query string, documents []model.Document) (*model.TaskPlan, error) {
	prompt := fmt.Sprintf(initialPlanningPrompt, query, model.CatalogText(documents))

	resp, err := p.client.ProcessText(ctx, []llm.Message{
		llm.SystemMessage(systemPlanner),
		llm.UserMessage(prompt),
	}, llm.CallOptions{MaxTokens: 800, Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskPlanning, err)
	}

	parsed, err := ijson.ExtractJSONFromResponse[initialPlanResponse](resp.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskPlanning, err)
	}
	if len(parsed.Tasks) == 0 {
		return nil, fmt.Errorf("%w: plan contains no tasks", ErrTaskPlanning)
	}
	if len(parsed.Tasks) > p.config.MaxTasksPerPlan {
		parsed.Tasks = parsed.Tasks[:p.config.MaxTasksPerPlan]
	}

	tasks := make([]model.AgentTask, 0, len(parsed.Tasks))
	for _, pt := range parsed.Tasks {
		tasks = append(tasks, p.buildTask(pt, documents))
	}

	plan := model.NewTaskPlan(tasks)
	p.logger.Info().Int("tasks", plan.Len()).Msg("initial plan created")
	return plan, nil
}

// UpdatePlan revises the plan after a completed task. The model answers
// with one of four actions: continue, add_tasks, remove_tasks or
// modify_tasks. Malformed output or an unknown action is ErrPlanUpdate;
// the caller treats it as continue. The plan is mutated in place; task ids
// are stable across updates and completed tasks are never removed.
func (p *Planner) UpdatePlan(ctx context.Context, plan *model.TaskPlan, completed model.TaskResult, query string, documents []model.Document) error {
	prompt := fmt.Sprintf(planUpdatePrompt,
		query,
		model.CatalogText(documents),
		plan.StatusText(),
		completed.Task.Name,
		completed.Analysis,
		plan.ProgressSummary(),
	)

	resp, err := p.client.ProcessText(ctx, []llm.Message{
		llm.SystemMessage(systemPlanner),
		llm.UserMessage(prompt),
	}, llm.CallOptions{MaxTokens: 600, Temperature: 0.2})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlanUpdate, err)
	}

	parsed, err := ijson.ExtractJSONFromResponse[planUpdateResponse](resp.Text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlanUpdate, err)
	}

	switch parsed.Action {
	case "continue":
		p.logger.Debug().Str("reason", parsed.Reason).Msg("plan unchanged")
	case "add_tasks":
		for _, pt := range parsed.NewTasks {
			plan.AddTask(p.buildTask(pt, documents))
		}
		p.logger.Info().Int("added", len(parsed.NewTasks)).Str("reason", parsed.Reason).Msg("tasks added to plan")
	case "remove_tasks":
		removed := 0
		for _, id := range parsed.TasksToRemove {
			if plan.RemovePendingTask(id) {
				removed++
			}
		}
		p.logger.Info().Int("removed", removed).Str("reason", parsed.Reason).Msg("tasks removed from plan")
	case "modify_tasks":
		modified := 0
		for _, mt := range parsed.ModifiedTasks {
			document := mt.NewDocument
			if document != "" && !documentExists(documents, document) {
				document = ""
			}
			if plan.ModifyTask(mt.TaskID, mt.NewName, mt.NewDescription, document) {
				modified++
			}
		}
		p.logger.Info().Int("modified", modified).Str("reason", parsed.Reason).Msg("tasks modified in plan")
	default:
		return fmt.Errorf("%w: unknown action %q", ErrPlanUpdate, parsed.Action)
	}
	return nil
}

// buildTask converts a planned task into an AgentTask, dropping unknown
// document assignments.
func (p *Planner) buildTask(pt plannedTask, documents []model.Document) model.AgentTask {
	document := pt.Document
	if document != "" && !documentExists(documents, document) {
		p.logger.Warn().Str("task", pt.Name).Str("document", document).Msg("planned task references unknown document, searching all pages")
		document = ""
	}
	return model.NewAgentTask(pt.Name, pt.Description, document, model.ParseInformationType(pt.InformationType))
}

func documentExists(documents []model.Document, id string) bool {
	for _, doc := range documents {
		if doc.ID == id {
			return true
		}
	}
	return false
}
