package cli

import (
	"fmt"

	"github.com/richinex/docvision/agent"
)

// progressPrinter renders adaptive-loop events to stdout. In verbose mode
// it also prints the plan contents after every change.
func progressPrinter(verbose bool) agent.ProgressCallback {
	return func(event agent.ProgressEvent, payload agent.ProgressPayload) {
		switch event {
		case agent.EventPlanCreated:
			fmt.Printf("Plan created with %d task(s)\n", payload.Plan.Len())
			if verbose {
				printPlan(payload)
			}
		case agent.EventTaskStarted:
			fmt.Printf("  [%s] %s\n", payload.Task.Status, payload.Task.Name)
		case agent.EventPagesSelected:
			fmt.Printf("    selected pages: %v\n", payload.PageNumbers)
		case agent.EventTaskCompleted:
			fmt.Printf("  [%s] %s (%d pages)\n", payload.Task.Status, payload.Task.Name, payload.Result.PagesAnalyzed())
		case agent.EventPlanUpdated:
			fmt.Printf("Plan updated, now %d task(s)\n", payload.Plan.Len())
			if verbose {
				printPlan(payload)
			}
		}
	}
}

func printPlan(payload agent.ProgressPayload) {
	for _, task := range payload.Plan.Tasks() {
		fmt.Printf("    - [%s] %s: %s\n", task.Status, task.Name, task.Description)
	}
}
