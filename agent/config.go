package agent

// Config controls the adaptive loop bounds and conversation handling.
type Config struct {
	// MaxIterations bounds the adaptive loop. The loop terminates at
	// this many executed tasks regardless of planner behavior.
	MaxIterations int

	// MaxPagesPerTask caps the page selector's output per task.
	MaxPagesPerTask int

	// MaxTasksPerPlan caps the initial plan size.
	MaxTasksPerPlan int

	// MaxSummaryPages caps how many pages the document summarizer looks at.
	MaxSummaryPages int

	// VisionDetail is the image detail hint passed to vision calls.
	VisionDetail string

	// MaxConversationTurns is the conversation memory depth.
	MaxConversationTurns int

	// TurnsToSummarize is the history length at which older turns are
	// summarized before use.
	TurnsToSummarize int

	// TurnsToKeepFull is how many recent turns stay verbatim when
	// summarizing.
	TurnsToKeepFull int

	// ClassifierFailClosed flips the classifier's parse-failure policy
	// from "needs documents" to "answer directly".
	ClassifierFailClosed bool

	// AnalysisMaxTokens and AnalysisTemperature apply to per-task vision
	// analysis calls.
	AnalysisMaxTokens   int
	AnalysisTemperature float32
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations:        5,
		MaxPagesPerTask:      6,
		MaxTasksPerPlan:      4,
		MaxSummaryPages:      4,
		VisionDetail:         "high",
		MaxConversationTurns: 8,
		TurnsToSummarize:     5,
		TurnsToKeepFull:      3,
		ClassifierFailClosed: false,
		AnalysisMaxTokens:    600,
		AnalysisTemperature:  0.3,
	}
}
