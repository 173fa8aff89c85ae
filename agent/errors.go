package agent

import "errors"

// Stage errors for the query pipeline. Most are recovered locally with a
// stage-specific fallback; only ErrTaskPlanning and ErrResponseSynthesis
// reach the outermost handler in ProcessQuery.
var (
	ErrContextProcessing   = errors.New("conversation context processing failed")
	ErrQueryReformulation  = errors.New("query reformulation failed")
	ErrQueryClassification = errors.New("query classification failed")
	ErrTaskPlanning        = errors.New("task planning failed")
	ErrPlanUpdate          = errors.New("plan update failed")
	ErrPageSelection       = errors.New("page selection failed")
	ErrTaskAnalysis        = errors.New("task analysis failed")
	ErrResponseSynthesis   = errors.New("response synthesis failed")
)
