// internal/ai/models.go

// Package ai dispatches text-generation tasks to external providers with a
// single fallback attempt. Provider failures never escape this package:
// callers receive empty content and supply their own static fallback text.
package ai

// TaskType selects the preferred provider for a generation request.
type TaskType string

const (
	TaskSpeed    TaskType = "speed"
	TaskAnalysis TaskType = "analysis"
	TaskCreative TaskType = "creative"
)

// Result is the outcome of a single provider attempt. Adapters convert any
// transport, status, or parse problem into a failed Result instead of
// returning an error, so the orchestrator never handles provider-specific
// failures.
type Result struct {
	Success bool
	Content string
	Err     error
}

func failure(err error) Result {
	return Result{Success: false, Err: err}
}
