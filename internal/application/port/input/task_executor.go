package input

import (
	"context"

	"formfill-agent/internal/domain/entity"
)

// ExecuteResult is a finished agent run. Transcript holds one record per tool
// call followed by the final answer.
type ExecuteResult struct {
	FinalAnswer string
	Iterations  int
	Transcript  entity.Transcript
}

// TaskExecutor runs one rendered task to completion. It returns an error when
// the model fails, the context ends, or the iteration bound is reached.
type TaskExecutor interface {
	Execute(ctx context.Context, task string) (*ExecuteResult, error)
}
