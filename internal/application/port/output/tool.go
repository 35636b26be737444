package output

import (
	"context"

	"formfill-agent/internal/domain/entity"
)

// ToolPort is one browser action offered to the agent. Execute receives the
// raw JSON arguments from the model and returns the observation recorded as
// the step note; an error is recorded as a failed step, never fatal.
type ToolPort interface {
	Name() entity.ToolName
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, arguments string) (string, error)
}

// ToolRegistry lists tools sorted by name so the system prompt and the tool
// definitions sent to the model agree.
type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name entity.ToolName) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
}
