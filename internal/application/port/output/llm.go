package output

import (
	"context"

	"formfill-agent/internal/domain/entity"
)

// LLMPort is one chat model bound to a provider. Implementations are safe
// for a single agent run; each request builds its own.
type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Model is the provider model name, echoed in logs.
	Model() string
}

type ChatRequest struct {
	Messages []entity.Message
	// Tools is empty when the model must answer in plain text.
	Tools       []entity.ToolDefinition
	Temperature float32
}

// ChatResponse carries the assistant message; its ToolCalls are empty when
// the model produced a final answer.
type ChatResponse struct {
	Message entity.Message
}
