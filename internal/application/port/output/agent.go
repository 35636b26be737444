package output

import (
	"context"

	"formfill-agent/internal/domain/entity"
)

// AgentPort is one stateful browser agent, built for a single request.
type AgentPort interface {
	Run(ctx context.Context, task string) (entity.Transcript, error)
	Close()
}

type AgentFactory interface {
	NewAgent(ctx context.Context, settings entity.AgentSettings) (AgentPort, error)
}
