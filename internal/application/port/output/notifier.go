package output

import (
	"context"

	"ideation-orchestrator/internal/domain/entity"
)

type Notifier interface {
	Name() string
	Notify(ctx context.Context, n entity.Notification) error
}

// AgentDispatcher triggers an agent that runs outside this process.
type AgentDispatcher interface {
	Trigger(ctx context.Context, agent entity.AgentName, sessionID, problem string) error
}
