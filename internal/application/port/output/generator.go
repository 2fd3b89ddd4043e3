package output

import (
	"context"

	"ideation-orchestrator/internal/domain/entity"
)

// TextGenerator is the agent backend: prompt plus tool permissions in,
// text plus continuation token out.
type TextGenerator interface {
	Run(ctx context.Context, req entity.AgentRequest) (*entity.AgentResponse, error)
}

// SessionStore keeps conversation snapshots addressed by continuation token.
type SessionStore interface {
	Load(ctx context.Context, token string) ([]entity.Message, bool, error)
	Save(ctx context.Context, token string, history []entity.Message) error
}
