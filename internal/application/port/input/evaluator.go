package input

import (
	"context"

	"ideation-orchestrator/internal/domain/entity"
)

// Evaluator runs the full evaluation of a single problem statement.
type Evaluator interface {
	Evaluate(ctx context.Context, topic string) (*entity.IdeaResult, error)
}
