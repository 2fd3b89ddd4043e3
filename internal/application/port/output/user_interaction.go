package output

import (
	"context"
	"time"

	"ideation-orchestrator/internal/domain/entity"
)

type UserInteractionPort interface {
	ShowPhaseStart(ctx context.Context, phase entity.Phase, index, total int)
	ShowPhaseResult(ctx context.Context, phase entity.Phase, elapsed time.Duration, err error)
	ShowPhaseSkipped(ctx context.Context, phase entity.Phase, reason string)
	ShowToolStart(ctx context.Context, toolName, arguments string)
	ShowToolResult(ctx context.Context, toolName, result string, isError bool)
	ShowMessage(ctx context.Context, msg string)
}
