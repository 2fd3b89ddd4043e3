package output

import (
	"context"

	"ideation-orchestrator/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Tools       []entity.ToolDefinition
	Temperature float32
}

type ChatResponse struct {
	Message entity.Message
	Usage   entity.Usage
}

// EmbedderPort turns texts into vectors for semantic search.
type EmbedderPort interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
