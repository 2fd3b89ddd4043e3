package output

import (
	"context"

	"ideation-orchestrator/internal/domain/entity"
)

type MemoryPort interface {
	Add(ctx context.Context, in entity.MemoryInput) (string, error)
	Search(ctx context.Context, query string, opts entity.SearchOptions) ([]entity.MemoryRecord, error)
	List(ctx context.Context, opts entity.SearchOptions) ([]entity.MemoryRecord, error)
}

// ResearchCache stores raw research payloads keyed by kind and query.
type ResearchCache interface {
	Get(ctx context.Context, kind, query string) (string, bool, error)
	Set(ctx context.Context, kind, query, value string) error
}
