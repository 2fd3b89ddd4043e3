package output

import (
	"context"

	"ideation-orchestrator/internal/domain/entity"
)

type SearchPort interface {
	Search(ctx context.Context, query string, num int) (*entity.SearchResults, error)
}

// PageFetcher downloads a web page and returns its readable text.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*entity.Page, error)
}
