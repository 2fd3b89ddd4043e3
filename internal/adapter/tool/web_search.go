package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/usecase/research"
)

var _ output.ToolPort = (*WebSearchTool)(nil)

type WebSearchTool struct {
	research *research.Service
	logger   output.LoggerPort
}

func NewWebSearchTool(svc *research.Service, logger output.LoggerPort) *WebSearchTool {
	return &WebSearchTool{research: svc, logger: logger}
}

func (t *WebSearchTool) Name() entity.ToolName { return entity.ToolWebSearch }

func (t *WebSearchTool) Description() string {
	return "Search the web. Use kind to run a bundle of targeted queries: market (size, growth, trends), competitors, pricing, pain_points (complaints and reviews), tech_stack, trends, social (reddit and X discussion). Use kind=general for a single raw query. Returns titles, links and snippets."
}

func (t *WebSearchTool) Parameters() map[string]interface{} {
	kinds := make([]string, 0, len(research.Kinds))
	for _, k := range research.Kinds {
		kinds = append(kinds, string(k))
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query or subject (industry, product, problem)",
			},
			"kind": map[string]interface{}{
				"type":        "string",
				"enum":        kinds,
				"description": "Kind of research, defaults to general",
			},
		},
		"required": []string{"query"},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Query string `json:"query"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("query is required")
	}
	kind, ok := research.ParseKind(args.Kind)
	if !ok {
		return "", fmt.Errorf("unknown kind %q", args.Kind)
	}

	bundle, err := t.research.Research(ctx, kind, args.Query)
	if err != nil {
		return "", err
	}
	return research.Format(bundle), nil
}
