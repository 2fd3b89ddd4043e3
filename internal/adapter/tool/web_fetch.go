package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var _ output.ToolPort = (*WebFetchTool)(nil)

type WebFetchTool struct {
	fetcher output.PageFetcher
	logger  output.LoggerPort
}

func NewWebFetchTool(fetcher output.PageFetcher, logger output.LoggerPort) *WebFetchTool {
	return &WebFetchTool{fetcher: fetcher, logger: logger}
}

func (t *WebFetchTool) Name() entity.ToolName { return entity.ToolWebFetch }

func (t *WebFetchTool) Description() string {
	return "Download a web page found through web_search and return its readable text and links. Use it to read reports, pricing pages and discussions in full."
}

func (t *WebFetchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute http(s) URL",
			},
		},
		"required": []string{"url"},
	}
}

func (t *WebFetchTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	page, err := t.fetcher.Fetch(ctx, args.URL)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", page.URL)
	if page.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", page.Title)
	}
	sb.WriteString("\n")
	sb.WriteString(page.Text)
	if len(page.Links) > 0 {
		sb.WriteString("\n\nLinks:\n")
		for _, l := range page.Links {
			fmt.Fprintf(&sb, "- %s: %s\n", l.Text, l.Href)
		}
	}
	return sb.String(), nil
}
