package mem0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/tidwall/gjson"
)

var _ output.MemoryPort = (*Client)(nil)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Mem0 platform REST API.
type Client struct {
	cfg  Config
	http *http.Client
	log  output.LoggerPort
}

func New(cfg Config, log output.LoggerPort) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("mem0: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mem0.ai"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log}, nil
}

func (c *Client) Add(ctx context.Context, in entity.MemoryInput) (string, error) {
	body := map[string]any{
		"messages": []map[string]string{{"role": "user", "content": in.Text}},
		"user_id":  in.UserID,
		"metadata": in.Metadata,
		"infer":    false,
	}
	raw, err := c.post(ctx, "/v1/memories/", body)
	if err != nil {
		return "", err
	}

	// The add endpoint answers either a bare list or {"results": [...]}.
	res := gjson.ParseBytes(raw)
	if r := res.Get("results"); r.Exists() {
		res = r
	}
	if id := res.Get("0.id").String(); id != "" {
		return id, nil
	}
	if id := res.Get("id").String(); id != "" {
		return id, nil
	}
	return "", nil
}

func (c *Client) Search(ctx context.Context, query string, opts entity.SearchOptions) ([]entity.MemoryRecord, error) {
	body := map[string]any{
		"query":   query,
		"filters": filters(opts),
	}
	if opts.Limit > 0 {
		body["top_k"] = opts.Limit
	}
	raw, err := c.post(ctx, "/v2/memories/search/", body)
	if err != nil {
		return nil, err
	}
	return parseRecords(raw, opts), nil
}

func (c *Client) List(ctx context.Context, opts entity.SearchOptions) ([]entity.MemoryRecord, error) {
	body := map[string]any{"filters": filters(opts)}
	if opts.Limit > 0 {
		body["page_size"] = opts.Limit
	}
	raw, err := c.post(ctx, "/v2/memories/", body)
	if err != nil {
		return nil, err
	}
	return parseRecords(raw, opts), nil
}

func filters(opts entity.SearchOptions) map[string]any {
	and := []map[string]any{}
	if opts.UserID != "" {
		and = append(and, map[string]any{"user_id": opts.UserID})
	}
	for k, v := range opts.Filters {
		and = append(and, map[string]any{"metadata": map[string]any{k: v}})
	}
	return map[string]any{"AND": and}
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mem0: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mem0: %s: %w", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("mem0: read: %w", err)
	}
	if resp.StatusCode >= 300 {
		c.log.Warn("Mem0 request failed", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("mem0: %s: status %d: %s", path, resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

// parseRecords accepts a bare list, {"results": [...]} or {"memories": [...]}.
// Metadata filters are re-applied locally.
func parseRecords(raw []byte, opts entity.SearchOptions) []entity.MemoryRecord {
	res := gjson.ParseBytes(raw)
	for _, key := range []string{"results", "memories"} {
		if r := res.Get(key); r.IsArray() {
			res = r
			break
		}
	}

	var out []entity.MemoryRecord
	res.ForEach(func(_, item gjson.Result) bool {
		rec := entity.MemoryRecord{
			ID:     item.Get("id").String(),
			Memory: item.Get("memory").String(),
			UserID: item.Get("user_id").String(),
			Score:  item.Get("score").Float(),
		}
		if meta, ok := item.Get("metadata").Value().(map[string]any); ok {
			rec.Metadata = meta
		}
		if ts := item.Get("created_at").String(); ts != "" {
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				rec.CreatedAt = t
			}
		}
		if matches(rec.Metadata, opts.Filters) {
			out = append(out, rec)
		}
		return opts.Limit <= 0 || len(out) < opts.Limit
	})
	return out
}

func matches(meta map[string]any, filters map[string]any) bool {
	for k, want := range filters {
		got, ok := meta[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
