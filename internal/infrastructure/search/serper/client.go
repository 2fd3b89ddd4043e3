// Package serper is a client for the Serper Google search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/tidwall/gjson"
)

var _ output.SearchPort = (*Client)(nil)

const (
	DefaultBaseURL = "https://google.serper.dev"
	DefaultTimeout = 30 * time.Second
	defaultNum     = 10
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  output.LoggerPort
}

func New(cfg Config, logger output.LoggerPort) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Search runs one query. Transport and API failures are reported in the
// Error field of the result rather than as an error, so a failed search
// reads as "no results" to the agent. Only context cancellation returns an
// error.
func (c *Client) Search(ctx context.Context, query string, num int) (*entity.SearchResults, error) {
	if num <= 0 {
		num = defaultNum
	}
	res := &entity.SearchResults{Query: query, Organic: []entity.SearchHit{}}

	if c.apiKey == "" {
		res.Error = "SERPER_API_KEY not configured"
		return res, nil
	}

	body, err := json.Marshal(map[string]any{"q": query, "num": num})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var timeout interface{ Timeout() bool }
		if errors.As(err, &timeout) && timeout.Timeout() {
			res.Error = fmt.Sprintf("Search timed out after %s", c.http.Timeout)
		} else {
			res.Error = fmt.Sprintf("Request failed: %v", err)
		}
		c.logger.Warn("Search failed", "query", query, "error", res.Error)
		return res, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Sprintf("Request failed: %v", err)
		return res, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Error = fmt.Sprintf("HTTP error: %d", resp.StatusCode)
		c.logger.Warn("Search failed", "query", query, "status", resp.StatusCode)
		return res, nil
	}

	parse(data, res)
	c.logger.Debug("Search completed", "query", query, "hits", len(res.Organic))
	return res, nil
}

func parse(data []byte, res *entity.SearchResults) {
	doc := gjson.ParseBytes(data)
	doc.Get("organic").ForEach(func(_, hit gjson.Result) bool {
		res.Organic = append(res.Organic, entity.SearchHit{
			Title:   hit.Get("title").String(),
			Link:    hit.Get("link").String(),
			Snippet: hit.Get("snippet").String(),
		})
		return true
	})
	if answer := doc.Get("answerBox.answer"); answer.Exists() {
		res.Answer = answer.String()
	} else if snippet := doc.Get("answerBox.snippet"); snippet.Exists() {
		res.Answer = snippet.String()
	}
	for _, q := range doc.Get("relatedSearches.#.query").Array() {
		res.Related = append(res.Related, q.String())
	}
}
