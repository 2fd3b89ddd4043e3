// Package web downloads pages and reduces their HTML to text an agent can
// read.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var _ output.PageFetcher = (*Fetcher)(nil)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; ideation-orchestrator/1.0)"
	maxBodyBytes     = 4 << 20
)

type Fetcher struct {
	client *http.Client
	clean  CleanConfig
	logger output.LoggerPort
}

func NewFetcher(timeout time.Duration, logger output.LoggerPort) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		clean:  DefaultCleanConfig,
		logger: logger,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*entity.Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}

	page := &entity.Page{URL: resp.Request.URL.String()}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		page.Text = truncate(string(body), f.clean.MaxOutputSize)
	} else {
		page.Title, page.Text, page.Links = ExtractPage(string(body), page.URL, &f.clean)
	}

	f.logger.Debug("Page fetched", "url", page.URL, "textLen", len(page.Text))
	return page, nil
}
