package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/tidwall/gjson"
)

const defaultAPIURL = "https://slack.com/api"

var _ output.Notifier = (*Slack)(nil)

type Slack struct {
	token   string
	channel string
	apiURL  string
	client  *http.Client
	backoff func(attempt int) time.Duration
}

func New(botToken, channelID string) *Slack {
	return &Slack{
		token:   botToken,
		channel: channelID,
		apiURL:  defaultAPIURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		backoff: func(attempt int) time.Duration { return time.Duration(attempt+1) * time.Second },
	}
}

// WithAPIURL points the client at another Slack API base.
func (s *Slack) WithAPIURL(u string) *Slack {
	s.apiURL = u
	return s
}

func (s *Slack) Name() string { return "slack" }

// Notify posts to chat.postMessage, retrying up to three times on transport
// errors, non-2xx statuses and rate limits.
func (s *Slack) Notify(ctx context.Context, n entity.Notification) error {
	if s.token == "" || s.channel == "" {
		return fmt.Errorf("slack: bot token and channel are required")
	}
	payload := map[string]any{
		"channel":      s.channel,
		"text":         n.Text,
		"unfurl_links": false,
	}
	if len(n.Blocks) > 0 {
		payload["blocks"] = n.Blocks
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("slack: encode: %w", err)
	}

	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff(i - 1)):
			}
		}
		retry, err := s.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

func (s *Slack) post(ctx context.Context, body []byte) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("slack: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode/100 != 2 {
		return true, fmt.Errorf("slack status=%d", resp.StatusCode)
	}

	res := gjson.ParseBytes(raw)
	if res.Get("ok").Bool() {
		return false, nil
	}
	code := res.Get("error").String()
	return code == "ratelimited", fmt.Errorf("slack: %s", code)
}
