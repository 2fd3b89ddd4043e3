package telegram

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
)

// maxText is Telegram's message length limit.
const maxText = 4096

var _ output.Notifier = (*Telegram)(nil)

type Telegram struct {
	BotToken string
	ChatID   int64
	APIURL   string
	Client   *http.Client
	backoff  func(attempt int) time.Duration
}

func New(botToken string, chatID int64) *Telegram {
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		APIURL:   "https://api.telegram.org",
		Client:   &http.Client{Timeout: 15 * time.Second},
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt+1) * time.Second },
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Notify sends the text part of n. Block layouts are flattened into lines.
func (t *Telegram) Notify(ctx context.Context, n entity.Notification) error {
	if t.BotToken == "" || t.ChatID == 0 {
		return fmt.Errorf("telegram: bot token and chat id are required")
	}
	text := flatten(n)
	if len(text) > maxText {
		text = text[:maxText-3] + "..."
	}
	body, _ := json.Marshal(map[string]any{
		"chat_id":                  t.ChatID,
		"text":                     text,
		"disable_web_page_preview": true,
	})
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.APIURL, t.BotToken)

	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.backoff(i - 1)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := t.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return nil
		}
		lastErr = fmt.Errorf("telegram status=%d", resp.StatusCode)
	}
	return lastErr
}

func flatten(n entity.Notification) string {
	if len(n.Blocks) == 0 {
		return n.Text
	}
	var lines []string
	for _, b := range n.Blocks {
		if b.Text != nil {
			lines = append(lines, b.Text.Text)
		}
		for _, f := range b.Fields {
			lines = append(lines, f.Text)
		}
	}
	if len(lines) == 0 {
		return n.Text
	}
	return strings.Join(lines, "\n")
}
