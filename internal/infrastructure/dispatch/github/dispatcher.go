// Package github triggers agent repositories through repository_dispatch.
package github

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

var _ output.AgentDispatcher = (*Dispatcher)(nil)

type Config struct {
	Token      string
	Org        string
	RepoPrefix string
	APIURL     string
	Timeout    time.Duration
}

type Dispatcher struct {
	cfg    Config
	client *http.Client
	log    output.LoggerPort
}

func New(cfg Config, log output.LoggerPort) *Dispatcher {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.github.com"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Dispatcher{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, log: log}
}

// RepoURL is the dispatch endpoint for agent, e.g.
// https://api.github.com/repos/Othentic-Ai/ideation-agent-market-analyst/dispatches
func (d *Dispatcher) RepoURL(agent entity.AgentName) string {
	return fmt.Sprintf("%s/repos/%s/%s%s/dispatches", d.cfg.APIURL, d.cfg.Org, d.cfg.RepoPrefix, agent.Slug())
}

// Trigger succeeds only on 204 No Content.
func (d *Dispatcher) Trigger(ctx context.Context, agent entity.AgentName, sessionID, problem string) error {
	if d.cfg.Token == "" {
		return fmt.Errorf("github: token is required")
	}
	body, err := json.Marshal(map[string]any{
		"event_type": "run",
		"client_payload": map[string]string{
			"session_id": sessionID,
			"problem":    problem,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.RepoURL(agent), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+d.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("trigger %s: %w", agent.Slug(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("trigger %s: status %d: %s", agent.Slug(), resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	d.log.Debug("Agent triggered", "agent", agent.Slug(), "session", sessionID)
	return nil
}
