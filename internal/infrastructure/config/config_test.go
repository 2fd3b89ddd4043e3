package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Evaluation.Threshold)
	assert.Equal(t, "direct", cfg.Evaluation.Mode)
	assert.True(t, cfg.Evaluation.ParallelResearch)
	assert.Equal(t, 2, cfg.Evaluation.MaxScoringIterations)
	assert.Equal(t, 15, cfg.Evaluation.MaxTurns)
	assert.Equal(t, 50, cfg.Evaluation.CoordinatorMaxTurns)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Second, cfg.Webhook.PollInterval)
	assert.Equal(t, 300*time.Second, cfg.Webhook.PhaseTimeout)
	assert.Equal(t, "Othentic-Ai", cfg.Webhook.GitHubOrg)
	assert.Equal(t, "local", cfg.Memory.Backend)
	assert.Equal(t, 0.8, cfg.Memory.SimilarityThreshold)
	assert.False(t, cfg.Notify.Slack.Enabled())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
evaluation:
  threshold: 6.5
  mode: subagent
  phase_timeout: 2m
webhook:
  poll_interval: 1s
  phase_timeout: 5s
`), 0o644))

	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb")
	t.Setenv("SLACK_CHANNEL_ID", "C1")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("IDEATION_EVALUATION_MAX_TURNS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6.5, cfg.Evaluation.Threshold)
	assert.Equal(t, "subagent", cfg.Evaluation.Mode)
	assert.Equal(t, 2*time.Minute, cfg.Evaluation.PhaseTimeout)
	assert.Equal(t, time.Second, cfg.Webhook.PollInterval)
	assert.Equal(t, 7, cfg.Evaluation.MaxTurns)
	assert.Equal(t, "or-key", cfg.LLM.APIKey)
	assert.Equal(t, int64(42), cfg.Notify.Telegram.ChatID)
	assert.True(t, cfg.Notify.Slack.Enabled())
	assert.NoError(t, cfg.RequireLLM())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"threshold": "evaluation:\n  threshold: 11\n",
		"mode":      "evaluation:\n  mode: parallel\n",
		"backend":   "memory:\n  backend: mem0\n",
		"poll":      "webhook:\n  poll_interval: 10s\n  phase_timeout: 1s\n",
	}
	t.Setenv("MEM0_API_KEY", "")
	t.Setenv("IDEATION_MEMORY_MEM0_API_KEY", "")
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRequireWebhook(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.RequireWebhook(), ErrInvalid)
	cfg.Webhook.GitHubToken = "t"
	assert.NoError(t, cfg.RequireWebhook())
}
