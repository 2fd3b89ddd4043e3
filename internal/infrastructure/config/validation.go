package config

import (
	"errors"
	"fmt"
)

var ErrInvalid = errors.New("invalid config")

// Validate checks the loaded values, e.g. after command line overrides.
func Validate(c *Config) error {
	if err := c.Evaluation.validate(); err != nil {
		return err
	}
	if err := c.LLM.validate(); err != nil {
		return err
	}
	if err := c.Memory.validate(); err != nil {
		return err
	}
	if err := c.Webhook.validate(); err != nil {
		return err
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (e *EvaluationConfig) validate() error {
	if e.Threshold <= 0 || e.Threshold > 10 {
		return invalid("evaluation.threshold must be in (0, 10], got %v", e.Threshold)
	}
	switch e.Mode {
	case "direct", "subagent", "webhook":
	default:
		return invalid("evaluation.mode must be direct, subagent or webhook, got %q", e.Mode)
	}
	if e.BorderlineLow > e.BorderlineHigh {
		return invalid("evaluation.borderline_low must not exceed borderline_high")
	}
	if e.MaxScoringIterations < 1 {
		return invalid("evaluation.max_scoring_iterations must be >= 1")
	}
	if e.MaxTurns < 1 || e.CoordinatorMaxTurns < 1 {
		return invalid("evaluation.max_turns and coordinator_max_turns must be >= 1")
	}
	if e.PhaseTimeout < 0 {
		return invalid("evaluation.phase_timeout must be >= 0")
	}
	return nil
}

func (l *LLMConfig) validate() error {
	switch l.Provider {
	case "openrouter", "anthropic":
	default:
		return invalid("llm.provider must be openrouter or anthropic, got %q", l.Provider)
	}
	return nil
}

func (m *MemoryConfig) validate() error {
	switch m.Backend {
	case "local", "mem0":
	default:
		return invalid("memory.backend must be local or mem0, got %q", m.Backend)
	}
	if m.Backend == "mem0" && m.Mem0APIKey == "" {
		return invalid("memory.mem0_api_key is required for the mem0 backend")
	}
	if m.SimilarityThreshold < 0 || m.SimilarityThreshold > 1 {
		return invalid("memory.similarity_threshold must be in [0, 1]")
	}
	return nil
}

func (w *WebhookConfig) validate() error {
	if w.PollInterval <= 0 {
		return invalid("webhook.poll_interval must be > 0")
	}
	if w.PhaseTimeout < w.PollInterval {
		return invalid("webhook.phase_timeout must be >= poll_interval")
	}
	return nil
}

// RequireLLM reports whether the model credentials are present.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return invalid("llm.api_key is required (set OPENROUTER_API_KEY or ANTHROPIC_API_KEY)")
	}
	if c.LLM.Model == "" {
		return invalid("llm.model is required")
	}
	return nil
}

// RequireWebhook reports whether webhook mode can dispatch agents.
func (c *Config) RequireWebhook() error {
	if c.Webhook.GitHubToken == "" {
		return invalid("webhook.github_token is required for webhook mode (set GITHUB_TOKEN)")
	}
	return nil
}
