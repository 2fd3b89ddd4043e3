package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_dir", "")
	v.SetDefault("app.output_dir", ".")

	v.SetDefault("evaluation.threshold", 5.0)
	v.SetDefault("evaluation.mode", "direct")
	v.SetDefault("evaluation.problem_only", false)
	v.SetDefault("evaluation.parallel_research", true)
	v.SetDefault("evaluation.borderline_low", 4.5)
	v.SetDefault("evaluation.borderline_high", 5.5)
	v.SetDefault("evaluation.max_scoring_iterations", 2)
	v.SetDefault("evaluation.max_turns", 15)
	v.SetDefault("evaluation.coordinator_max_turns", 50)
	v.SetDefault("evaluation.phase_timeout", 10*time.Minute)
	v.SetDefault("evaluation.check_similar", true)
	v.SetDefault("evaluation.notify", false)
	v.SetDefault("evaluation.save_metrics", true)

	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "anthropic/claude-sonnet-4")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.embedding_model", "")
	v.SetDefault("llm.log_requests", false)

	v.SetDefault("memory.backend", "local")
	v.SetDefault("memory.user_id", "ideation")
	v.SetDefault("memory.local_path", ".ideation/memory.db")
	v.SetDefault("memory.mem0_api_key", "")
	v.SetDefault("memory.mem0_base_url", "https://api.mem0.ai")
	v.SetDefault("memory.similarity_threshold", 0.8)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("search.serper_api_key", "")
	v.SetDefault("search.base_url", "https://google.serper.dev")
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.num_results", 10)

	v.SetDefault("notify.slack.bot_token", "")
	v.SetDefault("notify.slack.channel_id", "")
	v.SetDefault("notify.slack.api_url", "https://slack.com/api")
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", 0)
	v.SetDefault("notify.telegram.api_url", "https://api.telegram.org")

	v.SetDefault("webhook.github_token", "")
	v.SetDefault("webhook.github_org", "Othentic-Ai")
	v.SetDefault("webhook.repo_prefix", "ideation-agent-")
	v.SetDefault("webhook.api_url", "https://api.github.com")
	v.SetDefault("webhook.poll_interval", 10*time.Second)
	v.SetDefault("webhook.phase_timeout", 300*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("prompts.dir", "")
}

// envAliases maps config keys to the conventional variable names that
// are checked after IDEATION_<KEY>.
var envAliases = map[string][]string{
	"app.env":                   {"APP_ENV"},
	"llm.api_key":               {"OPENROUTER_API_KEY", "ANTHROPIC_API_KEY"},
	"llm.model":                 {"OPENROUTER_MODEL_NAME"},
	"memory.user_id":            {"MEM0_USER_ID"},
	"memory.mem0_api_key":       {"MEM0_API_KEY"},
	"search.serper_api_key":     {"SERPER_API_KEY"},
	"notify.slack.bot_token":    {"SLACK_BOT_TOKEN"},
	"notify.slack.channel_id":   {"SLACK_CHANNEL_ID"},
	"notify.telegram.bot_token": {"TELEGRAM_BOT_TOKEN"},
	"notify.telegram.chat_id":   {"TELEGRAM_CHAT_ID"},
	"webhook.github_token":      {"GITHUB_TOKEN"},
	"cache.redis_addr":          {"REDIS_ADDR"},
}
