package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Search     SearchConfig     `mapstructure:"search"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Server     ServerConfig     `mapstructure:"server"`
	Prompts    PromptsConfig    `mapstructure:"prompts"`
}

type AppConfig struct {
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	LogDir    string `mapstructure:"log_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

type EvaluationConfig struct {
	Threshold            float64       `mapstructure:"threshold"`
	Mode                 string        `mapstructure:"mode"`
	ProblemOnly          bool          `mapstructure:"problem_only"`
	ParallelResearch     bool          `mapstructure:"parallel_research"`
	BorderlineLow        float64       `mapstructure:"borderline_low"`
	BorderlineHigh       float64       `mapstructure:"borderline_high"`
	MaxScoringIterations int           `mapstructure:"max_scoring_iterations"`
	MaxTurns             int           `mapstructure:"max_turns"`
	CoordinatorMaxTurns  int           `mapstructure:"coordinator_max_turns"`
	PhaseTimeout         time.Duration `mapstructure:"phase_timeout"`
	CheckSimilar         bool          `mapstructure:"check_similar"`
	Notify               bool          `mapstructure:"notify"`
	SaveMetrics          bool          `mapstructure:"save_metrics"`
}

type LLMConfig struct {
	Provider       string  `mapstructure:"provider"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	BaseURL        string  `mapstructure:"base_url"`
	Temperature    float32 `mapstructure:"temperature"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	LogRequests    bool    `mapstructure:"log_requests"`
}

type MemoryConfig struct {
	Backend             string  `mapstructure:"backend"`
	UserID              string  `mapstructure:"user_id"`
	LocalPath           string  `mapstructure:"local_path"`
	Mem0APIKey          string  `mapstructure:"mem0_api_key"`
	Mem0BaseURL         string  `mapstructure:"mem0_base_url"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type SearchConfig struct {
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	NumResults   int           `mapstructure:"num_results"`
}

type NotifyConfig struct {
	Slack    SlackConfig    `mapstructure:"slack"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type SlackConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
	APIURL    string `mapstructure:"api_url"`
}

func (s SlackConfig) Enabled() bool {
	return s.BotToken != "" && s.ChannelID != ""
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	APIURL   string `mapstructure:"api_url"`
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}

type WebhookConfig struct {
	GitHubToken  string        `mapstructure:"github_token"`
	GitHubOrg    string        `mapstructure:"github_org"`
	RepoPrefix   string        `mapstructure:"repo_prefix"`
	APIURL       string        `mapstructure:"api_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PhaseTimeout time.Duration `mapstructure:"phase_timeout"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}
