package di

import (
	"context"
	"fmt"
	"strings"

	"ideation-orchestrator/internal/adapter/tool"
	"ideation-orchestrator/internal/application/port/input"
	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/application/service"
	"ideation-orchestrator/internal/domain/entity"
	redischache "ideation-orchestrator/internal/infrastructure/cache/redis"
	"ideation-orchestrator/internal/infrastructure/config"
	"ideation-orchestrator/internal/infrastructure/dispatch/github"
	"ideation-orchestrator/internal/infrastructure/llm/anthropic"
	"ideation-orchestrator/internal/infrastructure/llm/openrouter"
	"ideation-orchestrator/internal/infrastructure/logger"
	"ideation-orchestrator/internal/infrastructure/memory/local"
	"ideation-orchestrator/internal/infrastructure/memory/mem0"
	"ideation-orchestrator/internal/infrastructure/notifier"
	"ideation-orchestrator/internal/infrastructure/notifier/slack"
	"ideation-orchestrator/internal/infrastructure/notifier/telegram"
	"ideation-orchestrator/internal/infrastructure/prompts"
	"ideation-orchestrator/internal/infrastructure/search/serper"
	"ideation-orchestrator/internal/infrastructure/session"
	"ideation-orchestrator/internal/infrastructure/userinteraction"
	"ideation-orchestrator/internal/infrastructure/web"
	"ideation-orchestrator/internal/usecase/agentrun"
	"ideation-orchestrator/internal/usecase/evaluation"
	"ideation-orchestrator/internal/usecase/memory"
	"ideation-orchestrator/internal/usecase/monitor"
	"ideation-orchestrator/internal/usecase/pipeline"
	"ideation-orchestrator/internal/usecase/report"
	"ideation-orchestrator/internal/usecase/research"
	"ideation-orchestrator/internal/usecase/subagent"
	"ideation-orchestrator/internal/usecase/webhook"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds the wired application. Memory is always available; the
// model backend and orchestrators are built only by Evaluation.
type Container struct {
	Config    *config.Config
	Logger    *logger.LoggerAdapter
	UI        output.UserInteractionPort
	Store     output.MemoryPort
	Memory    *memory.Service
	Metrics   *prometheus.Registry
	Collector *monitor.Collector

	closers []func() error
}

type Options struct {
	// Quiet disables console progress output.
	Quiet bool
}

func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{
		Level:  cfg.App.LogLevel,
		Dir:    cfg.App.LogDir,
		Name:   "ideation",
		Stderr: !opts.Quiet && cfg.App.LogDir == "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{Config: cfg, Logger: log}
	c.closers = append(c.closers, log.Close)
	if opts.Quiet {
		c.UI = userinteraction.Quiet{}
	} else {
		c.UI = userinteraction.NewConsole()
	}

	c.Metrics = prometheus.NewRegistry()
	c.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Collector = monitor.NewCollector(c.Metrics)

	store, err := c.openStore()
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store
	c.Memory = memory.New(store, cfg.Memory.UserID, log)
	return c, nil
}

func (c *Container) openStore() (output.MemoryPort, error) {
	cfg := c.Config
	switch cfg.Memory.Backend {
	case "mem0":
		client, err := mem0.New(mem0.Config{APIKey: cfg.Memory.Mem0APIKey, BaseURL: cfg.Memory.Mem0BaseURL}, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create mem0 client: %w", err)
		}
		return client, nil
	default:
		var opts []local.Option
		if emb := c.embedder(); emb != nil {
			opts = append(opts, local.WithEmbedder(emb))
		}
		store, err := local.Open(cfg.Memory.LocalPath, c.Logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open memory store: %w", err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil
	}
}

func (c *Container) embedder() output.EmbedderPort {
	cfg := c.Config.LLM
	if cfg.Provider != "openrouter" || cfg.APIKey == "" || cfg.EmbeddingModel == "" {
		return nil
	}
	return c.openRouter()
}

func (c *Container) openRouter() *openrouter.OpenRouterAdapter {
	cfg := c.Config.LLM
	orCfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Model)
	if cfg.BaseURL != "" {
		orCfg.BaseURL = cfg.BaseURL
	}
	orCfg.EmbeddingModel = cfg.EmbeddingModel
	if cfg.LogRequests {
		orCfg.Logger = c.Logger
	}
	return openrouter.NewOpenRouterAdapter(orCfg)
}

func (c *Container) llm() (output.LLMPort, error) {
	if err := c.Config.RequireLLM(); err != nil {
		return nil, err
	}
	cfg := c.Config.LLM
	if cfg.Provider == "anthropic" {
		baseURL := cfg.BaseURL
		if strings.Contains(baseURL, "openrouter.ai") {
			baseURL = ""
		}
		a, err := anthropic.New(anthropic.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: baseURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic client: %w", err)
		}
		return a, nil
	}
	return c.openRouter(), nil
}

func (c *Container) researchCache(ctx context.Context) output.ResearchCache {
	cfg := c.Config.Cache
	if cfg.RedisAddr != "" {
		rc, err := redischache.New(ctx, redischache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
		if err == nil {
			c.closers = append(c.closers, rc.Close)
			return rc
		}
		c.Logger.Warn("Redis cache unavailable, using memory store", "addr", cfg.RedisAddr, "error", err)
	}
	return memory.NewCache(c.Store, c.Config.Memory.UserID, cfg.TTL)
}

// Tools builds the registry sub-agents draw their allowed tools from.
func (c *Container) Tools(ctx context.Context) *service.ToolRegistryImpl {
	cfg := c.Config
	tools := service.NewToolRegistry()
	if cfg.Search.SerperAPIKey != "" {
		search := serper.New(serper.Config{
			APIKey:  cfg.Search.SerperAPIKey,
			BaseURL: cfg.Search.BaseURL,
			Timeout: cfg.Search.Timeout,
		}, c.Logger)
		svc := research.New(search, c.researchCache(ctx), c.Logger, cfg.Search.NumResults)
		tools.Register(tool.NewWebSearchTool(svc, c.Logger))
	} else {
		c.Logger.Warn("SERPER_API_KEY not set, web_search is disabled")
	}
	tools.Register(tool.NewWebFetchTool(web.NewFetcher(cfg.Search.Timeout, c.Logger), c.Logger))
	return tools
}

func (c *Container) agents() (*service.AgentRegistryImpl, error) {
	profiles, err := prompts.Agents(c.Config.Prompts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent prompts: %w", err)
	}
	reg := service.NewAgentRegistry()
	for _, p := range profiles {
		reg.Register(p)
	}
	return reg, nil
}

// Orchestrator builds the evaluator for the configured mode.
func (c *Container) Orchestrator(ctx context.Context) (input.Evaluator, error) {
	cfg := c.Config
	ev := cfg.Evaluation
	outputDir := ""
	if ev.SaveMetrics {
		outputDir = cfg.App.OutputDir
	}

	mode, _ := entity.ParseMode(ev.Mode)
	if mode == entity.ModeWebhook {
		if err := cfg.RequireWebhook(); err != nil {
			return nil, err
		}
		dispatcher := github.New(github.Config{
			Token:      cfg.Webhook.GitHubToken,
			Org:        cfg.Webhook.GitHubOrg,
			RepoPrefix: cfg.Webhook.RepoPrefix,
			APIURL:     cfg.Webhook.APIURL,
		}, c.Logger)
		return webhook.New(dispatcher, c.Memory, webhook.Config{
			Threshold:    ev.Threshold,
			ProblemOnly:  ev.ProblemOnly,
			PollInterval: cfg.Webhook.PollInterval,
			PhaseTimeout: cfg.Webhook.PhaseTimeout,
			OutputDir:    outputDir,
		}, c.Logger, webhook.WithUserInteraction(c.UI), webhook.WithCollector(c.Collector)), nil
	}

	llm, err := c.llm()
	if err != nil {
		return nil, err
	}
	agents, err := c.agents()
	if err != nil {
		return nil, err
	}
	sessions := session.NewMemoryStore()
	runOpts := []agentrun.Option{
		agentrun.WithUserInteraction(c.UI),
		agentrun.WithTemperature(cfg.LLM.Temperature),
	}
	runner := agentrun.New(llm, c.Tools(ctx), sessions, c.Logger, runOpts...)

	if mode == entity.ModeSubagent {
		task := tool.NewTaskTool(agents, runner, c.Logger, ev.MaxTurns)
		task.OnResult(subagent.RecordDelegation)
		coordTools := service.NewToolRegistry()
		coordTools.Register(task)
		coordinator := agentrun.New(llm, coordTools, sessions, c.Logger, runOpts...)
		return subagent.New(coordinator, agents, prompts.CoordinatorTemplate, subagent.Config{
			Threshold: ev.Threshold,
			MaxTurns:  ev.CoordinatorMaxTurns,
			OutputDir: outputDir,
		}, c.Logger, subagent.WithUserInteraction(c.UI), subagent.WithCollector(c.Collector)), nil
	}

	for _, p := range agents.List() {
		if p.MaxTurns <= 0 {
			p.MaxTurns = ev.MaxTurns
			agents.Register(p)
		}
	}
	return pipeline.New(runner, agents, pipeline.Config{
		Threshold:        ev.Threshold,
		ParallelResearch: ev.ParallelResearch,
		BorderlineLow:    ev.BorderlineLow,
		BorderlineHigh:   ev.BorderlineHigh,
		MaxIterations:    ev.MaxScoringIterations,
		PhaseTimeout:     ev.PhaseTimeout,
		OutputDir:        outputDir,
	}, c.Logger, pipeline.WithUserInteraction(c.UI), pipeline.WithCollector(c.Collector))
}

// Notifier returns the configured chat sinks, or nil when none is set up.
func (c *Container) Notifier() output.Notifier {
	cfg := c.Config.Notify
	var sinks notifier.Multi
	if cfg.Slack.Enabled() {
		s := slack.New(cfg.Slack.BotToken, cfg.Slack.ChannelID)
		if cfg.Slack.APIURL != "" {
			s = s.WithAPIURL(cfg.Slack.APIURL)
		}
		sinks = append(sinks, s)
	}
	if cfg.Telegram.Enabled() {
		t := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if cfg.Telegram.APIURL != "" {
			t.APIURL = cfg.Telegram.APIURL
		}
		sinks = append(sinks, t)
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

// Evaluation wraps the configured orchestrator with memory and notifications.
func (c *Container) Evaluation(ctx context.Context) (*evaluation.Service, error) {
	orch, err := c.Orchestrator(ctx)
	if err != nil {
		return nil, err
	}
	ev := c.Config.Evaluation
	opts := []evaluation.Option{
		evaluation.WithMemory(c.Memory),
		evaluation.WithUserInteraction(c.UI),
	}
	notify := ev.Notify
	if n := c.Notifier(); n != nil {
		opts = append(opts, evaluation.WithSender(report.NewSender(n, c.Logger)))
	} else if notify {
		c.Logger.Warn("Notifications requested but no notifier is configured")
		notify = false
	}
	return evaluation.New(orch, evaluation.Config{
		CheckSimilar:        ev.CheckSimilar,
		SimilarityThreshold: c.Config.Memory.SimilarityThreshold,
		Notify:              notify,
		OutputDir:           c.Config.App.OutputDir,
	}, c.Logger, opts...), nil
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}
