// Package subagent evaluates ideas with a single coordinator agent that
// delegates every phase through the task tool.
package subagent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ideation-orchestrator/internal/application/port/input"
	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/infrastructure/prompts"
	"ideation-orchestrator/internal/usecase/monitor"
	"ideation-orchestrator/internal/usecase/scoring"

	"github.com/google/uuid"
)

const DefaultMaxTurns = 50

var _ input.Evaluator = (*Orchestrator)(nil)

type Config struct {
	Threshold float64
	MaxTurns  int
	OutputDir string
}

type Orchestrator struct {
	coordinator output.TextGenerator
	agents      output.AgentRegistry
	template    string
	cfg         Config
	logger      output.LoggerPort
	ui          output.UserInteractionPort
	collector   *monitor.Collector
}

type Option func(*Orchestrator)

func WithUserInteraction(ui output.UserInteractionPort) Option {
	return func(o *Orchestrator) { o.ui = ui }
}

func WithCollector(c *monitor.Collector) Option {
	return func(o *Orchestrator) { o.collector = c }
}

// New builds the coordinator orchestrator. coordinator must be a generator
// whose tool registry exposes the task tool.
func New(
	coordinator output.TextGenerator,
	agents output.AgentRegistry,
	template string,
	cfg Config,
	logger output.LoggerPort,
	opts ...Option,
) *Orchestrator {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if template == "" {
		template = prompts.CoordinatorTemplate
	}
	o := &Orchestrator{
		coordinator: coordinator,
		agents:      agents,
		template:    template,
		cfg:         cfg,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Evaluate(ctx context.Context, topic string) (*entity.IdeaResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is empty")
	}

	result := entity.NewIdeaResult(topic, entity.ModeSubagent, o.cfg.Threshold)
	result.SessionID = uuid.NewString()[:8]
	mon := monitor.New(topic, o.cfg.Threshold, entity.ModeSubagent, monitor.Options{
		OutputDir: o.cfg.OutputDir,
		Collector: o.collector,
		Logger:    o.logger,
	})
	log := o.logger.WithFields(map[string]any{"topic": topic, "session": result.SessionID})
	log.Info("Coordinator evaluation started", "threshold", o.cfg.Threshold)

	systemPrompt, err := prompts.GenerateCoordinatorPrompt(o.template, o.agents, o.cfg.Threshold, criteriaLabels())
	if err != nil {
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}

	rec := &recorder{result: result, monitor: mon, collector: o.collector}
	ctx = withRecorder(ctx, rec)

	if o.ui != nil {
		o.ui.ShowMessage(ctx, "Coordinator started for: "+topic)
	}
	mon.StartPhase(entity.PhaseCoordination)
	resp, err := o.coordinator.Run(ctx, entity.AgentRequest{
		Agent:        entity.AgentCoordinator,
		SystemPrompt: systemPrompt,
		Prompt:       taskPrompt(topic, o.cfg.Threshold),
		AllowedTools: []entity.ToolName{entity.ToolTask},
		MaxTurns:     o.cfg.MaxTurns,
	})
	if err != nil {
		mon.FailPhase(entity.PhaseCoordination, err)
		_, _ = mon.Abort(err)
		log.Error("Coordinator failed", "error", err)
		return result, fmt.Errorf("coordinator: %w", err)
	}
	mon.CompletePhase(entity.PhaseCoordination, resp.APICalls, resp.Usage.TotalTokens)
	o.collector.RecordAgent(entity.AgentCoordinator.String(), resp.APICalls, resp.Usage.TotalTokens)

	result.Report = resp.Text
	result.Scores = resp.Text
	for k, v := range scoring.ExtractCriteria(resp.Text) {
		result.CriterionScores[k] = v
	}
	score, found := scoring.ExtractScore(resp.Text)
	if !found {
		result.AddWarning("no score found in coordinator output")
	}
	result.SetVerdict(score, score < o.cfg.Threshold || scoring.IsEliminated(resp.Text))
	if !result.Eliminated {
		result.PivotSuggestions = entity.PivotNotNeeded
	}

	if path, err := mon.Complete(result.TotalScore, result.Eliminated); err != nil {
		log.Warn("Failed to save metrics", "error", err)
		result.AddWarning("metrics not saved: " + err.Error())
	} else if path != "" {
		log.Debug("Metrics written", "path", path)
	}
	log.Info("Coordinator evaluation finished",
		"score", result.TotalScore,
		"decision", result.Decision,
		"turns", resp.Turns,
		"delegations", len(result.PhasesCompleted),
	)
	return result, nil
}

func taskPrompt(topic string, threshold float64) string {
	return fmt.Sprintf(`Evaluate the startup opportunity: %s

Elimination threshold: %.1f/10

Run the full evaluation workflow through your sub-agents and finish with the scored report.`, topic, threshold)
}

func criteriaLabels() []string {
	out := make([]string, 0, len(scoring.EvaluationRubric))
	for _, c := range scoring.EvaluationRubric {
		out = append(out, c.Label)
	}
	return out
}

// recorder collects what delegated agents produced during one evaluation.
// Delegations run concurrently.
type recorder struct {
	mu        sync.Mutex
	result    *entity.IdeaResult
	monitor   *monitor.Monitor
	collector *monitor.Collector
}

func (r *recorder) record(agent entity.AgentName, resp *entity.AgentResponse, elapsed time.Duration) {
	r.collector.RecordAgent(agent.String(), resp.APICalls, resp.Usage.TotalTokens)
	phase, ok := agentPhases[agent]
	if !ok {
		return
	}
	r.monitor.RecordPhase(phase, elapsed, resp.APICalls, resp.Usage.TotalTokens)

	r.mu.Lock()
	defer r.mu.Unlock()
	if dst := r.field(agent); dst != nil {
		*dst = resp.Text
	}
	r.result.MarkCompleted(string(phase))
}

func (r *recorder) field(agent entity.AgentName) *string {
	switch agent {
	case entity.AgentResearcher:
		return &r.result.ResearchInsights
	case entity.AgentCompetitorAnalyst:
		return &r.result.CompetitorAnalysis
	case entity.AgentMarketAnalyst:
		return &r.result.MarketSizing
	case entity.AgentResourceScout:
		return &r.result.ResourceFindings
	case entity.AgentHypothesisArchitect:
		return &r.result.Hypothesis
	case entity.AgentCustomerDiscovery:
		return &r.result.CustomerDiscovery
	case entity.AgentPivotAdvisor:
		return &r.result.PivotSuggestions
	}
	return nil
}

var agentPhases = map[entity.AgentName]entity.Phase{
	entity.AgentResearcher:          entity.PhaseResearch,
	entity.AgentCompetitorAnalyst:   entity.PhaseCompetitorAnalysis,
	entity.AgentMarketAnalyst:       entity.PhaseMarketSizing,
	entity.AgentResourceScout:       entity.PhaseResourceScout,
	entity.AgentHypothesisArchitect: entity.PhaseHypothesis,
	entity.AgentCustomerDiscovery:   entity.PhaseCustomerDiscovery,
	entity.AgentScoringEvaluator:    entity.PhaseScoring,
	entity.AgentPivotAdvisor:        entity.PhasePivot,
	entity.AgentReportGenerator:     entity.PhaseReport,
}

type recorderKey struct{}

func withRecorder(ctx context.Context, r *recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// RecordDelegation attributes a finished sub-agent run to the evaluation
// carried by ctx. It is meant to be registered as the task tool's result
// callback and is a no-op outside an evaluation.
func RecordDelegation(ctx context.Context, agent entity.AgentName, resp *entity.AgentResponse, elapsed time.Duration) {
	r, ok := ctx.Value(recorderKey{}).(*recorder)
	if !ok || resp == nil {
		return
	}
	r.record(agent, resp, elapsed)
}
