// Package webhook evaluates ideas by triggering remotely hosted agents and
// polling the shared memory for their results.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/input"
	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/usecase/memory"
	"ideation-orchestrator/internal/usecase/monitor"
	"ideation-orchestrator/internal/usecase/report"
	"ideation-orchestrator/internal/usecase/scoring"

	"github.com/google/uuid"
)

var (
	ErrPhaseTimeout  = errors.New("timed out waiting for phase")
	ErrScoreNotFound = errors.New("score not found in memory")
	errTriggerFailed = errors.New("trigger failed")
)

var scoringPhaseNames = map[string]string{
	"problem":  "scoring-evaluator-problem",
	"solution": "scoring-evaluator-solution",
}

const (
	DefaultPollInterval = 10 * time.Second
	DefaultPhaseTimeout = 5 * time.Minute
)

var (
	problemAgents  = []entity.AgentName{entity.AgentResearcher, entity.AgentMarketAnalyst, entity.AgentCustomerDiscovery}
	solutionAgents = []entity.AgentName{entity.AgentCompetitorAnalyst, entity.AgentResourceScout, entity.AgentHypothesisArchitect}
)

var agentPhases = map[entity.AgentName]entity.Phase{
	entity.AgentResearcher:          entity.PhaseResearch,
	entity.AgentMarketAnalyst:       entity.PhaseMarketSizing,
	entity.AgentCustomerDiscovery:   entity.PhaseCustomerDiscovery,
	entity.AgentCompetitorAnalyst:   entity.PhaseCompetitorAnalysis,
	entity.AgentResourceScout:       entity.PhaseResourceScout,
	entity.AgentHypothesisArchitect: entity.PhaseHypothesis,
	entity.AgentPivotAdvisor:        entity.PhasePivot,
	entity.AgentReportGenerator:     entity.PhaseReport,
}

var _ input.Evaluator = (*Orchestrator)(nil)

type Config struct {
	Threshold    float64
	ProblemOnly  bool
	PollInterval time.Duration
	PhaseTimeout time.Duration
	OutputDir    string
}

type Orchestrator struct {
	dispatcher output.AgentDispatcher
	memory     *memory.Service
	cfg        Config
	logger     output.LoggerPort
	ui         output.UserInteractionPort
	collector  *monitor.Collector
}

type Option func(*Orchestrator)

func WithUserInteraction(ui output.UserInteractionPort) Option {
	return func(o *Orchestrator) { o.ui = ui }
}

func WithCollector(c *monitor.Collector) Option {
	return func(o *Orchestrator) { o.collector = c }
}

func New(dispatcher output.AgentDispatcher, mem *memory.Service, cfg Config, logger output.LoggerPort, opts ...Option) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PhaseTimeout <= 0 {
		cfg.PhaseTimeout = DefaultPhaseTimeout
	}
	o := &Orchestrator{
		dispatcher: dispatcher,
		memory:     mem,
		cfg:        cfg,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type run struct {
	result  *entity.IdeaResult
	monitor *monitor.Monitor
	log     output.LoggerPort
}

// Evaluate runs problem validation, then solution validation unless the
// idea is eliminated early or the orchestrator is problem-only.
func (o *Orchestrator) Evaluate(ctx context.Context, topic string) (*entity.IdeaResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is empty")
	}

	r := &run{result: entity.NewIdeaResult(topic, entity.ModeWebhook, o.cfg.Threshold)}
	r.result.SessionID = uuid.NewString()[:8]
	r.monitor = monitor.New(topic, o.cfg.Threshold, entity.ModeWebhook, monitor.Options{
		OutputDir: o.cfg.OutputDir,
		Collector: o.collector,
		Logger:    o.logger,
	})
	r.log = o.logger.WithFields(map[string]any{"topic": topic, "session": r.result.SessionID})
	r.log.Info("Webhook evaluation started", "threshold", o.cfg.Threshold, "problemOnly", o.cfg.ProblemOnly)

	if err := o.memory.InitSession(ctx, r.result.SessionID, topic, o.cfg.Threshold); err != nil {
		return r.result, fmt.Errorf("create session: %w", err)
	}

	o.message(ctx, "Phase 1: Problem Validation")
	o.runAgents(ctx, r, problemAgents)
	problemScore, err := o.score(ctx, r, "problem")
	if err != nil {
		return o.finish(r, err)
	}
	r.result.ProblemScore = problemScore

	if problemScore < o.cfg.Threshold {
		r.log.Info("Eliminated at problem phase", "score", problemScore)
		r.result.SetVerdict(problemScore, true)
		o.runAgents(ctx, r, []entity.AgentName{entity.AgentPivotAdvisor, entity.AgentReportGenerator})
		return o.finish(r, o.collectReport(ctx, r))
	}

	if o.cfg.ProblemOnly {
		r.result.SetVerdict(problemScore, false)
		r.result.PivotSuggestions = entity.PivotNotNeeded
		return o.finish(r, o.collectReport(ctx, r))
	}

	o.message(ctx, "Phase 2: Solution Validation")
	o.runAgents(ctx, r, solutionAgents)
	solutionScore, err := o.score(ctx, r, "solution")
	if err != nil {
		return o.finish(r, err)
	}
	r.result.SolutionScore = solutionScore

	combined := scoring.CombinedScore(problemScore, solutionScore)
	eliminated := combined < o.cfg.Threshold
	r.result.SetVerdict(combined, eliminated)
	if eliminated {
		r.log.Info("Eliminated at solution phase", "score", combined)
		o.runAgents(ctx, r, []entity.AgentName{entity.AgentPivotAdvisor})
	} else {
		r.result.PivotSuggestions = entity.PivotNotNeeded
	}
	o.runAgents(ctx, r, []entity.AgentName{entity.AgentReportGenerator})
	return o.finish(r, o.collectReport(ctx, r))
}

func (o *Orchestrator) finish(r *run, err error) (*entity.IdeaResult, error) {
	var mErr error
	if err != nil {
		_, mErr = r.monitor.Abort(err)
	} else {
		_, mErr = r.monitor.Complete(r.result.TotalScore, r.result.Eliminated)
	}
	if mErr != nil {
		r.result.AddWarning("metrics not saved: " + mErr.Error())
	}
	if err != nil {
		r.log.Error("Webhook evaluation stopped", "error", err)
		return r.result, err
	}
	r.log.Info("Webhook evaluation finished",
		"score", r.result.TotalScore,
		"decision", r.result.Decision,
		"phases", len(r.result.PhasesCompleted),
	)
	return r.result, nil
}

// runAgents triggers and awaits each agent in order. Failures are logged
// and recorded as warnings; the pipeline moves on.
func (o *Orchestrator) runAgents(ctx context.Context, r *run, agents []entity.AgentName) {
	for _, agent := range agents {
		if ctx.Err() != nil {
			return
		}
		phase := agentPhases[agent]
		r.monitor.StartPhase(phase)
		started := time.Now()
		err := o.runAgent(ctx, r, agent)
		if o.ui != nil {
			o.ui.ShowPhaseResult(ctx, phase, time.Since(started), err)
		}
		if err != nil {
			r.monitor.FailPhase(phase, err)
			r.log.Warn("Agent phase not completed", "agent", agent.Slug(), "error", err)
			r.result.AddWarning(fmt.Sprintf("%s: %v", agent.Slug(), err))
			continue
		}
		r.monitor.CompletePhase(phase, 0, 0)
		o.collector.RecordAgent(agent.String(), 0, 0)
		r.result.MarkCompleted(agent.Slug())
	}
}

func (o *Orchestrator) runAgent(ctx context.Context, r *run, agent entity.AgentName) error {
	if err := o.dispatcher.Trigger(ctx, agent, r.result.SessionID, r.result.Topic); err != nil {
		return fmt.Errorf("%w: %v", errTriggerFailed, err)
	}
	done, err := o.memory.WaitForPhase(ctx, r.result.SessionID, agent.Slug(), o.cfg.PhaseTimeout, o.cfg.PollInterval)
	if err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("%w: %s after %s", ErrPhaseTimeout, agent.Slug(), o.cfg.PhaseTimeout)
	}
	return nil
}

// score triggers the scoring agent and waits for its decision for phase.
func (o *Orchestrator) score(ctx context.Context, r *run, phase string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	o.message(ctx, fmt.Sprintf("Scoring %s validation", phase))
	r.monitor.StartPhase(entity.PhaseScoring)
	if err := o.dispatcher.Trigger(ctx, entity.AgentScoringEvaluator, r.result.SessionID, r.result.Topic); err != nil {
		r.monitor.FailPhase(entity.PhaseScoring, err)
		r.result.AddWarning(fmt.Sprintf("%s: trigger failed: %v", scoringPhaseNames[phase], err))
		return 0, fmt.Errorf("%w: %s (trigger failed: %v)", ErrScoreNotFound, phase, err)
	}

	score, err := o.waitForScore(ctx, r.result.SessionID, phase)
	if err != nil {
		r.monitor.FailPhase(entity.PhaseScoring, err)
		return 0, err
	}
	r.monitor.CompletePhase(entity.PhaseScoring, 0, 0)
	r.result.MarkCompleted(scoringPhaseNames[phase])
	r.log.Info("Score received", "phase", phase, "score", score)
	return score, nil
}

func (o *Orchestrator) waitForScore(ctx context.Context, sessionID, phase string) (float64, error) {
	deadline := time.NewTimer(o.cfg.PhaseTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	for {
		score, err := o.memory.GetScore(ctx, sessionID, phase)
		if err == nil {
			return score, nil
		}
		if !errors.Is(err, memory.ErrNotFound) {
			o.logger.Warn("Score lookup failed", "session", sessionID, "phase", phase, "error", err)
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline.C:
			return 0, fmt.Errorf("%w: %s phase after %s", ErrScoreNotFound, phase, o.cfg.PhaseTimeout)
		case <-ticker.C:
		}
	}
}

// collectReport reads what the report generator stored for the session,
// falling back to a rendered summary.
func (o *Orchestrator) collectReport(ctx context.Context, r *run) error {
	recs, err := o.memory.GetSessionContext(ctx, r.result.SessionID, entity.AgentReportGenerator.Slug())
	if err != nil {
		r.log.Warn("Failed to read report from memory", "error", err)
	}
	var parts []string
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].MetaString("type") == entity.MemoryTypePhaseComplete {
			continue
		}
		parts = append(parts, recs[i].Memory)
	}
	r.result.Report = strings.Join(parts, "\n\n")
	if strings.TrimSpace(r.result.Report) == "" {
		r.result.Report = report.RenderSummary(r.result)
	}
	return ctx.Err()
}

func (o *Orchestrator) message(ctx context.Context, msg string) {
	if o.ui != nil {
		o.ui.ShowMessage(ctx, msg)
	}
}
