// Package pipeline runs the fixed multi-phase evaluation, carrying one
// conversation from phase to phase.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/input"
	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/usecase/evaluator"
	"ideation-orchestrator/internal/usecase/monitor"
	"ideation-orchestrator/internal/usecase/report"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrCriticalPhase wraps failures that abort an evaluation.
var ErrCriticalPhase = errors.New("critical phase failed")

const totalPhases = 9

var _ input.Evaluator = (*Orchestrator)(nil)

type Config struct {
	Threshold        float64
	ParallelResearch bool
	BorderlineLow    float64
	BorderlineHigh   float64
	MaxIterations    int
	// PhaseTimeout bounds each phase. Zero means no limit.
	PhaseTimeout time.Duration
	OutputDir    string
}

type Orchestrator struct {
	generator output.TextGenerator
	profiles  map[entity.AgentName]entity.AgentProfile
	cfg       Config
	logger    output.LoggerPort
	ui        output.UserInteractionPort
	collector *monitor.Collector
}

type Option func(*Orchestrator)

func WithUserInteraction(ui output.UserInteractionPort) Option {
	return func(o *Orchestrator) { o.ui = ui }
}

func WithCollector(c *monitor.Collector) Option {
	return func(o *Orchestrator) { o.collector = c }
}

var requiredAgents = []entity.AgentName{
	entity.AgentResearcher,
	entity.AgentCompetitorAnalyst,
	entity.AgentMarketAnalyst,
	entity.AgentResourceScout,
	entity.AgentHypothesisArchitect,
	entity.AgentCustomerDiscovery,
	entity.AgentScoringEvaluator,
	entity.AgentPivotAdvisor,
	entity.AgentReportGenerator,
}

func New(
	generator output.TextGenerator,
	agents output.AgentRegistry,
	cfg Config,
	logger output.LoggerPort,
	opts ...Option,
) (*Orchestrator, error) {
	profiles := make(map[entity.AgentName]entity.AgentProfile, len(requiredAgents))
	for _, name := range requiredAgents {
		p, ok := agents.Get(name)
		if !ok {
			return nil, fmt.Errorf("agent %s is not registered", name)
		}
		profiles[name] = p
	}
	o := &Orchestrator{
		generator: generator,
		profiles:  profiles,
		cfg:       cfg,
		logger:    logger,
		ui:        nopUI{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// run is the mutable state of one evaluation.
type run struct {
	result  *entity.IdeaResult
	monitor *monitor.Monitor
	token   string
	// carry holds parallel outputs the next phase must see explicitly.
	carry []branchOutput
	index int
}

type branchOutput struct {
	title string
	text  string
}

// Evaluate runs all phases for topic. On a critical failure it returns the
// partial result together with an error wrapping ErrCriticalPhase.
func (o *Orchestrator) Evaluate(ctx context.Context, topic string) (*entity.IdeaResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is empty")
	}

	r := &run{
		result: entity.NewIdeaResult(topic, entity.ModeDirect, o.cfg.Threshold),
		monitor: monitor.New(topic, o.cfg.Threshold, entity.ModeDirect, monitor.Options{
			OutputDir: o.cfg.OutputDir,
			Collector: o.collector,
			Logger:    o.logger,
		}),
	}
	r.result.SessionID = uuid.NewString()[:8]
	log := o.logger.WithFields(map[string]any{"topic": topic, "session": r.result.SessionID})
	log.Info("Evaluation started", "threshold", o.cfg.Threshold)

	steps := []func(context.Context, *run) error{
		o.research,
		o.parallelAnalysis,
		o.hypothesis,
		o.customerDiscovery,
		o.score,
		o.pivot,
		o.report,
	}
	for _, step := range steps {
		if err := step(ctx, r); err != nil {
			_, _ = r.monitor.Abort(err)
			log.Error("Evaluation aborted", "error", err)
			return r.result, err
		}
		if err := ctx.Err(); err != nil {
			_, _ = r.monitor.Abort(err)
			log.Warn("Evaluation cancelled", "error", err)
			return r.result, err
		}
	}

	if path, err := r.monitor.Complete(r.result.TotalScore, r.result.Eliminated); err != nil {
		log.Warn("Failed to save metrics", "error", err)
		r.result.AddWarning("metrics not saved: " + err.Error())
	} else if path != "" {
		log.Debug("Metrics written", "path", path)
	}
	log.Info("Evaluation finished",
		"score", r.result.TotalScore,
		"decision", r.result.Decision,
		"phases", len(r.result.PhasesCompleted),
	)
	return r.result, nil
}

// EvaluateMany evaluates topics one after another. Failed topics keep their
// partial results; their errors are joined.
func (o *Orchestrator) EvaluateMany(ctx context.Context, topics []string) ([]*entity.IdeaResult, error) {
	var results []*entity.IdeaResult
	var errs []error
	for i, topic := range topics {
		o.ui.ShowMessage(ctx, fmt.Sprintf("Evaluating idea %d/%d: %s", i+1, len(topics), topic))
		res, err := o.Evaluate(ctx, topic)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", topic, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return results, errors.Join(errs...)
}

// invoke runs one agent for one phase with timeout, monitoring and progress.
func (o *Orchestrator) invoke(ctx context.Context, r *run, phase entity.Phase, agent entity.AgentName, prompt, token string) (*entity.AgentResponse, error) {
	r.monitor.StartPhase(phase)
	started := time.Now()

	pctx, cancel := o.phaseContext(ctx)
	defer cancel()
	resp, err := o.generator.Run(pctx, o.profiles[agent].Request(prompt, token))

	o.ui.ShowPhaseResult(ctx, phase, time.Since(started), err)
	if err != nil {
		r.monitor.FailPhase(phase, err)
		return nil, err
	}
	r.monitor.CompletePhase(phase, resp.APICalls, resp.Usage.TotalTokens)
	o.collector.RecordAgent(agent.String(), resp.APICalls, resp.Usage.TotalTokens)
	return resp, nil
}

func (o *Orchestrator) phaseContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.PhaseTimeout > 0 {
		return context.WithTimeout(ctx, o.cfg.PhaseTimeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) announce(ctx context.Context, r *run, phase entity.Phase) {
	r.index++
	o.ui.ShowPhaseStart(ctx, phase, r.index, totalPhases)
}

// sequential runs a non-critical phase that continues the session.
func (o *Orchestrator) sequential(ctx context.Context, r *run, phase entity.Phase, agent entity.AgentName, prompt string, dst *string) {
	o.announce(ctx, r, phase)
	resp, err := o.invoke(ctx, r, phase, agent, withContext(prompt, r.carry), r.token)
	if err != nil {
		o.warn(r, phase, err)
		return
	}
	r.carry = nil
	*dst = resp.Text
	r.token = resp.SessionToken
	r.result.MarkCompleted(string(phase))
}

func (o *Orchestrator) warn(r *run, phase entity.Phase, err error) {
	o.logger.Warn("Phase failed, continuing", "phase", phase, "error", err)
	r.result.AddWarning(fmt.Sprintf("%s failed: %v", phase, err))
}

func (o *Orchestrator) research(ctx context.Context, r *run) error {
	o.sequential(ctx, r, entity.PhaseResearch, entity.AgentResearcher, researchPrompt(r.result.Topic), &r.result.ResearchInsights)
	return nil
}

type branch struct {
	phase  entity.Phase
	agent  entity.AgentName
	title  string
	prompt string
	dst    *string
}

// parallelAnalysis runs competitor analysis, market sizing and resource
// scouting. In parallel mode every branch forks from the same token and the
// session continues from the last declared branch that succeeded.
func (o *Orchestrator) parallelAnalysis(ctx context.Context, r *run) error {
	topic := r.result.Topic
	branches := []branch{
		{entity.PhaseCompetitorAnalysis, entity.AgentCompetitorAnalyst, "Competitor Analysis", competitorPrompt(topic), &r.result.CompetitorAnalysis},
		{entity.PhaseMarketSizing, entity.AgentMarketAnalyst, "Market Sizing", marketPrompt(topic), &r.result.MarketSizing},
		{entity.PhaseResourceScout, entity.AgentResourceScout, "Resources", resourcePrompt(topic), &r.result.ResourceFindings},
	}

	if !o.cfg.ParallelResearch {
		for _, b := range branches {
			o.sequential(ctx, r, b.phase, b.agent, b.prompt, b.dst)
		}
		return nil
	}

	for _, b := range branches {
		o.announce(ctx, r, b.phase)
	}
	base := withContext("", r.carry)
	responses := make([]*entity.AgentResponse, len(branches))
	errs := make([]error, len(branches))

	var g errgroup.Group
	for i, b := range branches {
		g.Go(func() error {
			responses[i], errs[i] = o.invoke(ctx, r, b.phase, b.agent, b.prompt+base, r.token)
			return nil
		})
	}
	_ = g.Wait()

	cont := -1
	for i, b := range branches {
		if errs[i] != nil {
			o.warn(r, b.phase, errs[i])
			continue
		}
		*b.dst = responses[i].Text
		r.result.MarkCompleted(string(b.phase))
		cont = i
	}
	if cont < 0 {
		return nil
	}

	r.token = responses[cont].SessionToken
	r.carry = nil
	for i, b := range branches {
		if i != cont && errs[i] == nil {
			r.carry = append(r.carry, branchOutput{title: b.title, text: responses[i].Text})
		}
	}
	return nil
}

func (o *Orchestrator) hypothesis(ctx context.Context, r *run) error {
	o.sequential(ctx, r, entity.PhaseHypothesis, entity.AgentHypothesisArchitect, hypothesisPrompt(r.result.Topic), &r.result.Hypothesis)
	return nil
}

func (o *Orchestrator) customerDiscovery(ctx context.Context, r *run) error {
	o.sequential(ctx, r, entity.PhaseCustomerDiscovery, entity.AgentCustomerDiscovery, customerPrompt(r.result.Topic), &r.result.CustomerDiscovery)
	return nil
}

func (o *Orchestrator) score(ctx context.Context, r *run) error {
	o.announce(ctx, r, entity.PhaseScoring)
	r.monitor.StartPhase(entity.PhaseScoring)
	started := time.Now()

	scorer := evaluator.New(o.generator, o.profiles[entity.AgentScoringEvaluator], evaluator.Config{
		Threshold:      o.cfg.Threshold,
		BorderlineLow:  o.cfg.BorderlineLow,
		BorderlineHigh: o.cfg.BorderlineHigh,
		MaxIterations:  o.cfg.MaxIterations,
	}, o.logger)

	pctx, cancel := o.phaseContext(ctx)
	defer cancel()
	out, err := scorer.Evaluate(pctx, r.result.Topic, r.token, withContext("", r.carry))
	o.ui.ShowPhaseResult(ctx, entity.PhaseScoring, time.Since(started), err)
	if err != nil {
		r.monitor.FailPhase(entity.PhaseScoring, err)
		return fmt.Errorf("%w: scoring: %w", ErrCriticalPhase, err)
	}
	r.monitor.CompletePhase(entity.PhaseScoring, out.APICalls, out.Tokens)
	o.collector.RecordAgent(entity.AgentScoringEvaluator.String(), out.APICalls, out.Tokens)

	r.carry = nil
	r.token = out.SessionToken
	r.result.Scores = out.Text
	r.result.ScoringIterations = out.Iterations
	for k, v := range out.Assessment.Criteria {
		r.result.CriterionScores[k] = v
	}
	r.result.SetVerdict(out.Assessment.Score, out.Assessment.Eliminated)
	if !out.Assessment.Found {
		r.result.AddWarning("no score found in scoring output")
	}
	r.result.MarkCompleted(string(entity.PhaseScoring))
	return nil
}

func (o *Orchestrator) pivot(ctx context.Context, r *run) error {
	if !r.result.Eliminated {
		o.announce(ctx, r, entity.PhasePivot)
		r.result.PivotSuggestions = entity.PivotNotNeeded
		r.monitor.SkipPhase(entity.PhasePivot, "idea passed evaluation")
		o.ui.ShowPhaseSkipped(ctx, entity.PhasePivot, "idea passed evaluation")
		return nil
	}
	o.sequential(ctx, r, entity.PhasePivot, entity.AgentPivotAdvisor, pivotPrompt(r.result.Topic, r.result.TotalScore), &r.result.PivotSuggestions)
	return nil
}

func (o *Orchestrator) report(ctx context.Context, r *run) error {
	o.sequential(ctx, r, entity.PhaseReport, entity.AgentReportGenerator, reportPrompt(r.result), &r.result.Report)
	if strings.TrimSpace(r.result.Report) == "" {
		r.result.Report = report.RenderSummary(r.result)
	}
	return nil
}

type nopUI struct{}

func (nopUI) ShowPhaseStart(context.Context, entity.Phase, int, int)              {}
func (nopUI) ShowPhaseResult(context.Context, entity.Phase, time.Duration, error) {}
func (nopUI) ShowPhaseSkipped(context.Context, entity.Phase, string)              {}
func (nopUI) ShowToolStart(context.Context, string, string)                       {}
func (nopUI) ShowToolResult(context.Context, string, string, bool)                {}
func (nopUI) ShowMessage(context.Context, string)                                 {}
