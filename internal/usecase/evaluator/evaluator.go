// Package evaluator runs the scoring agent and judges its output, asking for
// a second opinion when the score lands in the borderline band.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/usecase/scoring"
)

type Config struct {
	Threshold      float64
	BorderlineLow  float64
	BorderlineHigh float64
	// MaxIterations caps scoring runs, the first one included.
	MaxIterations int
}

type Evaluator struct {
	generator output.TextGenerator
	profile   entity.AgentProfile
	cfg       Config
	logger    output.LoggerPort
}

func New(generator output.TextGenerator, profile entity.AgentProfile, cfg Config, logger output.LoggerPort) *Evaluator {
	if cfg.BorderlineLow == 0 && cfg.BorderlineHigh == 0 {
		cfg.BorderlineLow, cfg.BorderlineHigh = scoring.DefaultBorderlineLow, scoring.DefaultBorderlineHigh
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 2
	}
	return &Evaluator{generator: generator, profile: profile, cfg: cfg, logger: logger}
}

type Outcome struct {
	Text       string
	Assessment scoring.Assessment
	Iterations int
	// SessionToken continues from the last scoring run.
	SessionToken string
	APICalls     int
	Tokens       int
}

// Evaluate scores topic, resuming resumeToken. extraContext is appended to
// the first prompt.
func (e *Evaluator) Evaluate(ctx context.Context, topic, resumeToken, extraContext string) (*Outcome, error) {
	resp, err := e.generator.Run(ctx, e.profile.Request(e.buildScoringPrompt(topic, extraContext), resumeToken))
	if err != nil {
		return nil, fmt.Errorf("scoring run failed: %w", err)
	}

	out := &Outcome{}
	out.absorb(resp, e.cfg.Threshold)

	for out.Iterations < e.cfg.MaxIterations &&
		scoring.IsBorderline(out.Assessment.Score, e.cfg.BorderlineLow, e.cfg.BorderlineHigh) {
		e.logger.Info("Borderline score, re-evaluating",
			"score", out.Assessment.Score,
			"iteration", out.Iterations+1,
		)
		resp, err := e.generator.Run(ctx, e.profile.Request(e.buildRescorePrompt(topic, out.Assessment.Score), out.SessionToken))
		if err != nil {
			e.logger.Warn("Re-evaluation failed, keeping previous score", "error", err)
			break
		}
		if !scoring.Assess(resp.Text, e.cfg.Threshold).Found {
			e.logger.Warn("Re-evaluation stated no score, keeping previous score", "score", out.Assessment.Score)
			out.count(resp)
			continue
		}
		out.absorb(resp, e.cfg.Threshold)
	}

	if !out.Assessment.Found {
		e.logger.Warn("No score found in scoring output", "topic", topic)
	}
	e.logger.Info("Scoring completed",
		"score", out.Assessment.Score,
		"eliminated", out.Assessment.Eliminated,
		"iterations", out.Iterations,
	)
	return out, nil
}

func (o *Outcome) absorb(resp *entity.AgentResponse, threshold float64) {
	o.Text = resp.Text
	o.Assessment = scoring.Assess(resp.Text, threshold)
	o.count(resp)
}

// count records a run without taking its assessment.
func (o *Outcome) count(resp *entity.AgentResponse) {
	o.Iterations++
	o.SessionToken = resp.SessionToken
	o.APICalls += resp.APICalls
	o.Tokens += resp.Usage.TotalTokens
}

func (e *Evaluator) buildScoringPrompt(topic, extraContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score the startup opportunity: %s\n\n", topic)
	fmt.Fprintf(&b, "Elimination threshold: %.1f\n\n", e.cfg.Threshold)
	b.WriteString("Use all prior analysis to justify scores.")
	if extraContext = strings.TrimSpace(extraContext); extraContext != "" {
		b.WriteString("\n\n")
		b.WriteString(extraContext)
	}
	return b.String()
}

func (e *Evaluator) buildRescorePrompt(topic string, previous float64) string {
	return fmt.Sprintf(`Re-evaluate the scoring for: %s

Previous score was %.1f/10 (borderline).
Threshold: %.1f

Please reconsider each criterion carefully and provide final scores.`, topic, previous, e.cfg.Threshold)
}
