package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/infrastructure/logger"
)

type scriptedGenerator struct {
	outputs []string
	errAt   int
	calls   []entity.AgentRequest
}

func (g *scriptedGenerator) Run(ctx context.Context, req entity.AgentRequest) (*entity.AgentResponse, error) {
	g.calls = append(g.calls, req)
	n := len(g.calls)
	if g.errAt == n {
		return nil, errors.New("backend down")
	}
	return &entity.AgentResponse{
		Text:         g.outputs[n-1],
		SessionToken: "tok-" + string(rune('0'+n)),
		APICalls:     1,
		Usage:        entity.Usage{TotalTokens: 100},
	}, nil
}

var profile = entity.AgentProfile{Name: entity.AgentScoringEvaluator, SystemPrompt: "score"}

func newEvaluator(g *scriptedGenerator) *Evaluator {
	return New(g, profile, Config{Threshold: 5}, logger.NewNop())
}

func TestEvaluate_ClearPass(t *testing.T) {
	g := &scriptedGenerator{outputs: []string{"| **TOTAL** | **7.5/10** |\nDecision: PASS"}}

	out, err := newEvaluator(g).Evaluate(context.Background(), "Pet insurance", "tok-0", "")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.Assessment.Score != 7.5 {
		t.Errorf("Expected score=7.5, got %f", out.Assessment.Score)
	}
	if out.Assessment.Eliminated {
		t.Error("Expected eliminated=false")
	}
	if out.Iterations != 1 {
		t.Errorf("Expected 1 iteration, got %d", out.Iterations)
	}
	if g.calls[0].ResumeToken != "tok-0" {
		t.Errorf("Expected resume from tok-0, got %q", g.calls[0].ResumeToken)
	}
	if !strings.Contains(g.calls[0].Prompt, "Elimination threshold: 5.0") {
		t.Errorf("Prompt missing threshold: %s", g.calls[0].Prompt)
	}
}

func TestEvaluate_BorderlineRescore(t *testing.T) {
	g := &scriptedGenerator{outputs: []string{
		"TOTAL: 5.0/10",
		"TOTAL: 4.2/10\nDecision: ELIMINATE",
	}}

	out, err := newEvaluator(g).Evaluate(context.Background(), "Pet insurance", "", "")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.Iterations != 2 {
		t.Fatalf("Expected 2 iterations, got %d", out.Iterations)
	}
	if !strings.Contains(g.calls[1].Prompt, "Previous score was 5.0/10 (borderline).") {
		t.Errorf("Unexpected re-score prompt: %s", g.calls[1].Prompt)
	}
	if g.calls[1].ResumeToken != "tok-1" {
		t.Errorf("Expected re-score to resume tok-1, got %q", g.calls[1].ResumeToken)
	}
	if !out.Assessment.Eliminated || out.Assessment.Score != 4.2 {
		t.Errorf("Expected eliminated at 4.2, got %+v", out.Assessment)
	}
	if out.SessionToken != "tok-2" || out.APICalls != 2 || out.Tokens != 200 {
		t.Errorf("Unexpected totals: %+v", out)
	}
}

func TestEvaluate_RescoreFailureKeepsFirstScore(t *testing.T) {
	g := &scriptedGenerator{outputs: []string{"TOTAL: 5.2/10"}, errAt: 2}

	out, err := newEvaluator(g).Evaluate(context.Background(), "x", "", "")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.Assessment.Score != 5.2 || out.Iterations != 1 {
		t.Errorf("Expected first score kept, got %+v", out)
	}
}

func TestEvaluate_RescoreWithoutScoreKeepsFirst(t *testing.T) {
	g := &scriptedGenerator{outputs: []string{
		"TOTAL: 5.2/10",
		"I reconsidered but will not restate the total.",
	}}

	out, err := newEvaluator(g).Evaluate(context.Background(), "x", "", "")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !out.Assessment.Found || out.Assessment.Score != 5.2 || out.Assessment.Eliminated {
		t.Errorf("Expected first passing score kept, got %+v", out.Assessment)
	}
	if out.Text != "TOTAL: 5.2/10" {
		t.Errorf("Expected first scoring text kept, got %q", out.Text)
	}
	if out.Iterations != 2 || out.APICalls != 2 || out.Tokens != 200 {
		t.Errorf("Expected both runs counted, got %+v", out)
	}
}

func TestEvaluate_NoScoreIsEliminated(t *testing.T) {
	g := &scriptedGenerator{outputs: []string{"I could not decide."}}

	out, err := newEvaluator(g).Evaluate(context.Background(), "x", "", "Competitors:\nnone")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out.Assessment.Found || !out.Assessment.Eliminated {
		t.Errorf("Expected missing score to eliminate, got %+v", out.Assessment)
	}
	if !strings.HasSuffix(g.calls[0].Prompt, "Competitors:\nnone") {
		t.Errorf("Extra context not appended: %s", g.calls[0].Prompt)
	}
}

func TestEvaluate_FirstRunError(t *testing.T) {
	g := &scriptedGenerator{errAt: 1}
	if _, err := newEvaluator(g).Evaluate(context.Background(), "x", "", ""); err == nil {
		t.Fatal("Expected error")
	}
}
