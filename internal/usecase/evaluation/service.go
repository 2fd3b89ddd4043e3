// Package evaluation wraps an orchestrator with the idea memory and
// notifications.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ideation-orchestrator/internal/application/port/input"
	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
	"ideation-orchestrator/internal/usecase/memory"
	"ideation-orchestrator/internal/usecase/monitor"
	"ideation-orchestrator/internal/usecase/report"
)

const DefaultSimilarityThreshold = 0.85

var _ input.Evaluator = (*Service)(nil)

type Config struct {
	CheckSimilar        bool
	SimilarityThreshold float64
	Notify              bool
	// OutputDir receives reports/<topic>_report.md. Empty disables saving.
	OutputDir string
}

type Service struct {
	evaluator input.Evaluator
	memory    *memory.Service
	sender    *report.Sender
	cfg       Config
	logger    output.LoggerPort
	ui        output.UserInteractionPort
}

type Option func(*Service)

func WithMemory(m *memory.Service) Option {
	return func(s *Service) { s.memory = m }
}

func WithSender(sender *report.Sender) Option {
	return func(s *Service) { s.sender = sender }
}

func WithUserInteraction(ui output.UserInteractionPort) Option {
	return func(s *Service) { s.ui = ui }
}

func New(evaluator input.Evaluator, cfg Config, logger output.LoggerPort, opts ...Option) *Service {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	s := &Service{evaluator: evaluator, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate runs one evaluation. Memory and notification failures are added
// to the result's warnings; only orchestrator errors are returned.
func (s *Service) Evaluate(ctx context.Context, topic string) (*entity.IdeaResult, error) {
	similar := s.checkSimilar(ctx, topic)

	res, err := s.evaluator.Evaluate(ctx, topic)
	if res == nil {
		return nil, err
	}
	if similar != "" {
		res.AddWarning(similar)
	}
	if err != nil {
		return res, err
	}

	s.persist(ctx, res)
	path := s.saveReport(res)
	s.notify(ctx, res, path)
	return res, nil
}

// EvaluateMany evaluates topics in order. A failed topic does not stop the
// batch; errors are joined.
func (s *Service) EvaluateMany(ctx context.Context, topics []string) ([]*entity.IdeaResult, error) {
	var results []*entity.IdeaResult
	var errs []error
	for i, topic := range topics {
		if s.ui != nil && len(topics) > 1 {
			s.ui.ShowMessage(ctx, fmt.Sprintf("\nEvaluating idea %d/%d: %s", i+1, len(topics), topic))
		}
		res, err := s.Evaluate(ctx, topic)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			s.logger.Error("Evaluation failed", "topic", topic, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", topic, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return results, errors.Join(errs...)
}

func (s *Service) checkSimilar(ctx context.Context, topic string) string {
	if !s.cfg.CheckSimilar || s.memory == nil {
		return ""
	}
	rec, found, err := s.memory.CheckIfSimilarEliminated(ctx, topic, s.cfg.SimilarityThreshold)
	if err != nil {
		s.logger.Warn("Similar idea check failed", "topic", topic, "error", err)
		return ""
	}
	if !found {
		return ""
	}
	msg := fmt.Sprintf("similar to previously eliminated idea %q (similarity %.2f)", rec.MetaString("topic"), rec.Score)
	s.logger.Warn("Similar idea was eliminated before", "topic", topic, "similar", rec.MetaString("topic"), "similarity", rec.Score)
	if s.ui != nil {
		s.ui.ShowMessage(ctx, "⚠ Idea is "+msg)
	}
	return msg
}

func (s *Service) persist(ctx context.Context, res *entity.IdeaResult) {
	if s.memory == nil {
		return
	}
	if _, err := s.memory.SaveEvaluation(ctx, res); err != nil {
		s.warn(res, "evaluation not saved to memory", err)
	}
	if res.Eliminated {
		_, err := s.memory.SaveEliminatedIdea(ctx, memory.EliminatedIdea{
			Topic:       res.Topic,
			Reason:      fmt.Sprintf("Score %.1f below threshold %.1f", res.TotalScore, res.Threshold),
			Score:       res.TotalScore,
			Scores:      res.CriterionScores,
			Research:    res.ResearchInsights,
			Competitors: res.CompetitorAnalysis,
			Market:      res.MarketSizing,
		})
		if err != nil {
			s.warn(res, "eliminated idea not saved to memory", err)
		}
	}
	if strings.TrimSpace(res.MarketSizing) != "" {
		if _, err := s.memory.SaveMarketInsights(ctx, res.Topic, res.MarketSizing); err != nil {
			s.warn(res, "market insights not saved to memory", err)
		}
	}
}

func (s *Service) saveReport(res *entity.IdeaResult) string {
	if s.cfg.OutputDir == "" || strings.TrimSpace(res.Report) == "" {
		return ""
	}
	path := filepath.Join(s.cfg.OutputDir, "reports", monitor.Slug(res.Topic)+"_report.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.warn(res, "report not saved", err)
		return ""
	}
	if err := os.WriteFile(path, []byte(res.Report), 0o644); err != nil {
		s.warn(res, "report not saved", err)
		return ""
	}
	return path
}

func (s *Service) notify(ctx context.Context, res *entity.IdeaResult, reportPath string) {
	if !s.cfg.Notify || s.sender == nil {
		return
	}
	if err := s.sender.SendEvaluationSummary(ctx, res, reportPath); err != nil {
		s.warn(res, "summary notification failed", err)
	}
	sent := s.sender.SendFullReport(ctx, res.Report, res.SessionID, res.Eliminated, res.TotalScore)
	if !sent.OK {
		res.AddWarning(fmt.Sprintf("full report partially delivered (%d/%d): %s",
			sent.Sent, sent.Total, strings.Join(sent.Errors, "; ")))
	}
}

func (s *Service) warn(res *entity.IdeaResult, msg string, err error) {
	s.logger.Warn(msg, "topic", res.Topic, "error", err)
	res.AddWarning(msg + ": " + err.Error())
}
