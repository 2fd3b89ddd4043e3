// Package memory implements idea memory, the webhook session protocol and a
// research cache on top of any MemoryPort.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var ErrNotFound = errors.New("memory: not found")

const sectionLimit = 500

type Service struct {
	store  output.MemoryPort
	userID string
	log    output.LoggerPort
	now    func() time.Time
}

func New(store output.MemoryPort, userID string, log output.LoggerPort) *Service {
	if userID == "" {
		userID = "ideation"
	}
	return &Service{store: store, userID: userID, log: log, now: time.Now}
}

func (s *Service) UserID() string { return s.userID }

type EliminatedIdea struct {
	Topic       string
	Reason      string
	Score       float64
	Scores      map[string]float64
	Research    string
	Competitors string
	Market      string
}

func (s *Service) SaveEliminatedIdea(ctx context.Context, idea EliminatedIdea) (string, error) {
	now := s.now()
	text := fmt.Sprintf(`Eliminated Startup Idea: %s

Elimination Date: %s

Reason for Elimination: %s

Scores: %s

Research Insights Summary: %s

Competitor Landscape: %s

Market Size: %s
`, idea.Topic, now.Format(time.RFC3339), idea.Reason, formatScores(idea.Scores),
		section(idea.Research), section(idea.Competitors), section(idea.Market))

	return s.store.Add(ctx, entity.MemoryInput{
		Text:   text,
		UserID: s.userID,
		Metadata: map[string]any{
			"type":      entity.MemoryTypeEliminatedIdea,
			"topic":     idea.Topic,
			"timestamp": now.Format(time.RFC3339),
			"status":    "eliminated",
			"score":     idea.Score,
		},
	})
}

// SaveEvaluation records the outcome of any evaluation, passed or not.
func (s *Service) SaveEvaluation(ctx context.Context, r *entity.IdeaResult) (string, error) {
	status := "passed"
	if r.Eliminated {
		status = "eliminated"
	}
	text := fmt.Sprintf("Evaluated Startup Idea: %s\n\nDecision: %s\n\nScore: %.1f/10\n\nScores: %s\n\nMarket Size: %s\n",
		r.Topic, r.Decision, r.TotalScore, formatScores(r.CriterionScores), section(r.MarketSizing))

	return s.store.Add(ctx, entity.MemoryInput{
		Text:   text,
		UserID: s.userID,
		Metadata: map[string]any{
			"type":       entity.MemoryTypeEvaluatedIdea,
			"topic":      r.Topic,
			"timestamp":  s.now().Format(time.RFC3339),
			"status":     status,
			"score":      r.TotalScore,
			"session_id": r.SessionID,
			"mode":       string(r.Mode),
		},
	})
}

func (s *Service) SaveMarketInsights(ctx context.Context, topic, insights string) (string, error) {
	if strings.TrimSpace(insights) == "" {
		return "", nil
	}
	return s.store.Add(ctx, entity.MemoryInput{
		Text:   fmt.Sprintf("Market insights for %s:\n%s", topic, truncate(insights, 2*sectionLimit)),
		UserID: s.userID,
		Metadata: map[string]any{
			"type":      entity.MemoryTypeMarketInsight,
			"topic":     topic,
			"timestamp": s.now().Format(time.RFC3339),
		},
	})
}

func (s *Service) SavePendingIdea(ctx context.Context, topic, notes string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("pending idea topic is empty")
	}
	text := "Pending Startup Idea: " + topic
	if notes != "" {
		text += "\n\nNotes: " + notes
	}
	return s.store.Add(ctx, entity.MemoryInput{
		Text:   text,
		UserID: s.userID,
		Metadata: map[string]any{
			"type":      entity.MemoryTypePendingIdea,
			"topic":     topic,
			"timestamp": s.now().Format(time.RFC3339),
			"status":    "pending",
		},
	})
}

func (s *Service) GetPendingIdeas(ctx context.Context, limit int) ([]entity.MemoryRecord, error) {
	return s.store.List(ctx, entity.SearchOptions{
		UserID:  s.userID,
		Limit:   limit,
		Filters: map[string]any{"type": entity.MemoryTypePendingIdea},
	})
}

func (s *Service) SearchSimilarIdeas(ctx context.Context, query string, limit int) ([]entity.MemoryRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.store.Search(ctx, query, entity.SearchOptions{UserID: s.userID, Limit: limit})
}

// CheckIfSimilarEliminated returns the closest eliminated idea when its
// similarity reaches threshold.
func (s *Service) CheckIfSimilarEliminated(ctx context.Context, topic string, threshold float64) (*entity.MemoryRecord, bool, error) {
	hits, err := s.store.Search(ctx, topic, entity.SearchOptions{
		UserID:  s.userID,
		Limit:   1,
		Filters: map[string]any{"type": entity.MemoryTypeEliminatedIdea},
	})
	if err != nil {
		return nil, false, err
	}
	if len(hits) == 0 || hits[0].Score < threshold {
		return nil, false, nil
	}
	return &hits[0], true, nil
}

// GetAllIdeas lists evaluated and eliminated ideas. status is all, passed
// or eliminated.
func (s *Service) GetAllIdeas(ctx context.Context, status string, limit int) ([]entity.MemoryRecord, error) {
	var out []entity.MemoryRecord
	for _, typ := range []string{entity.MemoryTypeEvaluatedIdea, entity.MemoryTypeEliminatedIdea} {
		filters := map[string]any{"type": typ}
		if status != "" && status != "all" {
			filters["status"] = status
		}
		recs, err := s.store.List(ctx, entity.SearchOptions{UserID: s.userID, Filters: filters})
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Service) GetMarketInsights(ctx context.Context, query string, limit int) ([]entity.MemoryRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.store.Search(ctx, query, entity.SearchOptions{
		UserID:  s.userID,
		Limit:   limit,
		Filters: map[string]any{"type": entity.MemoryTypeMarketInsight},
	})
}

func formatScores(scores map[string]float64) string {
	if len(scores) == 0 {
		return "N/A"
	}
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.1f", k, scores[k]))
	}
	return strings.Join(parts, ", ")
}

func section(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return truncate(s, sectionLimit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
