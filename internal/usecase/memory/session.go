package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ideation-orchestrator/internal/domain/entity"
)

const (
	orchestratorAgent = "orchestrator"
	scorerAgent       = "scoring-evaluator"
)

// SessionUserID namespaces an agent's memories within one session.
func SessionUserID(agent, sessionID string) string {
	return fmt.Sprintf("ideation_%s_%s", agent, sessionID)
}

func (s *Service) InitSession(ctx context.Context, sessionID, problem string, threshold float64) error {
	_, err := s.store.Add(ctx, entity.MemoryInput{
		Text:   "Session initialized for problem: " + problem,
		UserID: SessionUserID(orchestratorAgent, sessionID),
		Metadata: map[string]any{
			"type":       entity.MemoryTypeSessionInit,
			"session_id": sessionID,
			"problem":    problem,
			"threshold":  threshold,
			"status":     "started",
		},
	})
	if err != nil {
		return fmt.Errorf("init session %s: %w", sessionID, err)
	}
	return nil
}

// WritePhaseOutput stores one memory per data entry, then the completion
// marker the orchestrator polls for.
func (s *Service) WritePhaseOutput(ctx context.Context, sessionID, agent, phase string, data map[string]string) error {
	userID := SessionUserID(agent, sessionID)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, err := s.store.Add(ctx, entity.MemoryInput{
			Text:   fmt.Sprintf("%s %s: %s", phase, k, data[k]),
			UserID: userID,
			Metadata: map[string]any{
				"type":       phase + "_output",
				"key":        k,
				"session_id": sessionID,
				"agent":      agent,
			},
		})
		if err != nil {
			return fmt.Errorf("write %s output %s: %w", agent, k, err)
		}
	}

	_, err := s.store.Add(ctx, entity.MemoryInput{
		Text:   fmt.Sprintf("Session %s %s phase complete", sessionID, agent),
		UserID: userID,
		Metadata: map[string]any{
			"type":       entity.MemoryTypePhaseComplete,
			"phase":      phase,
			"session_id": sessionID,
			"agent":      agent,
		},
	})
	if err != nil {
		return fmt.Errorf("mark %s complete: %w", agent, err)
	}
	return nil
}

func (s *Service) CheckPhaseComplete(ctx context.Context, sessionID, agent string) (bool, error) {
	recs, err := s.store.List(ctx, entity.SearchOptions{
		UserID:  SessionUserID(agent, sessionID),
		Limit:   1,
		Filters: map[string]any{"type": entity.MemoryTypePhaseComplete},
	})
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

// WaitForPhase polls until the agent's marker appears. It returns false on
// timeout and an error only when ctx ends or the store fails.
func (s *Service) WaitForPhase(ctx context.Context, sessionID, agent string, timeout, poll time.Duration) (bool, error) {
	done, err := s.WaitForAgents(ctx, sessionID, []string{agent}, timeout, poll)
	if err != nil {
		return false, err
	}
	return done[agent], nil
}

func (s *Service) WaitForAgents(ctx context.Context, sessionID string, agents []string, timeout, poll time.Duration) (map[string]bool, error) {
	completed := make(map[string]bool, len(agents))
	for _, a := range agents {
		completed[a] = false
	}
	if poll <= 0 {
		poll = 10 * time.Second
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		pending := 0
		for _, a := range agents {
			if completed[a] {
				continue
			}
			ok, err := s.CheckPhaseComplete(ctx, sessionID, a)
			if err != nil {
				s.log.Warn("Phase check failed", "session", sessionID, "agent", a, "error", err)
			}
			if ok {
				completed[a] = true
			} else {
				pending++
			}
		}
		if pending == 0 {
			return completed, nil
		}

		select {
		case <-ctx.Done():
			return completed, ctx.Err()
		case <-deadline.C:
			return completed, nil
		case <-ticker.C:
		}
	}
}

func (s *Service) WriteScore(ctx context.Context, sessionID, phase string, score float64, decision string, details map[string]any) error {
	meta := map[string]any{}
	for k, v := range details {
		meta[k] = v
	}
	meta["type"] = entity.MemoryTypeScoringDecision
	meta["phase"] = phase
	meta["score"] = score
	meta["decision"] = decision
	meta["session_id"] = sessionID

	_, err := s.store.Add(ctx, entity.MemoryInput{
		Text:     fmt.Sprintf("Session %s %s phase score: %.1f, decision: %s", sessionID, phase, score, decision),
		UserID:   SessionUserID(scorerAgent, sessionID),
		Metadata: meta,
	})
	if err != nil {
		return fmt.Errorf("write %s score: %w", phase, err)
	}
	return nil
}

// GetScore returns the latest scoring decision for phase (problem or solution).
func (s *Service) GetScore(ctx context.Context, sessionID, phase string) (float64, error) {
	recs, err := s.store.List(ctx, entity.SearchOptions{
		UserID: SessionUserID(scorerAgent, sessionID),
		Filters: map[string]any{
			"type":  entity.MemoryTypeScoringDecision,
			"phase": phase,
		},
	})
	if err != nil {
		return 0, err
	}
	for _, r := range recs {
		if v, ok := r.MetaFloat("score"); ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%s score for session %s: %w", phase, sessionID, ErrNotFound)
}

// GetSessionContext lists what agent wrote in the session, or the
// orchestrator's records when agent is empty.
func (s *Service) GetSessionContext(ctx context.Context, sessionID, agent string) ([]entity.MemoryRecord, error) {
	if agent == "" {
		agent = orchestratorAgent
	}
	return s.store.List(ctx, entity.SearchOptions{
		UserID: SessionUserID(agent, sessionID),
		Limit:  100,
	})
}
