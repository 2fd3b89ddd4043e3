package entity

import "time"

// Memory record types written into metadata["type"].
const (
	MemoryTypeEliminatedIdea  = "eliminated_idea"
	MemoryTypeEvaluatedIdea   = "evaluated_idea"
	MemoryTypePendingIdea     = "pending_idea"
	MemoryTypeMarketInsight   = "market_insight"
	MemoryTypeSessionInit     = "session_init"
	MemoryTypePhaseComplete   = "phase_complete"
	MemoryTypeScoringDecision = "scoring_decision"
	MemoryTypeResearchCache   = "research_cache"
)

type MemoryInput struct {
	Text     string
	UserID   string
	Metadata map[string]any
}

type MemoryRecord struct {
	ID        string         `json:"id"`
	Memory    string         `json:"memory"`
	UserID    string         `json:"user_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Score     float64        `json:"score,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MetaString reads a string metadata value, returning "" when missing.
func (r MemoryRecord) MetaString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata[key].(string)
	return s
}

// MetaFloat reads a numeric metadata value.
func (r MemoryRecord) MetaFloat(key string) (float64, bool) {
	if r.Metadata == nil {
		return 0, false
	}
	switch v := r.Metadata[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

type SearchOptions struct {
	UserID string
	Limit  int
	// Filters restricts results to records whose metadata equals every entry.
	Filters map[string]any
}
