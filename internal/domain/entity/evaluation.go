package entity

import "time"

type Decision string

const (
	DecisionPassed     Decision = "PASSED"
	DecisionEliminated Decision = "ELIMINATED"
	// DecisionFailed labels runs that stopped before reaching a verdict.
	DecisionFailed Decision = "FAILED"
)

type Mode string

const (
	ModeDirect   Mode = "direct"
	ModeSubagent Mode = "subagent"
	ModeWebhook  Mode = "webhook"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeDirect, ModeSubagent, ModeWebhook:
		return Mode(s), true
	}
	return "", false
}

// PivotNotNeeded is recorded as pivot output for ideas that pass.
const PivotNotNeeded = "N/A - Idea passed evaluation"

// IdeaResult accumulates everything produced while evaluating one problem.
type IdeaResult struct {
	Topic     string    `json:"topic"`
	SessionID string    `json:"session_id"`
	Mode      Mode      `json:"mode"`
	Threshold float64   `json:"threshold"`
	StartedAt time.Time `json:"started_at"`

	ResearchInsights   string `json:"research_insights,omitempty"`
	CompetitorAnalysis string `json:"competitor_analysis,omitempty"`
	MarketSizing       string `json:"market_sizing,omitempty"`
	ResourceFindings   string `json:"resource_findings,omitempty"`
	Hypothesis         string `json:"hypothesis,omitempty"`
	CustomerDiscovery  string `json:"customer_discovery,omitempty"`
	Scores             string `json:"scores,omitempty"`
	PivotSuggestions   string `json:"pivot_suggestions,omitempty"`
	Report             string `json:"report,omitempty"`

	CriterionScores   map[string]float64 `json:"criterion_scores,omitempty"`
	TotalScore        float64            `json:"total_score"`
	ProblemScore      float64            `json:"problem_score,omitempty"`
	SolutionScore     float64            `json:"solution_score,omitempty"`
	Decision          Decision           `json:"decision"`
	Eliminated        bool               `json:"eliminated"`
	ScoringIterations int                `json:"scoring_iterations"`

	PhasesCompleted []string `json:"phases_completed,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

func NewIdeaResult(topic string, mode Mode, threshold float64) *IdeaResult {
	return &IdeaResult{
		Topic:           topic,
		Mode:            mode,
		Threshold:       threshold,
		StartedAt:       time.Now(),
		CriterionScores: make(map[string]float64),
	}
}

// SetVerdict records the final score and derives the decision from it.
func (r *IdeaResult) SetVerdict(score float64, eliminated bool) {
	r.TotalScore = score
	r.Eliminated = eliminated
	if eliminated {
		r.Decision = DecisionEliminated
	} else {
		r.Decision = DecisionPassed
	}
}

func (r *IdeaResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *IdeaResult) MarkCompleted(phase string) {
	r.PhasesCompleted = append(r.PhasesCompleted, phase)
}
