package entity

import "time"

type Phase string

const (
	PhaseResearch           Phase = "research"
	PhaseCompetitorAnalysis Phase = "competitor_analysis"
	PhaseMarketSizing       Phase = "market_sizing"
	PhaseResourceScout      Phase = "resource_scout"
	PhaseHypothesis         Phase = "hypothesis"
	PhaseCustomerDiscovery  Phase = "customer_discovery"
	PhaseScoring            Phase = "scoring"
	PhasePivot              Phase = "pivot"
	PhaseReport             Phase = "report"
	PhaseCoordination       Phase = "coordination"
	PhaseComplete           Phase = "complete"
)

func (p Phase) String() string {
	return string(p)
}

type PhaseStatus string

const (
	StatusPending   PhaseStatus = "pending"
	StatusRunning   PhaseStatus = "running"
	StatusCompleted PhaseStatus = "completed"
	StatusFailed    PhaseStatus = "failed"
	StatusSkipped   PhaseStatus = "skipped"
)

// PhaseMetrics tracks one phase of one evaluation.
type PhaseMetrics struct {
	Phase     Phase       `json:"phase"`
	Status    PhaseStatus `json:"status"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Duration  float64     `json:"duration_seconds"`
	APICalls  int         `json:"api_calls"`
	Tokens    int         `json:"tokens_used"`
	Error     string      `json:"error,omitempty"`
}

func (m *PhaseMetrics) Start(now time.Time) {
	m.Status = StatusRunning
	m.StartTime = &now
}

func (m *PhaseMetrics) finish(now time.Time, status PhaseStatus) {
	m.Status = status
	m.EndTime = &now
	if m.StartTime != nil {
		m.Duration = now.Sub(*m.StartTime).Seconds()
	}
}

func (m *PhaseMetrics) Complete(now time.Time, apiCalls, tokens int) {
	m.APICalls = apiCalls
	m.Tokens = tokens
	m.finish(now, StatusCompleted)
}

func (m *PhaseMetrics) Fail(now time.Time, err error) {
	if err != nil {
		m.Error = err.Error()
	}
	m.finish(now, StatusFailed)
}

func (m *PhaseMetrics) Skip(reason string) {
	m.Status = StatusSkipped
	m.Error = reason
}

// EvaluationMetrics aggregates phase metrics for one evaluated topic.
type EvaluationMetrics struct {
	Topic         string                  `json:"topic"`
	Threshold     float64                 `json:"threshold"`
	Mode          Mode                    `json:"orchestrator_mode"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       *time.Time              `json:"end_time,omitempty"`
	TotalDuration float64                 `json:"total_duration_seconds"`
	TotalAPICalls int                     `json:"total_api_calls"`
	TotalTokens   int                     `json:"total_tokens"`
	FinalScore    *float64                `json:"final_score,omitempty"`
	Eliminated    *bool                   `json:"eliminated,omitempty"`
	Error         string                  `json:"error,omitempty"`
	PhaseOrder    []Phase                 `json:"phase_order"`
	Phases        map[Phase]*PhaseMetrics `json:"phases"`
}
