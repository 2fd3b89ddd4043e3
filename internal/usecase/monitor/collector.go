package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ideation"

// Collector holds the process-wide prometheus series.
type Collector struct {
	phaseDuration *prometheus.HistogramVec
	evaluations   *prometheus.CounterVec
	agentCalls    *prometheus.CounterVec
	agentTokens   *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		phaseDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of evaluation phases",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"phase", "status"},
		),
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Completed evaluations",
			},
			[]string{"mode", "decision"},
		),
		agentCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_calls_total",
				Help:      "Model API calls made by agents",
			},
			[]string{"agent"},
		),
		agentTokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_tokens_total",
				Help:      "Tokens consumed by agents",
			},
			[]string{"agent"},
		),
	}
}

func (c *Collector) ObservePhase(phase, status string, seconds float64) {
	if c == nil {
		return
	}
	c.phaseDuration.WithLabelValues(phase, status).Observe(seconds)
}

func (c *Collector) RecordEvaluation(mode, decision string) {
	if c == nil {
		return
	}
	c.evaluations.WithLabelValues(mode, decision).Inc()
}

func (c *Collector) RecordAgent(agent string, apiCalls, tokens int) {
	if c == nil {
		return
	}
	c.agentCalls.WithLabelValues(agent).Add(float64(apiCalls))
	c.agentTokens.WithLabelValues(agent).Add(float64(tokens))
}
