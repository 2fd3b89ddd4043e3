// Package monitor tracks per-phase metrics of one evaluation and exports
// them as JSON and prometheus series.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

type Options struct {
	// OutputDir receives metrics/<topic>_metrics.json. Empty disables saving.
	OutputDir string
	Collector *Collector
	Logger    output.LoggerPort
}

// Monitor is safe for use by parallel phases.
type Monitor struct {
	mu      sync.Mutex
	metrics entity.EvaluationMetrics
	opts    Options
	now     func() time.Time
}

func New(topic string, threshold float64, mode entity.Mode, opts Options) *Monitor {
	m := &Monitor{opts: opts, now: time.Now}
	m.metrics = entity.EvaluationMetrics{
		Topic:     topic,
		Threshold: threshold,
		Mode:      mode,
		StartTime: m.now(),
		Phases:    make(map[entity.Phase]*entity.PhaseMetrics),
	}
	return m
}

func (m *Monitor) phase(p entity.Phase) *entity.PhaseMetrics {
	pm, ok := m.metrics.Phases[p]
	if !ok {
		pm = &entity.PhaseMetrics{Phase: p, Status: entity.StatusPending}
		m.metrics.Phases[p] = pm
		m.metrics.PhaseOrder = append(m.metrics.PhaseOrder, p)
	}
	return pm
}

func (m *Monitor) StartPhase(p entity.Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase(p).Start(m.now())
}

func (m *Monitor) CompletePhase(p entity.Phase, apiCalls, tokens int) {
	m.mu.Lock()
	pm := m.phase(p)
	pm.Complete(m.now(), apiCalls, tokens)
	d := pm.Duration
	m.mu.Unlock()
	m.opts.Collector.ObservePhase(string(p), string(entity.StatusCompleted), d)
}

// RecordPhase stores a phase that ran outside the monitor's view, such as a
// delegated sub-agent.
func (m *Monitor) RecordPhase(p entity.Phase, elapsed time.Duration, apiCalls, tokens int) {
	m.mu.Lock()
	pm := m.phase(p)
	end := m.now()
	pm.Start(end.Add(-elapsed))
	pm.Complete(end, pm.APICalls+apiCalls, pm.Tokens+tokens)
	d := pm.Duration
	m.mu.Unlock()
	m.opts.Collector.ObservePhase(string(p), string(entity.StatusCompleted), d)
}

func (m *Monitor) FailPhase(p entity.Phase, err error) {
	m.mu.Lock()
	pm := m.phase(p)
	pm.Fail(m.now(), err)
	d := pm.Duration
	m.mu.Unlock()
	m.opts.Collector.ObservePhase(string(p), string(entity.StatusFailed), d)
}

func (m *Monitor) SkipPhase(p entity.Phase, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase(p).Skip(reason)
}

// Complete closes the evaluation, computes totals and writes the JSON file.
// It returns the written path, or "" when saving is disabled.
func (m *Monitor) Complete(score float64, eliminated bool) (string, error) {
	decision := entity.DecisionPassed
	if eliminated {
		decision = entity.DecisionEliminated
	}
	return m.finish(decision, func(em *entity.EvaluationMetrics) {
		em.FinalScore = &score
		em.Eliminated = &eliminated
	})
}

// Abort closes an evaluation that stopped before a verdict. No score or
// elimination is stored and the run is counted as FAILED.
func (m *Monitor) Abort(cause error) (string, error) {
	return m.finish(entity.DecisionFailed, func(em *entity.EvaluationMetrics) {
		if cause != nil {
			em.Error = cause.Error()
		}
	})
}

func (m *Monitor) finish(decision entity.Decision, set func(*entity.EvaluationMetrics)) (string, error) {
	m.mu.Lock()
	now := m.now()
	m.metrics.EndTime = &now
	m.metrics.TotalDuration = now.Sub(m.metrics.StartTime).Seconds()
	set(&m.metrics)
	m.metrics.TotalAPICalls, m.metrics.TotalTokens = 0, 0
	for _, pm := range m.metrics.Phases {
		m.metrics.TotalAPICalls += pm.APICalls
		m.metrics.TotalTokens += pm.Tokens
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.opts.Collector.RecordEvaluation(string(snapshot.Mode), string(decision))

	if m.opts.OutputDir == "" {
		return "", nil
	}
	path := filepath.Join(m.opts.OutputDir, "metrics", Slug(snapshot.Topic)+"_metrics.json")
	if err := save(path, snapshot); err != nil {
		return "", err
	}
	if m.opts.Logger != nil {
		m.opts.Logger.Debug("Metrics saved", "path", path)
	}
	return path, nil
}

func (m *Monitor) Snapshot() entity.EvaluationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Monitor) snapshotLocked() entity.EvaluationMetrics {
	out := m.metrics
	out.PhaseOrder = append([]entity.Phase(nil), m.metrics.PhaseOrder...)
	out.Phases = make(map[entity.Phase]*entity.PhaseMetrics, len(m.metrics.Phases))
	for k, v := range m.metrics.Phases {
		cp := *v
		out.Phases[k] = &cp
	}
	return out
}

func save(path string, metrics entity.EvaluationMetrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Slug lowercases the topic, turns spaces into underscores and drops path
// separators.
func Slug(topic string) string {
	s := strings.ToLower(strings.TrimSpace(topic))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, s)
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	if s == "" {
		s = "evaluation"
	}
	return s
}

// Summary renders the metrics as plain text for the console.
func Summary(em entity.EvaluationMetrics) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 60) + "\nEVALUATION METRICS\n" + strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "Topic: %s\n", em.Topic)
	fmt.Fprintf(&sb, "Threshold: %.1f\n", em.Threshold)
	if em.FinalScore != nil {
		fmt.Fprintf(&sb, "Final Score: %.2f/10\n", *em.FinalScore)
	}
	if em.Eliminated != nil {
		status := "PASSED"
		if *em.Eliminated {
			status = "ELIMINATED"
		}
		fmt.Fprintf(&sb, "Status: %s\n", status)
	} else if em.Error != "" {
		fmt.Fprintf(&sb, "Status: FAILED (%s)\n", em.Error)
	}
	fmt.Fprintf(&sb, "Total Duration: %.2fs\n", em.TotalDuration)
	fmt.Fprintf(&sb, "Total API Calls: %d\n", em.TotalAPICalls)
	if em.TotalTokens > 0 {
		fmt.Fprintf(&sb, "Total Tokens: %d\n", em.TotalTokens)
	}
	sb.WriteString("\nPhase Breakdown:\n")
	for _, p := range em.PhaseOrder {
		pm := em.Phases[p]
		fmt.Fprintf(&sb, "  - %s: %s (%.2fs)\n", p, strings.ToUpper(string(pm.Status)), pm.Duration)
	}
	return sb.String()
}
