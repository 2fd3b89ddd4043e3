// Package report renders evaluation results and delivers them to chat sinks.
package report

import (
	"fmt"
	"sort"
	"strings"

	"ideation-orchestrator/internal/domain/entity"
)

// RenderSummary builds the markdown report used when the report agent fails
// or produces nothing.
func RenderSummary(r *entity.IdeaResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Evaluation Report: %s\n\n", r.Topic)
	if r.SessionID != "" {
		fmt.Fprintf(&sb, "Session: `%s`  \n", r.SessionID)
	}
	fmt.Fprintf(&sb, "Mode: %s  \nThreshold: %.1f/10\n\n", r.Mode, r.Threshold)

	fmt.Fprintf(&sb, "## Verdict: %s\n\n", verdict(r))
	fmt.Fprintf(&sb, "**Score**: %.1f/10\n\n", r.TotalScore)
	if r.ProblemScore > 0 {
		fmt.Fprintf(&sb, "- Problem score: %.1f/10\n", r.ProblemScore)
	}
	if r.SolutionScore > 0 {
		fmt.Fprintf(&sb, "- Solution score: %.1f/10\n", r.SolutionScore)
	}
	if len(r.CriterionScores) > 0 {
		sb.WriteString("\n### Criteria\n\n")
		sb.WriteString(formatCriteria(r.CriterionScores))
	}

	sections := []struct{ title, body string }{
		{"Research Insights", r.ResearchInsights},
		{"Competitor Analysis", r.CompetitorAnalysis},
		{"Market Sizing", r.MarketSizing},
		{"Resources", r.ResourceFindings},
		{"Hypothesis", r.Hypothesis},
		{"Customer Discovery", r.CustomerDiscovery},
		{"Scoring", r.Scores},
		{"Pivot Suggestions", r.PivotSuggestions},
	}
	for _, s := range sections {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", s.title, strings.TrimSpace(s.body))
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	return sb.String()
}

// Summary renders the console summary of a batch of evaluations.
func Summary(results []*entity.IdeaResult, threshold float64) string {
	var passed, eliminated []*entity.IdeaResult
	for _, r := range results {
		if r.Eliminated {
			eliminated = append(eliminated, r)
		} else {
			passed = append(passed, r)
		}
	}
	byScore := func(rs []*entity.IdeaResult) {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].TotalScore > rs[j].TotalScore })
	}
	byScore(passed)
	byScore(eliminated)

	var sb strings.Builder
	line := strings.Repeat("=", 60)
	fmt.Fprintf(&sb, "\n%s\nEVALUATION SUMMARY\n%s\n", line, line)
	fmt.Fprintf(&sb, "\nTotal problems evaluated: %d\n", len(results))
	fmt.Fprintf(&sb, "Passed: %d\n", len(passed))
	fmt.Fprintf(&sb, "Eliminated: %d\n", len(eliminated))
	fmt.Fprintf(&sb, "Threshold: %.1f\n", threshold)

	list := func(title string, rs []*entity.IdeaResult) {
		if len(rs) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s:\n", title)
		for _, r := range rs {
			fmt.Fprintf(&sb, "  - %s: %.1f/10\n", shorten(r.Topic, 50), r.TotalScore)
		}
	}
	list("PASSED PROBLEMS", passed)
	list("ELIMINATED PROBLEMS", eliminated)
	return sb.String()
}

// JoinReports concatenates reports for the --output file.
func JoinReports(results []*entity.IdeaResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Report)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func verdict(r *entity.IdeaResult) string {
	if r.Decision != "" {
		return string(r.Decision)
	}
	if r.Eliminated {
		return string(entity.DecisionEliminated)
	}
	return string(entity.DecisionPassed)
}

func shorten(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "..."
}

func formatCriteria(scores map[string]float64) string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %.1f/10\n", strings.ReplaceAll(k, "_", " "), scores[k])
	}
	return sb.String()
}
