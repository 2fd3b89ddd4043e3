package scoring

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type Criterion struct {
	Key    string
	Label  string
	Weight float64
}

// EvaluationRubric is the eight-criterion rubric the scoring agents use.
// Competition is scored inverted (less competition scores higher).
var EvaluationRubric = []Criterion{
	{Key: "market_size", Label: "Market Size", Weight: 0.125},
	{Key: "competition", Label: "Competition", Weight: 0.125},
	{Key: "differentiation", Label: "Differentiation", Weight: 0.125},
	{Key: "technical_feasibility", Label: "Technical Feasibility", Weight: 0.125},
	{Key: "timing", Label: "Timing", Weight: 0.125},
	{Key: "resource_availability", Label: "Resource Availability", Weight: 0.125},
	{Key: "assumption_testability", Label: "Assumption Testability", Weight: 0.125},
	{Key: "evidence_quality", Label: "Evidence Quality", Weight: 0.125},
}

// ProblemRubric drives the problem validation score.
var ProblemRubric = []Criterion{
	{Key: "problem_severity", Label: "Problem Severity", Weight: 0.25},
	{Key: "market_size", Label: "Market Size", Weight: 0.25},
	{Key: "willingness_to_pay", Label: "Willingness to Pay", Weight: 0.25},
	{Key: "solution_fit", Label: "Solution Fit", Weight: 0.25},
}

// SolutionRubric drives the solution validation score.
var SolutionRubric = []Criterion{
	{Key: "technical_viability", Label: "Technical Viability", Weight: 0.25},
	{Key: "competitive_advantage", Label: "Competitive Advantage", Weight: 0.25},
	{Key: "resource_requirements", Label: "Resource Requirements", Weight: 0.25},
	{Key: "time_to_market", Label: "Time to Market", Weight: 0.25},
}

type criterionMatcher struct {
	key string
	re  *regexp.Regexp
}

var criterionMatchers = buildMatchers()

func buildMatchers() []criterionMatcher {
	seen := make(map[string]bool)
	var out []criterionMatcher
	for _, rubric := range [][]Criterion{EvaluationRubric, ProblemRubric, SolutionRubric} {
		for _, c := range rubric {
			if seen[c.Key] {
				continue
			}
			seen[c.Key] = true
			words := strings.Fields(strings.ToLower(c.Label))
			for i, w := range words {
				words[i] = regexp.QuoteMeta(w)
			}
			name := strings.Join(words, `[\s_-]+`)
			pattern := `(?i)\**` + name + `\**\s*(?:\([^)\n]*\))?\s*[:|]\s*\**\s*(\d+(?:\.\d+)?)(?:\s*/\s*10)?`
			out = append(out, criterionMatcher{key: c.Key, re: regexp.MustCompile(pattern)})
		}
	}
	return out
}

// ExtractCriteria finds per-criterion scores written as "Name: 7/10" or as
// markdown table rows "| Name | 7 |". Values outside 0..10 are ignored.
func ExtractCriteria(text string) map[string]float64 {
	result := make(map[string]float64)
	for _, m := range criterionMatchers {
		sub := m.re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		v, err := strconv.ParseFloat(sub[1], 64)
		if err != nil || v < 0 || v > MaxScore {
			continue
		}
		result[m.key] = v
	}
	return result
}

type WeightedScore struct {
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoreCriteria computes the weighted average of scores. A nil weights map
// weights every criterion equally. Criteria without a weight are ignored and
// the result is normalised by the weights actually used.
func ScoreCriteria(scores map[string]float64, weights map[string]float64) (float64, map[string]WeightedScore) {
	breakdown := make(map[string]WeightedScore, len(scores))
	if len(scores) == 0 {
		return 0, breakdown
	}
	if weights == nil {
		weights = make(map[string]float64, len(scores))
		for k := range scores {
			weights[k] = 1.0 / float64(len(scores))
		}
	}

	var total, used float64
	for k, s := range scores {
		w, ok := weights[k]
		if !ok || w <= 0 {
			continue
		}
		breakdown[k] = WeightedScore{Score: s, Weight: w, Weighted: s * w}
		total += s * w
		used += w
	}
	if used == 0 {
		return 0, breakdown
	}
	return total / used, breakdown
}

// RubricFor picks the rubric of a validation phase; anything other than
// problem or solution gets the full evaluation rubric.
func RubricFor(phase string) []Criterion {
	switch phase {
	case "problem":
		return ProblemRubric
	case "solution":
		return SolutionRubric
	default:
		return EvaluationRubric
	}
}

// RubricWeights returns the weight map of a rubric.
func RubricWeights(rubric []Criterion) map[string]float64 {
	w := make(map[string]float64, len(rubric))
	for _, c := range rubric {
		w[c.Key] = c.Weight
	}
	return w
}

// FormatBreakdown renders criteria scores as a markdown table ordered by key.
func FormatBreakdown(breakdown map[string]WeightedScore) string {
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("| Criterion | Score | Weight |\n|---|---|---|\n")
	for _, k := range keys {
		ws := breakdown[k]
		fmt.Fprintf(&b, "| %s | %.1f/10 | %.2f |\n", k, ws.Score, ws.Weight)
	}
	return b.String()
}
