// Package scoring turns free-text agent output into numeric scores and
// pass/eliminate verdicts.
package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	MinScore = 1.0
	MaxScore = 10.0

	DefaultBorderlineLow  = 4.5
	DefaultBorderlineHigh = 5.5

	ProblemWeight  = 0.6
	SolutionWeight = 0.4
)

// totalPatterns are tried in order; the first match wins.
var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*TOTAL\*\*\s*\|\s*\*\*(\d+\.?\d*)/10\*\*`),
	regexp.MustCompile(`(?i)\*\*TOTAL\*\*[:\s]*\*\*(\d+\.?\d*)/10\*\*`),
	regexp.MustCompile(`(?i)TOTAL[:\s]*(\d+\.?\d*)/10`),
	regexp.MustCompile(`(?i)Total Score\**[:\s]*\**(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)Average[:\s]*(\d+\.?\d*)/10`),
	regexp.MustCompile(`(?i)\*\*Score\*\*[:\s]*(\d+\.?\d*)/10`),
	regexp.MustCompile(`(?i)Score[:\s]*(\d+\.?\d*)/10`),
}

var eliminatePattern = regexp.MustCompile(`(?i)\b(not\s+(?:be\s+)?)?eliminated?\b`)

// ExtractScore returns the overall score stated in text. The bool is false
// when no known score notation is present, in which case the score is 0.
func ExtractScore(text string) (float64, bool) {
	for _, re := range totalPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// IsEliminated reports whether the text carries an elimination verdict.
// "ELIMINATE" and "ELIMINATED" count; "not eliminated" and
// "should not be eliminated" do not.
func IsEliminated(text string) bool {
	for _, m := range eliminatePattern.FindAllStringSubmatch(text, -1) {
		if m[1] == "" {
			return true
		}
	}
	return false
}

// ValidateScore clamps a score into the 1..10 range.
func ValidateScore(score float64) float64 {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ParseScore parses a user or agent supplied score string and clamps it.
func ParseScore(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "/10")), 64)
	if err != nil {
		return 0, err
	}
	return ValidateScore(v), nil
}

// CombinedScore weights the problem and solution phases 60/40.
func CombinedScore(problem, solution float64) float64 {
	return ProblemWeight*problem + SolutionWeight*solution
}

// Passes reports whether the score meets the threshold.
func Passes(score, threshold float64) bool {
	return score >= threshold
}

// Decide returns the decision label used in memory records.
func Decide(score, threshold float64) string {
	if Passes(score, threshold) {
		return "pass"
	}
	return "fail"
}

// IsBorderline reports whether score lies inside [low, high].
func IsBorderline(score, low, high float64) bool {
	return score >= low && score <= high
}

// Assessment is the interpretation of a scoring agent's output.
type Assessment struct {
	Score      float64
	Found      bool
	Criteria   map[string]float64
	Eliminated bool
}

// Assess extracts the total score, per-criterion scores and the verdict.
// When no total is stated but criteria are, the equal-weight average of the
// criteria is used. The idea is eliminated when the text says so or the
// score falls below threshold.
func Assess(text string, threshold float64) Assessment {
	score, found := ExtractScore(text)
	criteria := ExtractCriteria(text)
	if !found && len(criteria) > 0 {
		score, _ = ScoreCriteria(criteria, nil)
		found = true
	}
	return Assessment{
		Score:      score,
		Found:      found,
		Criteria:   criteria,
		Eliminated: IsEliminated(text) || score < threshold,
	}
}
