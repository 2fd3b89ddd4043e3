package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{"markdown table total", "| **TOTAL** | **7.5/10** |", 7.5, true},
		{"bold total", "**TOTAL**: **6.2/10**", 6.2, true},
		{"plain total", "TOTAL: 4/10", 4, true},
		{"total score without scale", "Total Score: 8.1", 8.1, true},
		{"bold total score", "**Total Score**: 7.2/10", 7.2, true},
		{"average", "Average: 5.5/10", 5.5, true},
		{"bold score", "**Score**: 3/10", 3, true},
		{"plain score", "Score: 9/10", 9, true},
		{"lower case", "total: 5.0/10", 5, true},
		{"total preferred over criterion score", "Market Score: 3/10\nTOTAL: 6/10", 6, true},
		{"nothing", "no numbers here", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractScore(tt.text)
			assert.Equal(t, tt.found, found)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestIsEliminated(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Decision: ELIMINATE", true},
		{"Verdict: eliminated", true},
		{"This idea should not be eliminated.", false},
		{"Not eliminated, it passes.", false},
		{"Elimination threshold: 5.0", false},
		{"Decision: PASS", false},
		{"We did not eliminate it at first. Final: ELIMINATED", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEliminated(tt.text), tt.text)
	}
}

func TestExtractCriteria(t *testing.T) {
	text := `| Criterion | Score |
|---|---|
| Market Size | 8/10 |
| Competition (inverted) | 6 |
| Technical Feasibility | 7.5/10 |
Timing: 11/10
**Evidence Quality**: 5/10`

	got := ExtractCriteria(text)

	assert.Equal(t, 8.0, got["market_size"])
	assert.Equal(t, 6.0, got["competition"])
	assert.Equal(t, 7.5, got["technical_feasibility"])
	assert.Equal(t, 5.0, got["evidence_quality"])
	assert.NotContains(t, got, "timing")
	assert.NotContains(t, got, "differentiation")
}

func TestScoreCriteria(t *testing.T) {
	scores := map[string]float64{"a": 8, "b": 4}

	total, breakdown := ScoreCriteria(scores, nil)
	assert.InDelta(t, 6.0, total, 0.0001)
	assert.InDelta(t, 0.5, breakdown["a"].Weight, 0.0001)

	total, breakdown = ScoreCriteria(scores, map[string]float64{"a": 0.75, "b": 0.25})
	assert.InDelta(t, 7.0, total, 0.0001)
	assert.InDelta(t, 6.0, breakdown["a"].Weighted, 0.0001)

	total, breakdown = ScoreCriteria(scores, map[string]float64{"a": 0.5})
	assert.InDelta(t, 8.0, total, 0.0001)
	assert.NotContains(t, breakdown, "b")

	total, _ = ScoreCriteria(nil, nil)
	assert.Equal(t, 0.0, total)
}

func TestRubricWeightsAndBreakdown(t *testing.T) {
	weights := RubricWeights(RubricFor("problem"))
	require.Len(t, weights, 4)
	assert.Equal(t, 0.25, weights["willingness_to_pay"])
	assert.Len(t, RubricWeights(RubricFor("solution")), 4)
	assert.Len(t, RubricWeights(RubricFor("")), len(EvaluationRubric))

	total, breakdown := ScoreCriteria(map[string]float64{
		"problem_severity":   8,
		"market_size":        6,
		"willingness_to_pay": 7,
		"solution_fit":       5,
		"vibes":              10,
	}, weights)
	assert.InDelta(t, 6.5, total, 0.0001)
	assert.NotContains(t, breakdown, "vibes")

	table := FormatBreakdown(breakdown)
	assert.Equal(t, "| Criterion | Score | Weight |\n|---|---|---|\n"+
		"| market_size | 6.0/10 | 0.25 |\n"+
		"| problem_severity | 8.0/10 | 0.25 |\n"+
		"| solution_fit | 5.0/10 | 0.25 |\n"+
		"| willingness_to_pay | 7.0/10 | 0.25 |\n", table)
}

func TestAssess(t *testing.T) {
	t.Run("criteria fallback", func(t *testing.T) {
		a := Assess("Market Size: 8/10\nCompetition: 6/10", 5)
		assert.True(t, a.Found)
		assert.InDelta(t, 7.0, a.Score, 0.0001)
		assert.False(t, a.Eliminated)
	})

	t.Run("below threshold", func(t *testing.T) {
		a := Assess("TOTAL: 4.0/10", 5)
		assert.True(t, a.Eliminated)
	})

	t.Run("explicit verdict wins over score", func(t *testing.T) {
		a := Assess("TOTAL: 7.0/10\nDecision: ELIMINATE", 5)
		assert.InDelta(t, 7.0, a.Score, 0.0001)
		assert.True(t, a.Eliminated)
	})

	t.Run("missing score eliminates", func(t *testing.T) {
		a := Assess("I could not decide.", 5)
		assert.False(t, a.Found)
		assert.True(t, a.Eliminated)
	})
}

func TestScoreHelpers(t *testing.T) {
	assert.InDelta(t, 6.4, CombinedScore(6, 7), 0.0001)

	assert.Equal(t, 1.0, ValidateScore(0))
	assert.Equal(t, 10.0, ValidateScore(11))
	assert.Equal(t, 5.5, ValidateScore(5.5))

	v, err := ParseScore("7.5/10")
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)
	v, err = ParseScore("15")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
	_, err = ParseScore("abc")
	assert.Error(t, err)

	assert.True(t, IsBorderline(4.5, DefaultBorderlineLow, DefaultBorderlineHigh))
	assert.True(t, IsBorderline(5.5, DefaultBorderlineLow, DefaultBorderlineHigh))
	assert.False(t, IsBorderline(5.6, DefaultBorderlineLow, DefaultBorderlineHigh))

	assert.True(t, Passes(5, 5))
	assert.Equal(t, "fail", Decide(4.9, 5))
	assert.Equal(t, "pass", Decide(5, 5))
}

func TestMarketSize(t *testing.T) {
	m := DefaultMarketSize(1_000_000_000)
	assert.InDelta(t, 300_000_000, m.SAM, 1)
	assert.InDelta(t, 3_000_000, m.SOM, 1)
	assert.InDelta(t, 1_150_000_000, m.Projected(1), 1)

	assert.Equal(t, "$2.5B", FormatMarketSize(2_500_000_000))
	assert.Equal(t, "$3.4M", FormatMarketSize(3_400_000))
	assert.Equal(t, "$1.5K", FormatMarketSize(1_500))
	assert.Equal(t, "$999", FormatMarketSize(999))
}
