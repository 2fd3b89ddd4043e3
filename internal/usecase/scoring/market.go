package scoring

import "fmt"

type MarketSize struct {
	TAM        float64 `json:"tam"`
	SAM        float64 `json:"sam"`
	SOM        float64 `json:"som"`
	GrowthRate float64 `json:"growth_rate"`
}

const (
	DefaultServiceableShare = 0.30
	DefaultObtainableShare  = 0.01
	DefaultGrowthRate       = 0.15
)

// CalculateTAMSAMSOM derives serviceable and obtainable markets from a total.
func CalculateTAMSAMSOM(total, serviceable, obtainable, growth float64) MarketSize {
	sam := total * serviceable
	return MarketSize{
		TAM:        total,
		SAM:        sam,
		SOM:        sam * obtainable,
		GrowthRate: growth,
	}
}

// DefaultMarketSize applies the default shares and growth rate.
func DefaultMarketSize(total float64) MarketSize {
	return CalculateTAMSAMSOM(total, DefaultServiceableShare, DefaultObtainableShare, DefaultGrowthRate)
}

// Projected returns the TAM after n years of growth.
func (m MarketSize) Projected(years int) float64 {
	v := m.TAM
	for i := 0; i < years; i++ {
		v *= 1 + m.GrowthRate
	}
	return v
}

func FormatMarketSize(amount float64) string {
	switch {
	case amount >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", amount/1_000_000_000)
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.1fK", amount/1_000)
	default:
		return fmt.Sprintf("$%.0f", amount)
	}
}
