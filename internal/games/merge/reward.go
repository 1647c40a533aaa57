package merge

import "github.com/shopspring/decimal"

// Reward converts merge points into coins: every full PointsPerStep points
// earned in a single move pays CoinsPerStep coins.
type Reward struct {
	PointsPerStep int
	CoinsPerStep  decimal.Decimal
}

// DefaultReward pays half a coin per 100 points.
func DefaultReward() Reward {
	return Reward{
		PointsPerStep: 100,
		CoinsPerStep:  decimal.RequireFromString("0.5"),
	}
}

// Coins returns the coins earned for a move that gained the given points.
func (r Reward) Coins(gain int) decimal.Decimal {
	if r.PointsPerStep <= 0 || gain < r.PointsPerStep {
		return decimal.Zero
	}
	steps := int64(gain / r.PointsPerStep)
	return r.CoinsPerStep.Mul(decimal.NewFromInt(steps))
}
