package bounty

// Default scoring configuration constants.
const (
	defaultPlacementFactor = 20.0
	defaultWinBonus        = 200
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithPlacementFactor sets the per-rank step of the placement term.
func WithPlacementFactor(factor float64) Option {
	return func(c *Calculator) {
		if factor > 0 {
			c.placementFactor = factor
		}
	}
}

// WithWinBonus sets the flat bonus added to first place.
func WithWinBonus(bonus int) Option {
	return func(c *Calculator) {
		if bonus >= 0 {
			c.winBonus = bonus
		}
	}
}
