// Package bounty maps a finished race ranking to per-player score deltas.
package bounty

import (
	"math"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// Calculator computes signed bounty deltas from finishing ranks.
type Calculator struct {
	placementFactor float64
	winBonus        int
}

// NewCalculator creates a calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		placementFactor: defaultPlacementFactor,
		winBonus:        defaultWinBonus,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deltas computes one delta per entry of a finalized ranking.
//
// With mid = (N+1)/2, rank r earns round(factor * (mid - r)); first place
// additionally earns the win bonus. Deltas decrease monotonically from top
// to bottom, middle ranks land near zero, and first place is strictly the
// maximum. A sole entrant (N == 1, mid == 1) earns exactly the win bonus.
func (c *Calculator) Deltas(ranking model.RaceRanking) []model.BountyDelta {
	n := ranking.Size()
	if n == 0 {
		return nil
	}
	mid := float64(n+1) / 2
	deltas := make([]model.BountyDelta, 0, n)
	for _, entry := range ranking.Entries {
		d := int(math.Round(c.placementFactor * (mid - float64(entry.Rank))))
		if entry.Rank == 1 {
			d += c.winBonus
		}
		deltas = append(deltas, model.BountyDelta{Name: entry.Name, Delta: d})
	}
	return deltas
}
