// Package model contains domain models passed between layers.
package model

// RawLine is one line of OCR output from a screenshot, in top-to-bottom
// reading order. Position is the line index within the screenshot.
type RawLine struct {
	Text       string
	Screenshot int
	Position   int
}

// ParsedEntry is a (rank, name) pair extracted from a single RawLine.
type ParsedEntry struct {
	Rank       int
	RawName    string
	Screenshot int
	Position   int
}

// ResolvedEntry binds a parsed entry to a canonical player identity.
// Confidence is 1 - editDistance/len(rawName), clipped to [0,1].
type ResolvedEntry struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Screenshot int     `json:"screenshot"`
	Confidence float64 `json:"confidence"`
}

// ScreenshotRanking is the resolved, rank-ascending entry list for one
// screenshot. Ranks need not start at 1 nor be contiguous with other
// screenshots of the same race.
type ScreenshotRanking struct {
	Screenshot int
	Entries    []ResolvedEntry
}

// MinRank returns the smallest embedded rank, or 0 for an empty ranking.
func (s ScreenshotRanking) MinRank() int {
	if len(s.Entries) == 0 {
		return 0
	}
	min := s.Entries[0].Rank
	for _, e := range s.Entries[1:] {
		if e.Rank < min {
			min = e.Rank
		}
	}
	return min
}

// RaceRanking is the contiguous 1..N ranking of one finished race.
// LowConfidence marks rankings produced through a zero-overlap
// concatenation fallback.
type RaceRanking struct {
	Entries       []ResolvedEntry `json:"entries"`
	LowConfidence bool            `json:"low_confidence"`
}

// Size returns the number of ranked players.
func (r RaceRanking) Size() int { return len(r.Entries) }

// BountyDelta is the signed score change one identity earned in one race.
type BountyDelta struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}
