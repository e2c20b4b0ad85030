// Package merge fuses per-screenshot partial rankings of one race into a
// single contiguous ranking.
package merge

import (
	"context"
	"sort"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// Merge combines N >= 1 screenshot rankings, taken of the same race from
// overlapping viewports, into one ranking numbered 1..N.
//
// Screenshots are taken in submission order unless their embedded rank
// ranges strictly order them otherwise. Each adjacent pair is spliced at
// the longest run where the earlier ranking's suffix matches the later
// ranking's prefix identity-for-identity. Pairs with no overlap are
// concatenated and the result is flagged low-confidence instead of failing,
// since OCR may simply have missed every shared name. A duplicate identity
// across distinct final ranks is a hard conflict.
func Merge(ctx context.Context, rankings []model.ScreenshotRanking) (model.RaceRanking, error) {
	if len(rankings) == 0 {
		return model.RaceRanking{}, ErrNoScreenshots
	}
	_ = ctx // merging is pure and in-memory

	ordered := orderRankings(rankings)

	merged := append([]model.ResolvedEntry(nil), ordered[0].Entries...)
	lowConfidence := false
	for _, next := range ordered[1:] {
		run := overlapRun(merged, next.Entries)
		if run == 0 && len(merged) > 0 && len(next.Entries) > 0 {
			lowConfidence = true
		}
		merged = append(merged, next.Entries[run:]...)
	}

	if dups := duplicateNames(merged); len(dups) > 0 {
		return model.RaceRanking{}, &ConflictError{Names: dups}
	}

	for i := range merged {
		merged[i].Rank = i + 1
	}
	return model.RaceRanking{Entries: merged, LowConfidence: lowConfidence}, nil
}

// orderRankings keeps submission order unless some screenshot's rank range
// strictly precedes an earlier one's; embedded ranks then win.
func orderRankings(rankings []model.ScreenshotRanking) []model.ScreenshotRanking {
	ordered := append([]model.ScreenshotRanking(nil), rankings...)
	needsSort := false
	for i := 1; i < len(ordered); i++ {
		if ordered[i].MinRank() < ordered[i-1].MinRank() {
			needsSort = true
			break
		}
	}
	if needsSort {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].MinRank() < ordered[j].MinRank()
		})
	}
	return ordered
}

// overlapRun returns the length of the longest suffix of earlier whose
// identities match, one-for-one in order, a prefix of later.
func overlapRun(earlier, later []model.ResolvedEntry) int {
	limit := min(len(earlier), len(later))
	for run := limit; run >= 1; run-- {
		match := true
		for k := 0; k < run; k++ {
			if earlier[len(earlier)-run+k].Name != later[k].Name {
				match = false
				break
			}
		}
		if match {
			return run
		}
	}
	return 0
}

// duplicateNames returns, in first-appearance order, every identity that
// occurs more than once.
func duplicateNames(entries []model.ResolvedEntry) []string {
	seen := make(map[string]int, len(entries))
	var dups []string
	for _, e := range entries {
		seen[e.Name]++
		if seen[e.Name] == 2 {
			dups = append(dups, e.Name)
		}
	}
	return dups
}
