package app

import (
	"time"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// session accumulates the screenshot rankings of one race submission.
// It belongs to a single submitter and never touches the ledger unless
// finalized.
type session struct {
	id        string
	submitter string
	createdAt time.Time
	rankings  []model.ScreenshotRanking
}

func (s *session) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.createdAt) > ttl
}

// SessionInfo is the caller-visible view of an open race session.
type SessionInfo struct {
	ID          string    `json:"id"`
	Submitter   string    `json:"submitter"`
	CreatedAt   time.Time `json:"created_at"`
	Screenshots int       `json:"screenshots"`
}

// UnparsedLine surfaces a line that yielded no (rank, name) pair.
type UnparsedLine struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
	Reason   string `json:"reason"`
}

// ScreenshotReport describes how one screenshot was parsed and resolved.
type ScreenshotReport struct {
	Screenshot    int                   `json:"screenshot"`
	Entries       []model.ResolvedEntry `json:"entries"`
	Unparsed      []UnparsedLine        `json:"unparsed,omitempty"`
	Provisional   []string              `json:"provisional,omitempty"`
	LowConfidence []string              `json:"low_confidence,omitempty"`
}

// RaceResult is the outcome of finalizing one race.
type RaceResult struct {
	RaceID   string              `json:"race_id"`
	Ranking  model.RaceRanking   `json:"ranking"`
	Deltas   []model.BountyDelta `json:"deltas"`
	Warnings []string            `json:"warnings,omitempty"`
}
