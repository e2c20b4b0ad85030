// Package ledger defines the persistent bounty board interface and errors.
package ledger

import (
	"context"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// Entry represents one persisted bounty board row.
type Entry struct {
	Name            string `json:"name"`
	CumulativeScore int    `json:"cumulative_score"`
	RaceCount       int    `json:"race_count"`
}

// Store provides serialized read/write access to cumulative bounty totals.
type Store interface {
	// ApplyDeltas applies one race's delta batch atomically: every delta is
	// applied and race counts incremented, or none are.
	ApplyDeltas(ctx context.Context, deltas []model.BountyDelta) error

	// ReverseDelta undoes one identity's most recent contribution. The
	// prior delta value must be supplied so the reversal is exact.
	ReverseDelta(ctx context.Context, name string, priorDelta int) error

	// ReverseDeltas undoes one race's recorded batch atomically: every
	// delta is reversed and race counts decremented, or none are.
	ReverseDeltas(ctx context.Context, deltas []model.BountyDelta) error

	// Entries returns all rows ordered by cumulative score descending.
	Entries(ctx context.Context) ([]Entry, error)

	// Entry returns one row. ErrNotFound if the player is unknown.
	Entry(ctx context.Context, name string) (Entry, error)

	// RemovePlayer deletes a row entirely (administrative action).
	RemovePlayer(ctx context.Context, name string) error

	// Reset clears every row (administrative action).
	Reset(ctx context.Context) error

	// Count returns the number of players on the board.
	Count(ctx context.Context) int
}
