package ledger

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrNotFound         = errors.New("player not found")
	ErrEmptyBatch       = errors.New("empty delta batch")
	ErrDuplicateInBatch = errors.New("duplicate identity in delta batch")
)
