package ocrtext

import "errors"

// Sentinel kinds for line parsing errors.
var (
	ErrNoRank    = errors.New("no rank digits found")
	ErrEmptyName = errors.New("empty name after rank")
	ErrHeader    = errors.New("leaderboard header line")
)
