package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrSessionNotFound = errors.New("race session not found")
	ErrSessionExpired  = errors.New("race session expired")
	ErrNoLastRace      = errors.New("no finalized race to edit")
	ErrNotInLastRace   = errors.New("player not part of the last race")
	ErrEmptyScreenshot = errors.New("screenshot produced no ranked entries")
)
