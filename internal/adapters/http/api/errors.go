package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadLimit      = errors.New("limit must be a positive integer within the configured maximum")
	ErrMissingPlayer = errors.New("missing player name")
)
