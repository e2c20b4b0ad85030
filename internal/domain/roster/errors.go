package roster

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrEmptyName = errors.New("empty player name")
	ErrNotFound  = errors.New("player not registered")
)
