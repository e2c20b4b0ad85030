package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr          = errors.New("addr must not be empty")
	ErrEmptyDataDir       = errors.New("data_dir must not be empty")
	ErrBadPlacementFactor = errors.New("placement_factor must be positive")
	ErrBadTolerance       = errors.New("match_tolerance_ratio must be in (0, 1)")
)
