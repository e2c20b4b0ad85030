// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment variables.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// DataDir holds the persisted bounty board.
	DataDir string `koanf:"data_dir"`

	// BoardFile is the bounty board data file name inside DataDir.
	BoardFile string `koanf:"board_file"`

	// WinBonus is the flat bonus awarded to first place.
	WinBonus int `koanf:"win_bonus"`

	// PlacementFactor is the per-rank step of the placement term.
	PlacementFactor float64 `koanf:"placement_factor"`

	// MatchToleranceRatio is the length-proportional fuzzy-match tolerance.
	MatchToleranceRatio float64 `koanf:"match_tolerance_ratio"`

	// MatchMinEdits is the tolerance floor for short names.
	MatchMinEdits int `koanf:"match_min_edits"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SessionTTLMinutes closes race sessions that never finalize.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// OCRLanguage selects the tesseract language model.
	OCRLanguage string `koanf:"ocr_language"`

	// OCRUpscale is the preprocessing upscale factor for screenshots.
	OCRUpscale float64 `koanf:"ocr_upscale"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8090",
		DataDir:             "data",
		BoardFile:           "bounty_board.json",
		WinBonus:            200,
		PlacementFactor:     20,
		MatchToleranceRatio: 0.25,
		MatchMinEdits:       1,
		MaxLeaderboardLimit: 100,
		SessionTTLMinutes:   30,
		OCRLanguage:         "eng",
		OCRUpscale:          2,
	}
}
