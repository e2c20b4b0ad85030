package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BOUNTY_CONFIG is set
//  3. env (prefix BOUNTY_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BOUNTY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: BOUNTY_ADDR, BOUNTY_WIN_BONUS, ...
	// Keys map like BOUNTY_WIN_BONUS -> win_bonus, preserving underscores
	// to match koanf tags on the struct.
	envProvider := env.Provider("BOUNTY_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "bounty_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return ErrEmptyAddr
	case c.DataDir == "":
		return ErrEmptyDataDir
	case c.PlacementFactor <= 0:
		return ErrBadPlacementFactor
	case c.MatchToleranceRatio <= 0 || c.MatchToleranceRatio >= 1:
		return ErrBadTolerance
	}
	return nil
}
