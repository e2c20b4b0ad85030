package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/streamrace/bountyboard/internal/racegen"
)

// Default configuration constants.
const (
	defaultPlayers    = 16
	defaultViewport   = 12
	defaultSeed       = 42
	defaultNoiseRate  = 0.2
	defaultTopN       = 20
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8090", "Base URL of the service")
		players   = flag.Int("players", defaultPlayers, "Number of players in the simulated race")
		viewport  = flag.Int("viewport", defaultViewport, "Rows visible per screenshot")
		seed      = flag.Int64("seed", defaultSeed, "Random seed for reproducible races")
		noiseRate = flag.Float64("noise", defaultNoiseRate, "Fraction of lines receiving OCR-style glyph noise")
		topN      = flag.Int("top", defaultTopN, "Number of leaderboard rows to fetch afterwards")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		submitter = flag.String("submitter", "race-sim", "Submitter name for the race session")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &racegen.Config{
		BaseURL:   *baseURL,
		Players:   *players,
		Viewport:  *viewport,
		Seed:      *seed,
		NoiseRate: *noiseRate,
		TopN:      *topN,
		Timeout:   *timeout,
		Submitter: *submitter,
		Verbose:   *verbose,
	}

	if err := racegen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
