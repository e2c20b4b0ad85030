// Package racegen generates synthetic race screenshots as noisy OCR text
// lines, for exercising a running service end to end.
package racegen

import (
	"fmt"
	"math/rand"
)

// Default generation constants.
const (
	defaultSeed        = 42
	defaultNoiseRate   = 0.2
	defaultViewport    = 12
	defaultOverlapRows = 3
)

// glyph confusions injected to imitate OCR misreads.
var noiseSwaps = map[rune]rune{
	'o': '0', 'O': '0',
	'l': '1', 'i': '1',
	's': '5', 'S': '5',
	'z': '2',
	'b': '8',
}

var nameParts = []string{
	"Marble", "Turbo", "Rolling", "Lucky", "Pixel", "Granite",
	"Comet", "Nitro", "Shadow", "Crystal", "Rapid", "Quartz",
}

// Generator produces deterministic noisy screenshot line sets.
type Generator struct {
	rng         *rand.Rand
	noiseRate   float64
	viewport    int
	overlapRows int
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed makes generation reproducible across runs.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithNoiseRate sets the fraction of lines receiving a glyph confusion.
func WithNoiseRate(rate float64) Option {
	return func(g *Generator) {
		if rate >= 0 && rate <= 1 {
			g.noiseRate = rate
		}
	}
}

// WithViewport sets how many rows fit in one screenshot.
func WithViewport(rows int) Option {
	return func(g *Generator) {
		if rows > 1 {
			g.viewport = rows
		}
	}
}

// NewGenerator creates a generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng:         rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic test data
		noiseRate:   defaultNoiseRate,
		viewport:    defaultViewport,
		overlapRows: defaultOverlapRows,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Players invents n distinct player names.
func (g *Generator) Players(n int) []string {
	names := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(names) < n {
		name := fmt.Sprintf("%s%s%d",
			nameParts[g.rng.Intn(len(nameParts))],
			nameParts[g.rng.Intn(len(nameParts))],
			g.rng.Intn(100))
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Screenshots renders a full ranking as overlapping screenshot line sets,
// the way a scrolling results table is captured.
func (g *Generator) Screenshots(players []string) [][]string {
	var shots [][]string
	step := g.viewport - g.overlapRows
	if step < 1 {
		step = 1
	}
	for start := 0; start == 0 || start < len(players); start += step {
		end := start + g.viewport
		if end > len(players) {
			end = len(players)
		}
		lines := []string{"Place  Player  Time"}
		for i := start; i < end; i++ {
			lines = append(lines, g.renderRow(i+1, players[i]))
		}
		shots = append(shots, lines)
		if end == len(players) {
			break
		}
	}
	return shots
}

// renderRow formats one results row, sometimes decorated or misread.
func (g *Generator) renderRow(rank int, name string) string {
	rankToken := fmt.Sprintf("%d.", rank)
	switch g.rng.Intn(4) {
	case 0:
		rankToken = fmt.Sprintf("#%d", rank)
	case 1:
		rankToken = fmt.Sprintf("(%d)", rank)
	}
	if g.rng.Float64() < g.noiseRate {
		name = g.corrupt(name)
	}
	return rankToken + " " + name
}

// corrupt swaps one confusable glyph in the name.
func (g *Generator) corrupt(name string) string {
	runes := []rune(name)
	candidates := make([]int, 0, len(runes))
	for i, r := range runes {
		if _, ok := noiseSwaps[r]; ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return name
	}
	i := candidates[g.rng.Intn(len(candidates))]
	runes[i] = noiseSwaps[runes[i]]
	return string(runes)
}

// Summary renders a short description of a generated race.
func Summary(players []string, shots [][]string) string {
	return fmt.Sprintf("%d players across %d screenshots (%s ... %s)",
		len(players), len(shots), players[0], players[len(players)-1])
}
