// Package roster resolves raw OCR player names to canonical identities.
//
// The registry is open-world: a name that no known identity matches within
// tolerance is provisionally registered rather than rejected, favoring a
// genuine new player over dropped noise. All mutation is serialized by a
// single mutex.
package roster

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/streamrace/bountyboard/internal/domain/ocrtext"
)

// record tracks one canonical identity and how established it is.
type record struct {
	name  string
	races int
}

// Registry maps raw parsed names to canonical player identities.
type Registry struct {
	mu             sync.Mutex
	players        map[string]*record // canonical name -> record
	toleranceRatio float64
	minEdits       int
}

// NewRegistry creates a registry with configuration options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		players:        make(map[string]*record),
		toleranceRatio: defaultToleranceRatio,
		minEdits:       defaultMinEdits,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolution reports how a raw name was resolved.
type Resolution struct {
	Name        string  // canonical identity
	Confidence  float64 // 1 - distance/len(raw), clipped to [0,1]
	Provisional bool    // true when the raw name was newly registered
}

// Resolve maps a raw parsed name to a canonical identity.
//
// Both sides are confusion-folded before computing edit distance. The
// minimum-distance candidate wins when distance <= max(minEdits,
// floor(len*ratio)); ties prefer the identity with the most prior races,
// then lexical order. On a miss the raw name becomes a new identity.
func (r *Registry) Resolve(ctx context.Context, rawName string) (Resolution, error) {
	if rawName == "" {
		return Resolution{}, fmt.Errorf("resolve: %w", ErrEmptyName)
	}
	_ = ctx // resolution is in-memory; ctx kept for interface symmetry

	folded := ocrtext.FoldName(rawName)
	tolerance := int(math.Floor(float64(len([]rune(rawName))) * r.toleranceRatio))
	if tolerance < r.minEdits {
		tolerance = r.minEdits
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var best *record
	bestDist := tolerance + 1
	for _, rec := range r.players {
		d := editDistance(folded, ocrtext.FoldName(rec.name))
		if d > tolerance {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist = rec, d
		case d == bestDist && best != nil:
			if rec.races > best.races || (rec.races == best.races && rec.name < best.name) {
				best = rec
			}
		}
	}

	if best != nil {
		return Resolution{Name: best.name, Confidence: confidence(bestDist, rawName)}, nil
	}

	r.players[rawName] = &record{name: rawName}
	return Resolution{Name: rawName, Confidence: confidence(0, rawName), Provisional: true}, nil
}

// NoteRace bumps the race count of every named identity. Called after a
// race is applied to the ledger, so tie-breaking favors established players.
func (r *Registry) NoteRace(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if rec, ok := r.players[name]; ok {
			rec.races++
		}
	}
}

// Races returns the recorded race count for a canonical identity.
func (r *Registry) Races(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.players[name]
	if !ok {
		return 0, fmt.Errorf("races %q: %w", name, ErrNotFound)
	}
	return rec.races, nil
}

// Size returns the number of registered identities.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func confidence(distance int, rawName string) float64 {
	l := len([]rune(rawName))
	if l < 1 {
		l = 1
	}
	c := 1 - float64(distance)/float64(l)
	return math.Max(0, math.Min(1, c))
}
