package roster

// Default fuzzy-match tolerance parameters.
const (
	defaultToleranceRatio = 0.25
	defaultMinEdits       = 1
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithToleranceRatio sets the length-proportional edit tolerance: a raw
// name of length L accepts candidates within max(minEdits, floor(L*ratio)).
func WithToleranceRatio(ratio float64) Option {
	return func(r *Registry) {
		if ratio > 0 {
			r.toleranceRatio = ratio
		}
	}
}

// WithMinEdits sets the tolerance floor, so short names still admit at
// least this many edits.
func WithMinEdits(n int) Option {
	return func(r *Registry) {
		if n >= 0 {
			r.minEdits = n
		}
	}
}

// WithKnownPlayers seeds the registry with already-known identities and
// their prior race counts.
func WithKnownPlayers(races map[string]int) Option {
	return func(r *Registry) {
		for name, count := range races {
			if name == "" {
				continue
			}
			r.players[name] = &record{name: name, races: count}
		}
	}
}
