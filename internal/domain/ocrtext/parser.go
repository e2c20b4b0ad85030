package ocrtext

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// Parsing limits.
const (
	maxRank          = 999
	rankTokenWindow  = 3 // tokens scanned for the rank digit run
	minLineLength    = 3
	maxRankJunkRunes = 2 // over-read glyphs tolerated ahead of the digits
)

// headerKeywords mark result-table header lines and remnants.
var headerKeywords = []string{
	"place", "player", "time", "points", "damage",
	"wins", "races", "elimination", "name",
}

// medalMarkers are placement indicators OCR reads off medal icons. They sit
// ahead of the rank number and must not be mistaken for it.
var medalMarkers = map[string]bool{
	"1ST": true, "2ND": true, "3RD": true, "IST": true, "DNF": true,
}

var ordinalSuffixes = []string{"st", "nd", "rd", "th"}

// Unparsed reports a line that yielded no (rank, name) pair, kept for
// manual review at the boundary.
type Unparsed struct {
	Line   model.RawLine
	Reason error
}

// IsHeaderLine reports whether a line is a results-table header or header
// remnant. Matching folds confusions on both sides, so "P1ace" and "Tlme"
// are recognized.
func IsHeaderLine(s string) bool {
	folded := FoldName(s)
	for _, kw := range headerKeywords {
		if strings.Contains(folded, FoldName(kw)) {
			return true
		}
	}
	return false
}

// rankFromToken extracts a rank from one token. A token may fuse the rank
// with the start of the name ("1.Alice"); in that case the residue after
// the first inner decoration is returned as the name head. Confusion
// correction applies to the rank part only.
func rankFromToken(token string) (rank int, nameHead string, ok bool) {
	t := TrimRankDecorations(token)
	if t == "" {
		return 0, "", false
	}
	rankPart := t
	if idx := strings.IndexAny(t, rankDecorations); idx >= 0 {
		rankPart, nameHead = t[:idx], TrimRankDecorations(t[idx:])
	}
	lower := strings.ToLower(rankPart)
	for _, suf := range ordinalSuffixes {
		if strings.HasSuffix(lower, suf) && len(rankPart) > len(suf) {
			rankPart = rankPart[:len(rankPart)-len(suf)]
			break
		}
	}
	normalized := NormalizeRankToken(rankPart)
	run, rest := maxDigitRun(normalized)
	if run == "" || rest != "" {
		return 0, "", false
	}
	junk := normalized[:len(normalized)-len(run)]
	if utf8.RuneCountInString(junk) > maxRankJunkRunes {
		return 0, "", false
	}
	n, err := strconv.Atoi(run)
	if err != nil || n < 1 || n > maxRank {
		return 0, "", false
	}
	return n, nameHead, true
}

// ParseLine extracts a (rank, name) pair from one raw OCR line.
//
// The rank is the first maximal digit run found within the first few tokens
// after rank-context confusion correction; this tolerates medal icons and
// decorations over-read as extra characters. Failure is signaled with
// ErrNoRank, ErrEmptyName or ErrHeader, never a panic.
func ParseLine(line model.RawLine) (model.ParsedEntry, error) {
	text := strings.TrimSpace(line.Text)
	if len(text) < minLineLength {
		return model.ParsedEntry{}, fmt.Errorf("line %d: %w", line.Position, ErrNoRank)
	}

	hasDigit := strings.ContainsFunc(text, func(r rune) bool { return r >= '0' && r <= '9' })
	if IsHeaderLine(text) && !hasDigit {
		return model.ParsedEntry{}, fmt.Errorf("line %d: %w", line.Position, ErrHeader)
	}

	tokens := strings.Fields(text)
	window := rankTokenWindow
	if len(tokens) < window {
		window = len(tokens)
	}
	// First pass skips medal artifacts ("1ST" next to the real rank digits);
	// the retry pass admits them so a bare "1st Alice" still parses.
	for _, skipMedals := range []bool{true, false} {
		for i := 0; i < window; i++ {
			if skipMedals && medalMarkers[strings.ToUpper(TrimRankDecorations(tokens[i]))] {
				continue
			}
			rank, nameHead, ok := rankFromToken(tokens[i])
			if !ok {
				continue
			}
			parts := append([]string{nameHead}, tokens[i+1:]...)
			name := CleanName(strings.Join(parts, " "))
			if name == "" {
				return model.ParsedEntry{}, fmt.Errorf("line %d: %w", line.Position, ErrEmptyName)
			}
			return model.ParsedEntry{
				Rank:       rank,
				RawName:    name,
				Screenshot: line.Screenshot,
				Position:   line.Position,
			}, nil
		}
	}
	return model.ParsedEntry{}, fmt.Errorf("line %d: %w", line.Position, ErrNoRank)
}

// ParseLines parses every line of one screenshot, collecting unparseable
// lines instead of dropping them.
func ParseLines(lines []model.RawLine) ([]model.ParsedEntry, []Unparsed) {
	entries := make([]model.ParsedEntry, 0, len(lines))
	var skipped []Unparsed
	for _, ln := range lines {
		entry, err := ParseLine(ln)
		if err != nil {
			skipped = append(skipped, Unparsed{Line: ln, Reason: err})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}
