// Package ocrtext normalizes raw OCR lines and extracts (rank, name) pairs.
//
// Confusion substitutions are applied per token context: letter-to-digit
// corrections only where a rank is being read, digit-to-letter folding only
// where names are being compared. They are never applied context-free, so a
// correctly read token is never corrupted.
package ocrtext

import "strings"

// rankConfusions maps letter glyphs OCR commonly emits in place of digits.
// Applied only to rank tokens.
var rankConfusions = map[rune]rune{
	'O': '0', 'o': '0', 'Q': '0',
	'I': '1', 'l': '1', '|': '1', 'i': '1',
	'S': '5', 's': '5',
	'Z': '2', 'z': '2',
	'B': '8',
	'G': '6',
}

// rankDecorations are separators commonly emitted around rank numbers,
// e.g. "1.", "#1", "(1)".
const rankDecorations = ".:#()[]{}-–—*"

// TrimRankDecorations strips decorative separators from both ends of a
// rank token.
func TrimRankDecorations(s string) string {
	return strings.Trim(s, rankDecorations+" \t")
}

// NormalizeRankToken corrects letter-digit look-alikes in a token expected
// to carry a rank number. Best effort, never fails.
func NormalizeRankToken(s string) string {
	s = TrimRankDecorations(s)
	return strings.Map(func(r rune) rune {
		if d, ok := rankConfusions[r]; ok {
			return d
		}
		return r
	}, s)
}

// FoldName lowercases a name and collapses confusable glyph classes onto a
// single representative (1/l/i -> i, 0/o -> o, 5/s -> s, 2/z -> z, 8/b -> b,
// 6/g -> g). Two names that differ only by OCR confusions fold to the same
// string; fold both sides before computing edit distance.
func FoldName(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '1', 'l':
			return 'i'
		case '0':
			return 'o'
		case '5':
			return 's'
		case '2':
			return 'z'
		case '8':
			return 'b'
		case '6':
			return 'g'
		default:
			return r
		}
	}, s)
}

// CleanName removes glyphs that cannot appear in a player name and
// collapses runs of whitespace.
func CleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-' || r == ' ':
			return r
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// maxDigitRun returns the longest consecutive digit run in s and the
// remainder of s after that run. An empty run means s has no digits.
func maxDigitRun(s string) (run, rest string) {
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if curStart < 0 {
				curStart = i
			}
			curLen++
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
		} else {
			curStart, curLen = -1, 0
		}
	}
	if bestStart < 0 {
		return "", s
	}
	return s[bestStart : bestStart+bestLen], s[bestStart+bestLen:]
}
