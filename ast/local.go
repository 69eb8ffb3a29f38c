package ast

import (
	"strings"
	"unicode/utf8"
)

// single decodes s and reports, whether it consists of exactly one character.
// An invalid byte is not a character.
func single(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}

	c, size := utf8.DecodeRuneInString(s)
	if c == utf8.RuneError && size == 1 {
		return 0, false
	}

	return c, size == len(s)
}

func (l Literal) Matches(s string) bool {
	c, ok := single(s)
	return ok && c == l.Char
}

func (c CharacterClass) Matches(s string) bool {
	r, ok := single(s)
	return ok && ContainsChar(c.Chars, r)
}

// Matches tries every split point, including 0 and len(s), so each child
// may be asked to match the empty string.
func (c Concat) Matches(s string) bool {
	for split := range s {
		if c.Left.Matches(s[:split]) && c.Right.Matches(s[split:]) {
			return true
		}
	}

	return c.Left.Matches(s) && c.Right.Matches("")
}

func (r Repetition) Matches(s string) bool { return r.MatchesAt(s, 0) }

// MatchesAt matches zero occurrences at the end of the input, a single occurrence
// covering the whole suffix, or a greedy run of one-character occurrences.
// The length of the greedy run is never backtracked, so the run is only exact for
// children that consume a single character.
func (r Repetition) MatchesAt(s string, pos int) bool {
	if pos < 0 || pos > len(s) {
		return false
	}
	if pos == len(s) || matchesAt(r.Child, s, pos) {
		return true
	}

	i := pos
	for i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		if !r.Child.Matches(s[i : i+size]) {
			break
		}
		i += size
	}

	return i > pos && (i == len(s) || r.MatchesAt(s, i))
}

func (e EOF) Matches(s string) bool { return e.MatchesAt(s, 0) }

func (EOF) MatchesAt(s string, pos int) bool {
	return pos == len(s)
}

// matchesAt evaluates the positional form of n: MatchesAt for positional nodes,
// otherwise Matches on the suffix.
func matchesAt(n Node, s string, pos int) bool {
	if p, ok := n.(Positional); ok {
		return p.MatchesAt(s, pos)
	}

	return n.Matches(s[pos:])
}

// ContainsChar reports whether chars contains the character c.
// Unlike strings.ContainsRune, utf8.RuneError only matches an encoded U+FFFD,
// never an invalid byte.
func ContainsChar(chars string, c rune) bool {
	return strings.Contains(chars, string(c))
}
