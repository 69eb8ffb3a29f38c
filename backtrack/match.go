// Package backtrack implements the positional matcher: a recursive walk over the AST
// with an explicit string and cursor, which backtracks over split points and repetition lengths.
//
// Every node is asked whether it matches the remainder of the string starting at the cursor
// completely. Children that must stop before the end of the input receive the input truncated
// at the candidate split.
package backtrack

import (
	"fmt"
	"unicode/utf8"

	"github.com/magnetde/starlark-barebones/ast"
)

// UnknownNodeKindError is returned, if the matcher encounters a node, that is not one
// of the node kinds of package ast. Since ast.Node is sealed, this only happens for nil
// nodes or types embedding a node.
type UnknownNodeKindError struct {
	Kind string // dynamic type of the node
}

func (e *UnknownNodeKindError) Error() string {
	return "unknown node type: " + e.Kind
}

// unknownKind creates the error for node n.
func unknownKind(n ast.Node) error {
	return &UnknownNodeKindError{Kind: fmt.Sprintf("%T", n)}
}

// MatchString reports whether n matches the whole string s.
func MatchString(n ast.Node, s string) (bool, error) {
	return Match(n, s, 0)
}

// Match reports whether n matches the suffix of s starting at byte offset pos.
// Offsets outside of [0, len(s)] never match.
func Match(n ast.Node, s string, pos int) (bool, error) {
	if pos < 0 || pos > len(s) {
		return false, nil
	}

	switch n := n.(type) {
	case ast.EOF:
		return pos == len(s), nil

	case ast.Literal:
		c, ok := last(s, pos)
		return ok && c == n.Char, nil

	case ast.CharacterClass:
		c, ok := last(s, pos)
		return ok && ast.ContainsChar(n.Chars, c), nil

	case ast.Concat:
		// Left is matched again from pos for every split.
		for split := pos; ; split = next(s, split) {
			ok, err := Match(n.Left, s[:split], pos)
			if err != nil {
				return false, err
			}
			if ok {
				ok, err = Match(n.Right, s, split)
				if ok || err != nil {
					return ok, err
				}
			}

			if split >= len(s) {
				return false, nil
			}
		}

	case ast.Repetition:
		// zero occurrences
		if pos == len(s) {
			return true, nil
		}

		// Try the longest occurrence of the child first. Each occurrence consumes at least
		// one character, so the recursion terminates even for children matching the empty string.
		for end := len(s); end > pos; end = prev(s, end) {
			ok, err := Match(n.Child, s[:end], pos)
			if err != nil {
				return false, err
			}
			if ok {
				ok, err = Match(n, s, end)
				if ok || err != nil {
					return ok, err
				}
			}
		}

		return false, nil

	default:
		return false, unknownKind(n)
	}
}

// last decodes the character at pos and reports, whether it is the last character of s.
func last(s string, pos int) (rune, bool) {
	if pos >= len(s) {
		return 0, false
	}

	c, size := utf8.DecodeRuneInString(s[pos:])
	if c == utf8.RuneError && size == 1 {
		return 0, false
	}

	return c, pos+size == len(s)
}

// next returns the offset of the character following the one at i.
func next(s string, i int) int {
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}

// prev returns the offset of the character preceding offset i.
func prev(s string, i int) int {
	_, size := utf8.DecodeLastRuneInString(s[:i])
	return i - size
}
