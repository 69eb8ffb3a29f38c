package syntax

import (
	"errors"
	"unicode/utf8"

	"github.com/magnetde/starlark-barebones/ast"
)

// ErrEmptyPattern is returned by ParseRegex for an empty pattern.
var ErrEmptyPattern = errors.New("pattern cannot be empty")

// ErrInvalidPattern is returned by ParseRegex for a pattern, that is not valid UTF-8.
var ErrInvalidPattern = errors.New("pattern must be valid UTF-8")

// ParseRegex builds the AST of a pattern.
// Every character of the pattern becomes a literal, no operators are interpreted.
// The literals are folded into a left-associative chain of concatenations,
// so "abc" becomes Concat(Concat(Literal('a'), Literal('b')), Literal('c')).
func ParseRegex(pattern string) (ast.Node, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	if !utf8.ValidString(pattern) {
		return nil, ErrInvalidPattern
	}

	var root ast.Node
	for _, c := range pattern {
		l := ast.Literal{Char: c}
		if root == nil {
			root = l
		} else {
			root = ast.Concat{Left: root, Right: l}
		}
	}

	return root, nil
}
