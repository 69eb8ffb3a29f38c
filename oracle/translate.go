// Package oracle compares the matchers of this module against a reference engine.
//
// An AST is translated into a pattern for github.com/dlclark/regexp2, whose backtracking
// engine decides full matches of the translation. The positional matcher agrees with the
// reference on every tree; the local matcher only agrees as long as repeated nodes consume
// a single character.
package oracle

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/magnetde/starlark-barebones/ast"
	"github.com/magnetde/starlark-barebones/backtrack"
)

// DefaultTimeout is the match timeout of compiled reference patterns.
const DefaultTimeout = time.Second

// classSpecial contains 16 * 8 = 128 bits, where each bit represents one byte value.
// If the i-th bit is 1, the i-th byte must be escaped inside a character class.
// This array represents the following bytes: "-[\\]^".
var classSpecial = [16]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x20, 0x20, 0x24, 0x20, 0x00,
}

// special reports whether byte b needs to be escaped inside a character class.
func special(b byte) bool {
	return b < utf8.RuneSelf && classSpecial[b%16]&(1<<(b/16)) != 0
}

// Translate returns a regexp2 pattern accepting the same strings as the node.
// EOF translates to the empty pattern, since it only matches at the end of the string
// it is given.
func Translate(n ast.Node) (string, error) {
	var b strings.Builder
	if err := translate(&b, n); err != nil {
		return "", err
	}

	return b.String(), nil
}

func translate(b *strings.Builder, n ast.Node) error {
	switch n := n.(type) {
	case ast.Literal:
		b.WriteString(regexp2.Escape(string(n.Char)))
	case ast.CharacterClass:
		writeClass(b, n.Chars)
	case ast.Concat:
		b.WriteString("(?:")
		if err := translate(b, n.Left); err != nil {
			return err
		}
		b.WriteString(")(?:")
		if err := translate(b, n.Right); err != nil {
			return err
		}
		b.WriteByte(')')
	case ast.Repetition:
		b.WriteString("(?:")
		if err := translate(b, n.Child); err != nil {
			return err
		}
		b.WriteString(")*")
	case ast.EOF:
		b.WriteString("(?:)")
	default:
		return &backtrack.UnknownNodeKindError{Kind: fmt.Sprintf("%T", n)}
	}

	return nil
}

// writeClass writes a character class; an empty class never matches.
func writeClass(b *strings.Builder, chars string) {
	if chars == "" {
		b.WriteString(`[^\s\S]`)
		return
	}

	b.WriteByte('[')
	for _, c := range chars {
		if c < utf8.RuneSelf && special(byte(c)) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte(']')
}

// Compile compiles the anchored translation of the node.
func Compile(n ast.Node) (*regexp2.Regexp, error) {
	p, err := Translate(n)
	if err != nil {
		return nil, err
	}

	re, err := regexp2.Compile(`\A(?:`+p+`)\z`, regexp2.None|regexp2.RE2)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}

	re.MatchTimeout = DefaultTimeout
	return re, nil
}
