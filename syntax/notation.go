package syntax

import (
	"fmt"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/magnetde/starlark-barebones/ast"
	"github.com/magnetde/starlark-barebones/util"
)

// notationLexer tokenizes the constructor notation produced by `ast.Node.String`.
var notationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "String", Pattern: `'(\\.|[^'\\])*'|"(\\.|[^"\\])*"`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// notationNode is the grammar of a single node; exactly one field is set after parsing.
type notationNode struct {
	Literal    *string       `parser:"  'Literal':Ident '(' @String ')'"`
	Class      *string       `parser:"| 'CharacterClass':Ident '(' @String ')'"`
	Concat     *notationPair `parser:"| 'Concat':Ident '(' @@ ')'"`
	Repetition *notationNode `parser:"| 'Repetition':Ident '(' @@ ')'"`
	EOF        bool          `parser:"| @'EOF':Ident '(' ')'"`
}

type notationPair struct {
	Left  *notationNode `parser:"@@ ','"`
	Right *notationNode `parser:"@@"`
}

var notationParser = participle.MustBuild[notationNode](
	participle.Lexer(notationLexer),
	participle.Elide("Whitespace"),
	participle.Map(unquoteToken, "String"),
)

func unquoteToken(t lexer.Token) (lexer.Token, error) {
	s, err := util.Unquote(t.Value)
	if err != nil {
		return t, participle.Errorf(t.Pos, "invalid string %s: %v", t.Value, err)
	}

	t.Value = s
	return t, nil
}

// ParseNotation parses the constructor notation of a node, as returned by its String method,
// e.g. "Concat(Repetition(Literal('a')), Literal('b'))".
func ParseNotation(text string) (ast.Node, error) {
	n, err := notationParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("syntax: %w", err)
	}

	return n.toNode()
}

func (n *notationNode) toNode() (ast.Node, error) {
	switch {
	case n.Literal != nil:
		s := *n.Literal
		if utf8.RuneCountInString(s) != 1 {
			return nil, fmt.Errorf("syntax: literal must be a single character, got %s", util.Repr(s))
		}

		c, size := utf8.DecodeRuneInString(s)
		if c == utf8.RuneError && size == 1 {
			return nil, fmt.Errorf("syntax: literal must be valid UTF-8, got %s", util.Repr(s))
		}

		return ast.Literal{Char: c}, nil
	case n.Class != nil:
		return ast.CharacterClass{Chars: *n.Class}, nil
	case n.Concat != nil:
		left, err := n.Concat.Left.toNode()
		if err != nil {
			return nil, err
		}

		right, err := n.Concat.Right.toNode()
		if err != nil {
			return nil, err
		}

		return ast.Concat{Left: left, Right: right}, nil
	case n.Repetition != nil:
		child, err := n.Repetition.toNode()
		if err != nil {
			return nil, err
		}

		return ast.Repetition{Child: child}, nil
	case n.EOF:
		return ast.EOF{}, nil
	default:
		return nil, fmt.Errorf("syntax: empty node")
	}
}
