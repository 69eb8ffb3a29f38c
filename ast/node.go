// Package ast defines the nodes of a compiled pattern and the node-local matcher.
//
// Every node answers, through Matches, whether an entire string satisfies it.
// Repetition and EOF additionally implement Positional, which asks the same
// question for the suffix of a string starting at a byte offset.
// The set of node kinds is closed: Node can only be implemented inside this package.
package ast

import (
	"strings"

	"github.com/magnetde/starlark-barebones/util"
)

// Node is a node of the abstract syntax tree of a pattern.
// Nodes are immutable values; the tree is never changed after construction.
type Node interface {
	// Matches reports whether the whole string s satisfies the node.
	Matches(s string) bool

	// String returns the constructor notation of the node, e.g. "Concat(Literal('a'), EOF())".
	String() string

	node()
}

// Positional is implemented by the nodes, whose local matcher accepts a cursor.
type Positional interface {
	Node

	// MatchesAt reports whether the suffix of s starting at byte offset pos satisfies the node.
	// Offsets outside of [0, len(s)] never match.
	MatchesAt(s string, pos int) bool
}

// Literal matches exactly one character.
type Literal struct {
	Char rune
}

// CharacterClass matches exactly one character, which must be contained in Chars.
type CharacterClass struct {
	Chars string
}

// Concat matches, if the string can be split into a prefix matched by Left
// and a suffix matched by Right.
type Concat struct {
	Left  Node
	Right Node
}

// Repetition matches zero or more consecutive occurrences of Child.
type Repetition struct {
	Child Node
}

// EOF matches the end of the input.
type EOF struct{}

// Check, if the types satisfy the interfaces.
var (
	_ Node       = Literal{}
	_ Node       = CharacterClass{}
	_ Node       = Concat{}
	_ Positional = Repetition{}
	_ Positional = EOF{}
)

func (Literal) node()        {}
func (CharacterClass) node() {}
func (Concat) node()         {}
func (Repetition) node()     {}
func (EOF) node()            {}

func (l Literal) String() string {
	return "Literal(" + util.Repr(string(l.Char)) + ")"
}

func (c CharacterClass) String() string {
	return "CharacterClass(" + util.Repr(c.Chars) + ")"
}

func (c Concat) String() string {
	var b strings.Builder
	b.WriteString("Concat(")
	b.WriteString(nodeString(c.Left))
	b.WriteString(", ")
	b.WriteString(nodeString(c.Right))
	b.WriteByte(')')
	return b.String()
}

func (r Repetition) String() string {
	return "Repetition(" + nodeString(r.Child) + ")"
}

func (EOF) String() string { return "EOF()" }

// nodeString also handles missing children, which can only occur in hand-built trees.
func nodeString(n Node) string {
	if n == nil {
		return "None"
	}

	return n.String()
}
