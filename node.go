package barebones

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/magnetde/starlark-barebones/ast"
)

// Node is the Starlark value of an AST node.
type Node struct {
	node ast.Node
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value      = (*Node)(nil)
	_ starlark.HasAttrs   = (*Node)(nil)
	_ starlark.Comparable = (*Node)(nil)
)

func newNode(n ast.Node) *Node {
	return &Node{node: n}
}

// Unwrap returns the wrapped AST node.
func (n *Node) Unwrap() ast.Node {
	return n.node
}

func (n *Node) Freeze() {} // immutable

func (n *Node) Hash() (uint32, error) {
	return starlark.String(n.String()).Hash()
}

func (n *Node) String() string       { return n.node.String() }
func (n *Node) Truth() starlark.Bool { return true }

func (n *Node) Type() string {
	switch n.node.(type) {
	case ast.Literal:
		return "Literal"
	case ast.CharacterClass:
		return "CharacterClass"
	case ast.Concat:
		return "Concat"
	case ast.Repetition:
		return "Repetition"
	case ast.EOF:
		return "EOF"
	default:
		return "Node"
	}
}

func (n *Node) Attr(name string) (starlark.Value, error) {
	if name == "matches" {
		return starlark.NewBuiltin("matches", nodeMatches).BindReceiver(n), nil
	}

	switch v := n.node.(type) {
	case ast.Literal:
		if name == "char" {
			return starlark.String(string(v.Char)), nil
		}
	case ast.CharacterClass:
		if name == "chars" {
			return starlark.String(v.Chars), nil
		}
	case ast.Concat:
		switch name {
		case "left":
			return wrap(v.Left), nil
		case "right":
			return wrap(v.Right), nil
		}
	case ast.Repetition:
		if name == "child" {
			return wrap(v.Child), nil
		}
	}

	return nil, nil
}

func (n *Node) AttrNames() []string {
	names := []string{"matches"}

	switch n.node.(type) {
	case ast.Literal:
		names = append(names, "char")
	case ast.CharacterClass:
		names = append(names, "chars")
	case ast.Concat:
		names = append(names, "left", "right")
	case ast.Repetition:
		names = append(names, "child")
	}

	sort.Strings(names)
	return names
}

// CompareSameType compares two nodes structurally. Only equality is supported.
func (n *Node) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Node)

	switch op {
	case syntax.EQL:
		return n.node == o.node, nil
	case syntax.NEQ:
		return n.node != o.node, nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", n.Type(), op, o.Type())
	}
}

// A missing child is returned as None.
func wrap(n ast.Node) starlark.Value {
	if n == nil {
		return starlark.None
	}

	return newNode(n)
}

// nodeMatches calls the node-local matcher of the receiver.
// Repetition and EOF nodes accept an optional start position.
func nodeMatches(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	n := b.Receiver().(*Node)

	var str string

	if p, ok := n.node.(ast.Positional); ok {
		var pos int
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "position?", &pos); err != nil {
			return nil, err
		}

		return starlark.Bool(p.MatchesAt(str, pos)), nil
	}

	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str); err != nil {
		return nil, err
	}

	return starlark.Bool(n.node.Matches(str)), nil
}
