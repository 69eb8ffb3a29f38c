// Package gen generates Go source code for a pattern.
// The generated file declares the AST of the pattern and a function matching strings against it.
package gen

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/dave/jennifer/jen"

	"github.com/magnetde/starlark-barebones/ast"
	"github.com/magnetde/starlark-barebones/backtrack"
)

const (
	astPath       = "github.com/magnetde/starlark-barebones/ast"
	backtrackPath = "github.com/magnetde/starlark-barebones/backtrack"
)

// Config configures the code generation.
type Config struct {
	// Package is the package name of the generated file.
	Package string

	// Name is the name of the generated AST variable;
	// the match function is named <Name>MatchString.
	Name string

	// Node is the AST to generate.
	Node ast.Node
}

// Validate checks if the config is valid.
func (c Config) Validate() error {
	if c.Package == "" {
		return errors.New("package cannot be empty")
	}
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("package %q is not an identifier", c.Package)
	}
	if !token.IsIdentifier(c.Name) {
		return fmt.Errorf("name %q is not an identifier", c.Name)
	}
	if c.Node == nil {
		return errors.New("node cannot be nil")
	}
	return nil
}

// Generate creates the Go file for the config.
func Generate(cfg Config) (*jen.File, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	value, err := nodeValue(cfg.Node)
	if err != nil {
		return nil, err
	}

	f := jen.NewFile(cfg.Package)
	f.HeaderComment("Code generated by barebones. DO NOT EDIT.")

	f.Commentf("%s is the AST of %s.", cfg.Name, cfg.Node)
	f.Var().Id(cfg.Name).Qual(astPath, "Node").Op("=").Add(value)

	f.Commentf("%sMatchString reports whether s is fully matched by %s.", cfg.Name, cfg.Name)
	f.Commentf("%s only contains known node kinds, so backtrack.MatchString never returns an error.", cfg.Name)
	f.Func().Id(cfg.Name+"MatchString").
		Params(jen.Id("s").String()).
		Bool().
		Block(
			jen.List(jen.Id("ok"), jen.Id("_")).Op(":=").Qual(backtrackPath, "MatchString").Call(jen.Id(cfg.Name), jen.Id("s")),
			jen.Return(jen.Id("ok")),
		)

	return f, nil
}

// WriteFile generates the Go file for the config and writes it to path.
func WriteFile(cfg Config, path string) error {
	f, err := Generate(cfg)
	if err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// nodeValue returns the composite literal constructing the node.
func nodeValue(n ast.Node) (*jen.Statement, error) {
	switch n := n.(type) {
	case ast.Literal:
		return jen.Qual(astPath, "Literal").Values(jen.Dict{
			jen.Id("Char"): jen.LitRune(n.Char),
		}), nil
	case ast.CharacterClass:
		return jen.Qual(astPath, "CharacterClass").Values(jen.Dict{
			jen.Id("Chars"): jen.Lit(n.Chars),
		}), nil
	case ast.Concat:
		left, err := nodeValue(n.Left)
		if err != nil {
			return nil, err
		}

		right, err := nodeValue(n.Right)
		if err != nil {
			return nil, err
		}

		return jen.Qual(astPath, "Concat").Values(jen.Dict{
			jen.Id("Left"):  left,
			jen.Id("Right"): right,
		}), nil
	case ast.Repetition:
		child, err := nodeValue(n.Child)
		if err != nil {
			return nil, err
		}

		return jen.Qual(astPath, "Repetition").Values(jen.Dict{
			jen.Id("Child"): child,
		}), nil
	case ast.EOF:
		return jen.Qual(astPath, "EOF").Values(), nil
	default:
		return nil, &backtrack.UnknownNodeKindError{Kind: fmt.Sprintf("%T", n)}
	}
}
