package oracle

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/magnetde/starlark-barebones/ast"
	"github.com/magnetde/starlark-barebones/backtrack"
	"github.com/magnetde/starlark-barebones/util"
)

// Divergence describes an input, on which the matchers and the reference disagree.
type Divergence struct {
	Node       ast.Node
	Input      string
	Local      bool // result of Node.Matches
	Positional bool // result of backtrack.MatchString
	Reference  bool // result of the regexp2 translation
}

func (d *Divergence) Error() string {
	return fmt.Sprintf("%s on %s: local=%t positional=%t reference=%t",
		d.Node, util.Repr(d.Input), d.Local, d.Positional, d.Reference)
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger, that receives a warning for every divergence.
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) { c.log = l }
}

// WithTimeout sets the match timeout of the reference engine.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.timeout = d }
}

// Checker runs both matchers and the reference on a set of inputs.
type Checker struct {
	log     *zap.Logger
	timeout time.Duration
}

// NewChecker creates a checker; by default nothing is logged.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Check matches every input with the local matcher, the positional matcher and the reference.
// All disagreements are returned as *Divergence errors, combined into a *multierror.Error.
// Other errors abort the check and are returned unchanged.
func (c *Checker) Check(n ast.Node, inputs ...string) error {
	re, err := Compile(n)
	if err != nil {
		return err
	}
	re.MatchTimeout = c.timeout

	var result *multierror.Error

	for _, s := range inputs {
		local := n.Matches(s)

		positional, err := backtrack.MatchString(n, s)
		if err != nil {
			return err
		}

		reference, err := re.MatchString(s)
		if err != nil {
			return fmt.Errorf("oracle: %w", err)
		}

		if local == positional && positional == reference {
			continue
		}

		c.log.Warn("matchers disagree",
			zap.Stringer("ast", n),
			zap.String("input", s),
			zap.Bool("local", local),
			zap.Bool("positional", positional),
			zap.Bool("reference", reference),
		)

		result = multierror.Append(result, &Divergence{
			Node:       n,
			Input:      s,
			Local:      local,
			Positional: positional,
			Reference:  reference,
		})
	}

	return result.ErrorOrNil()
}

// Divergences extracts the divergences from an error returned by Check.
func Divergences(err error) []*Divergence {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return nil
	}

	var out []*Divergence
	for _, e := range merr.Errors {
		var d *Divergence
		if errors.As(e, &d) {
			out = append(out, d)
		}
	}

	return out
}
