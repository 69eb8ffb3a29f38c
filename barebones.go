// Package barebones provides a Starlark module exposing a minimal regular expression engine.
//
// Patterns are compiled into trees of nodes (Literal, CharacterClass, Concat, Repetition, EOF),
// which are matched either by the node-local matcher (`node.matches(string)`) or by the
// positional backtracking matcher (`match(ast, string)`).
package barebones

import (
	"container/list"
	"fmt"
	"unicode/utf8"

	"go.starlark.net/starlark"
	"go.uber.org/zap"

	"github.com/magnetde/starlark-barebones/ast"
	"github.com/magnetde/starlark-barebones/backtrack"
	"github.com/magnetde/starlark-barebones/oracle"
	"github.com/magnetde/starlark-barebones/syntax"
)

// Default maximum cache size; 32 should be more than enough, because Starlark scripts stay relatively small.
const defaultCacheSize = 32

// Module is the Starlark value of the barebones module.
// It contains a LRU cache for patterns built by `parse_regex`.
// The cache is implemented with a map and a linked list; when the cache exceeds
// the maximum size, the least recently used element is purged.
// The cache is not thread safe.
type Module struct {
	members starlark.StringDict

	list      *list.List               // Least recent used patterns
	cache     map[string]*list.Element // Mapping of patterns to list elements
	cacheSize int

	log     *zap.Logger
	checker *oracle.Checker
}

// Is necessary, because each list element needs to store the key in the map.
type cacheValue struct {
	pattern string
	node    ast.Node
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the logger of the module. Cache activity is logged at debug level,
// divergences found by `crosscheck` at warn level.
func WithLogger(l *zap.Logger) Option {
	return func(m *Module) { m.log = l }
}

// WithCacheSize sets the maximum number of cached patterns.
// Sizes below 1 disable the cache.
func WithCacheSize(n int) Option {
	return func(m *Module) { m.cacheSize = n }
}

// NewModule creates a new barebones module.
func NewModule(opts ...Option) *Module {
	members := starlark.StringDict{
		"Literal":        starlark.NewBuiltin("Literal", bbLiteral),
		"CharacterClass": starlark.NewBuiltin("CharacterClass", bbCharacterClass),
		"Concat":         starlark.NewBuiltin("Concat", bbConcat),
		"Repetition":     starlark.NewBuiltin("Repetition", bbRepetition),
		"EOF":            starlark.NewBuiltin("EOF", bbEOF),

		"parse_regex": starlark.NewBuiltin("parse_regex", bbParseRegex),
		"parse_ast":   starlark.NewBuiltin("parse_ast", bbParseAST),
		"purge":       starlark.NewBuiltin("purge", bbPurge),

		"match":      starlark.NewBuiltin("match", bbMatch),
		"to_regexp":  starlark.NewBuiltin("to_regexp", bbToRegexp),
		"crosscheck": starlark.NewBuiltin("crosscheck", bbCrosscheck),
	}

	m := &Module{
		members:   members,
		list:      list.New(),
		cache:     make(map[string]*list.Element),
		cacheSize: defaultCacheSize,
		log:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.checker = oracle.NewChecker(oracle.WithLogger(m.log))

	return m
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

func (m *Module) Freeze()               { m.members.Freeze() }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }
func (m *Module) String() string        { return "<module barebones>" }
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Type() string          { return "module" }

func (m *Module) Attr(name string) (starlark.Value, error) {
	if v, ok := m.members[name]; ok {
		if b, ok := v.(*starlark.Builtin); ok {
			return b.BindReceiver(m), nil
		}

		return v, nil
	}

	return nil, nil
}

func (m *Module) AttrNames() []string { return m.members.Keys() }

// parse builds the AST of a pattern. If the pattern is already in the cache,
// the cached AST is returned. Else, the AST is built and then added to the cache.
func (m *Module) parse(pattern string) (ast.Node, error) {
	if e, ok := m.cache[pattern]; ok { // pattern found in the cache
		m.list.MoveToFront(e) // "refresh" the pattern in the linked list
		m.log.Debug("pattern cache hit", zap.String("pattern", pattern))
		return e.Value.(*cacheValue).node, nil
	}

	n, err := syntax.ParseRegex(pattern)
	if err != nil {
		return nil, err
	}

	if m.cacheSize < 1 {
		return n, nil
	}

	// purge elements, if the size exceeds the threshold
	for m.list.Len() >= m.cacheSize {
		last := m.list.Back() // determine the oldest element
		lastValue := last.Value.(*cacheValue)

		delete(m.cache, lastValue.pattern)
		m.list.Remove(last)

		m.log.Debug("pattern evicted from cache", zap.String("pattern", lastValue.pattern))
	}

	m.cache[pattern] = m.list.PushFront(&cacheValue{pattern: pattern, node: n})

	return n, nil
}

// purge clears the pattern cache.
func (m *Module) purge() {
	m.log.Debug("pattern cache purged", zap.Int("size", m.list.Len()))

	m.list.Init()
	clear(m.cache)
}

// bbLiteral creates a node matching exactly the character `char`.
func bbLiteral(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var char string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "char", &char); err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(char) != 1 {
		return nil, fmt.Errorf("%s: got string of length %d, want a single character", b.Name(), utf8.RuneCountInString(char))
	}

	c, size := utf8.DecodeRuneInString(char)
	if c == utf8.RuneError && size == 1 {
		return nil, fmt.Errorf("%s: got invalid UTF-8 %q", b.Name(), char)
	}

	return newNode(ast.Literal{Char: c}), nil
}

// bbCharacterClass creates a node matching one of the characters of `chars`.
func bbCharacterClass(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var chars string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "chars", &chars); err != nil {
		return nil, err
	}

	return newNode(ast.CharacterClass{Chars: chars}), nil
}

// bbConcat creates a node matching `left` followed by `right`.
func bbConcat(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var left, right *Node
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "left", &left, "right", &right); err != nil {
		return nil, err
	}

	return newNode(ast.Concat{Left: left.node, Right: right.node}), nil
}

// bbRepetition creates a node matching zero or more occurrences of `child`.
func bbRepetition(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var child *Node
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "child", &child); err != nil {
		return nil, err
	}

	return newNode(ast.Repetition{Child: child.node}), nil
}

// bbEOF creates a node matching the end of the input.
func bbEOF(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	return newNode(ast.EOF{}), nil
}

// bbParseRegex builds the AST of a pattern, in which every character is a literal.
// The ASTs are cached by the module.
func bbParseRegex(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern); err != nil {
		return nil, err
	}

	n, err := b.Receiver().(*Module).parse(pattern)
	if err != nil {
		return nil, err
	}

	return newNode(n), nil
}

// bbParseAST parses the constructor notation of a node, as returned by `str(node)`.
func bbParseAST(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}

	n, err := syntax.ParseNotation(text)
	if err != nil {
		return nil, err
	}

	return newNode(n), nil
}

// bbPurge clears the pattern cache.
func bbPurge(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	b.Receiver().(*Module).purge()

	return starlark.None, nil
}

// bbMatch reports whether `ast` matches `string` from `position` to the end,
// using the positional backtracking matcher.
func bbMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		n   *Node
		str string
		pos int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ast", &n, "string", &str, "position?", &pos); err != nil {
		return nil, err
	}

	ok, err := backtrack.Match(n.node, str, pos)
	if err != nil {
		return nil, err
	}

	return starlark.Bool(ok), nil
}

// bbToRegexp returns the regular expression, that the reference engine uses for `ast`.
func bbToRegexp(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n *Node
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ast", &n); err != nil {
		return nil, err
	}

	p, err := oracle.Translate(n.node)
	if err != nil {
		return nil, err
	}

	return starlark.String(p), nil
}

// bbCrosscheck matches all `inputs` with both matchers and the reference engine.
// It returns a list of tuples `(input, local, positional, reference)` for every input,
// on which the results disagree.
func bbCrosscheck(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		n      *Node
		inputs starlark.Iterable
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ast", &n, "inputs", &inputs); err != nil {
		return nil, err
	}

	var strs []string

	iter := inputs.Iterate()
	defer iter.Done()

	var x starlark.Value
	for iter.Next(&x) {
		s, ok := starlark.AsString(x)
		if !ok {
			return nil, fmt.Errorf("%s: got %s in inputs, want string", b.Name(), x.Type())
		}

		strs = append(strs, s)
	}

	err := b.Receiver().(*Module).checker.Check(n.node, strs...)
	divs := oracle.Divergences(err)
	if err != nil && divs == nil {
		return nil, err
	}

	l := make([]starlark.Value, 0, len(divs))
	for _, d := range divs {
		l = append(l, starlark.Tuple{
			starlark.String(d.Input),
			starlark.Bool(d.Local),
			starlark.Bool(d.Positional),
			starlark.Bool(d.Reference),
		})
	}

	return starlark.NewList(l), nil
}
