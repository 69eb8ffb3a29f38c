package barebones

import (
	_ "embed"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/magnetde/starlark-barebones/ast"
)

//go:embed barebones_test.star
var barebonesScript string

func TestBarebones(t *testing.T) {
	asserts := map[string]func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error){
		"same":     sameFunc,
		"trycatch": tryCatchFunc,
	}

	predeclared := starlark.StringDict{
		"bb": NewModule(),
	}

	for name, fn := range asserts {
		predeclared[name] = starlark.NewBuiltin(name, fn)
	}

	opts := syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}

	_, prog, err := starlark.SourceProgramOptions(&opts, "barebones_test.star", barebonesScript, predeclared.Has)
	if err != nil {
		t.Fatal(err)
	}

	thread := &starlark.Thread{
		Name: "test barebones",
		Print: func(thread *starlark.Thread, msg string) {
			fmt.Println(msg)
		},
	}

	_, err = prog.Init(thread, predeclared)
	if err != nil {
		if e, ok := err.(*starlark.EvalError); ok {
			t.Fatal(e.Backtrace())
		}

		t.Fatal(err)
	}
}

func sameFunc(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x, y starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &x, &y); err != nil {
		return nil, err
	}

	return starlark.Bool(x == y), nil
}

func tryCatchFunc(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%s: got %d arguments, want at least 1", b.Name(), len(args))
	}

	fn, ok := args[0].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("got %s, want callable", args[0].Type())
	}

	res, err := fn.CallInternal(thread, args[1:], kwargs)
	if err != nil {
		return starlark.Tuple{starlark.None, starlark.String(err.Error())}, nil
	}

	return starlark.Tuple{res, starlark.None}, nil
}

func TestCache(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewModule(WithLogger(zap.New(core)), WithCacheSize(2))

	for _, p := range []string{"a", "b", "a", "c"} {
		_, err := m.parse(p)
		require.NoError(t, err)
	}

	// "b" is the least recently used pattern
	assert.Equal(t, 2, m.list.Len())
	assert.Contains(t, m.cache, "a")
	assert.Contains(t, m.cache, "c")
	assert.NotContains(t, m.cache, "b")

	assert.Equal(t, 1, logs.FilterMessage("pattern cache hit").Len())

	evicted := logs.FilterMessage("pattern evicted from cache").All()
	require.Len(t, evicted, 1)
	assert.Equal(t, "b", evicted[0].ContextMap()["pattern"])

	m.purge()
	assert.Zero(t, m.list.Len())
	assert.Empty(t, m.cache)
}

func TestCacheSameNode(t *testing.T) {
	m := NewModule()

	x, err := m.parse("abc")
	require.NoError(t, err)

	y, err := m.parse("abc")
	require.NoError(t, err)

	assert.Equal(t, x, y)
}

func TestCacheDisabled(t *testing.T) {
	m := NewModule(WithCacheSize(0))

	_, err := m.parse("abc")
	require.NoError(t, err)
	assert.Zero(t, m.list.Len())
}

func TestParseEmpty(t *testing.T) {
	m := NewModule()

	_, err := m.parse("")
	require.Error(t, err)
	assert.Zero(t, m.list.Len())
}

func TestNodeValue(t *testing.T) {
	n := newNode(ast.Concat{Left: ast.Literal{Char: 'a'}, Right: ast.EOF{}})

	assert.Equal(t, ast.Concat{Left: ast.Literal{Char: 'a'}, Right: ast.EOF{}}, n.Unwrap())
	assert.Equal(t, "Concat", n.Type())
	assert.Equal(t, []string{"left", "matches", "right"}, n.AttrNames())
	assert.Equal(t, "Concat(Literal('a'), EOF())", n.String())

	left, err := n.Attr("left")
	require.NoError(t, err)
	assert.Equal(t, newNode(ast.Literal{Char: 'a'}), left)

	missing, err := n.Attr("child")
	require.NoError(t, err)
	assert.Nil(t, missing)

	eq, err := starlark.Equal(n, newNode(ast.Concat{Left: ast.Literal{Char: 'a'}, Right: ast.EOF{}}))
	require.NoError(t, err)
	assert.True(t, eq)

	x, err := n.Hash()
	require.NoError(t, err)
	y, err := newNode(ast.Concat{Left: ast.Literal{Char: 'a'}, Right: ast.EOF{}}).Hash()
	require.NoError(t, err)
	assert.Equal(t, x, y)
}

func TestCrosscheckLogs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	predeclared := starlark.StringDict{
		"bb": NewModule(WithLogger(zap.New(core))),
	}

	thread := &starlark.Thread{Name: "crosscheck"}

	v, err := starlark.Eval(thread, "crosscheck", `bb.crosscheck(bb.Repetition(bb.Concat(bb.Literal("a"), bb.Literal("b"))), ["", "ab", "abab"])`, predeclared)
	require.NoError(t, err)
	assert.Equal(t, `[("abab", False, True, True)]`, v.String())

	assert.Equal(t, 1, logs.FilterMessage("matchers disagree").Len())
}
