package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/eval"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/token"
	"github.com/lumesh-lang/lumesh/internal/value"
)

// noopRunner and noopLoader stand in for internal/exec.Executor and
// internal/module.Loader; these tests never spawn commands or load modules.
type noopRunner struct{}

func (noopRunner) Run(name string, args []value.Value, e *env.Environment, site value.Site) (value.Value, error) {
	return value.None{}, nil
}

func (noopRunner) Capture(name string, args []value.Value, e *env.Environment, site value.Site, stdin string) (string, error) {
	return "", nil
}

type noopLoader struct{}

func (noopLoader) Load(path string, site value.Site, depth int) (value.Map, error) {
	return value.Map{}, nil
}

func newTestEvaluator(t *testing.T) (*eval.Evaluator, *env.Environment) {
	t.Helper()
	return eval.New(noopRunner{}, noopLoader{}, nil), env.New()
}

func TestCodeOfUsesErrorStableCode(t *testing.T) {
	span := token.StrSlice{Start: 0, End: 1}
	synErr := lmerr.NewSyntax(lmerr.Expected, span, "x", "bad token")
	runErr := lmerr.New(lmerr.TypeError, span, "x", "bad type")

	assert.Equal(t, synErr.Code(), codeOf(synErr))
	assert.Equal(t, runErr.Code(), codeOf(runErr))
	assert.Equal(t, 1, codeOf(assertErr{"boom"}))
}

func TestNewRootEnvBindsArgvAndStrict(t *testing.T) {
	e := newRootEnv(true, []string{"a", "b"})

	strict, ok := e.Get("STRICT")
	require.True(t, ok)
	assert.Equal(t, value.Bool(true), strict)

	argv, ok := e.Get("argv")
	require.True(t, ok)
	list, ok := argv.(value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 2)
	assert.Equal(t, value.Str("a"), list.Items[0])
	assert.Equal(t, value.Str("b"), list.Items[1])

	// len and cd come from stdlib.Install, confirming it ran.
	_, ok = e.Get("len")
	assert.True(t, ok)
}

func TestNewRootEnvNotStrictWhenNotRequested(t *testing.T) {
	e := newRootEnv(false, nil)
	assert.False(t, e.Strict())

	argv, ok := e.Get("argv")
	require.True(t, ok)
	assert.Empty(t, argv.(value.List).Items)
}

func TestEvalSourceRoundTrips(t *testing.T) {
	ev, e := newTestEvaluator(t)

	v, err := evalSource(ev, e, "1 + 2")
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)
}

func TestEvalSourcePropagatesSyntaxError(t *testing.T) {
	ev, e := newTestEvaluator(t)

	_, err := evalSource(ev, e, "let =")
	require.Error(t, err)
	var synErr *lmerr.SyntaxError
	assert.ErrorAs(t, err, &synErr)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
