package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumesh-lang/lumesh/internal/value"
)

func newBare() *Environment {
	return &Environment{index: make(map[string]int)}
}

func TestDefineAndGet(t *testing.T) {
	e := newBare()
	e.Define("x", value.Int(1))
	v, ok := e.Get("x")
	require.True(t, ok)
	assert.Equal(t, value.Int(1), v)
}

func TestGetWalksParentChain(t *testing.T) {
	parent := newBare()
	parent.Define("x", value.Int(1))
	child := parent.Fork()
	v, ok := child.Get("x")
	require.True(t, ok)
	assert.Equal(t, value.Int(1), v)
}

func TestDefineShadowsInCurrentFrame(t *testing.T) {
	parent := newBare()
	parent.Define("x", value.Int(1))
	child := parent.Fork()
	child.Define("x", value.Int(2))

	cv, _ := child.Get("x")
	pv, _ := parent.Get("x")
	assert.Equal(t, value.Int(2), cv)
	assert.Equal(t, value.Int(1), pv)
}

func TestUndefineOnlyAffectsCurrentFrame(t *testing.T) {
	parent := newBare()
	parent.Define("x", value.Int(1))
	child := parent.Fork()
	child.Define("x", value.Int(2))
	child.Undefine("x")

	_, childHas := child.Get("x")
	require.True(t, childHas, "should fall through to parent's x")
	pv, _ := parent.Get("x")
	assert.Equal(t, value.Int(1), pv)
}

func TestAssignMutatesDefiningFrameNotCurrentFrame(t *testing.T) {
	parent := newBare()
	parent.Define("x", value.Int(1))
	child := parent.Fork()

	ok := child.Assign("x", value.Int(99))
	require.True(t, ok)
	assert.False(t, child.DefinedHere("x"), "Assign walks up rather than shadowing in the current frame")

	v, _ := child.Get("x")
	assert.Equal(t, value.Int(99), v, "the mutation must be visible through the same frame chain")

	grandchild := child.Fork()
	gv, _ := grandchild.Get("x")
	assert.Equal(t, value.Int(99), gv, "a further fork sees the mutated value, proving it landed in child's own chain")
}

func TestAssignReportsMissOnUndeclared(t *testing.T) {
	e := newBare()
	ok := e.Assign("never_declared", value.Int(1))
	assert.False(t, ok)
}

func TestForkIsolatesFutureParentMutations(t *testing.T) {
	parent := newBare()
	parent.Define("x", value.Int(1))
	child := parent.Fork()

	parent.Define("y", value.Int(2))
	_, ok := child.Get("y")
	assert.False(t, ok, "mutations to parent after Fork must not leak into the captured snapshot")
}

func TestDefinedHere(t *testing.T) {
	parent := newBare()
	parent.Define("x", value.Int(1))
	child := parent.Fork()
	assert.False(t, child.DefinedHere("x"))
	child.Define("x", value.Int(2))
	assert.True(t, child.DefinedHere("x"))
}

func TestCWDDefaultsToSlash(t *testing.T) {
	e := newBare()
	assert.Equal(t, "/", e.CWD())
}

func TestSetCWDTracksLWD(t *testing.T) {
	e := newBare()
	e.SetCWD("/a")
	e.SetCWD("/b")
	assert.Equal(t, "/b", e.CWD())
	lwd, ok := e.Get("LWD")
	require.True(t, ok)
	assert.Equal(t, value.String{Value: "/a"}, lwd)
}

func TestMaxRecursionDefaults(t *testing.T) {
	e := newBare()
	assert.Equal(t, 100, e.MaxSyntaxRecursion())
	assert.Equal(t, 800, e.MaxRuntimeRecursion())
}

func TestMaxRecursionOverride(t *testing.T) {
	e := newBare()
	e.Define("LUME_MAX_RUNTIME_RECURSION", value.Int(50))
	assert.Equal(t, 50, e.MaxRuntimeRecursion())
}

func TestStrictDefaultsFalse(t *testing.T) {
	e := newBare()
	assert.False(t, e.Strict())
	e.Define("STRICT", value.True)
	assert.True(t, e.Strict())
}
