package stdlib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/value"
)

func call(t *testing.T, b value.Builtin, e *env.Environment, args ...value.Value) (value.Value, error) {
	t.Helper()
	return b.Fn(args, e, nil)
}

func get(t *testing.T, e *env.Environment, name string) value.Value {
	t.Helper()
	v, ok := e.Get(name)
	require.True(t, ok, "%s should be bound", name)
	return v
}

func namespaceBuiltin(t *testing.T, e *env.Environment, ns, name string) value.Builtin {
	t.Helper()
	m, ok := get(t, e, ns).(value.Map)
	require.True(t, ok, "%s should be a map", ns)
	v, ok := value.MapGet(m, name)
	require.True(t, ok, "%s.%s should exist", ns, name)
	b, ok := v.(value.Builtin)
	require.True(t, ok, "%s.%s should be a builtin", ns, name)
	return b
}

func TestInstallDefinesTopLevelAndNamespaces(t *testing.T) {
	e := env.New()
	Install(e)

	for _, name := range []string{"len", "type", "range", "print", "help", "cd"} {
		_, ok := get(t, e, name).(value.Builtin)
		assert.True(t, ok, "%s should be a builtin", name)
	}
	for _, ns := range []string{"fs", "math", "string", "list"} {
		_, ok := get(t, e, ns).(value.Map)
		assert.True(t, ok, "%s should be a map", ns)
	}
}

func TestLen(t *testing.T) {
	e := env.New()
	Install(e)
	lenFn := get(t, e, "len").(value.Builtin)

	v, err := call(t, lenFn, e, value.List{Items: []value.Value{value.Int(1), value.Int(2)}})
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), v)

	v, err = call(t, lenFn, e, value.String{Value: "hello"})
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), v)

	_, err = call(t, lenFn, e, value.Int(1))
	assert.Error(t, err)
}

func TestTypeAndRange(t *testing.T) {
	e := env.New()
	Install(e)

	typeFn := get(t, e, "type").(value.Builtin)
	v, err := call(t, typeFn, e, value.Int(1))
	require.NoError(t, err)
	assert.Equal(t, value.Str("integer"), v)

	rangeFn := get(t, e, "range").(value.Builtin)
	v, err = call(t, rangeFn, e, value.Int(1), value.Int(4))
	require.NoError(t, err)
	assert.Equal(t, value.Range(1, 4), v)
}

func TestHelpReturnsBuiltinHelpText(t *testing.T) {
	e := env.New()
	Install(e)
	helpFn := get(t, e, "help").(value.Builtin)

	v, err := call(t, helpFn, e, value.Str("cd"))
	require.NoError(t, err)
	s, ok := v.(value.String)
	require.True(t, ok)
	assert.Contains(t, s.Value, "cd")
}

func TestCdUpdatesCWDAndLWD(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	e := env.New()
	e.SetCWD(dir)
	Install(e)
	cdFn := get(t, e, "cd").(value.Builtin)

	_, err := call(t, cdFn, e, value.Str("sub"))
	require.NoError(t, err)
	assert.Equal(t, sub, e.CWD())

	_, err = call(t, cdFn, e, value.Str("-"))
	require.NoError(t, err)
	assert.Equal(t, dir, e.CWD())
}

func TestCdRejectsMissingDirectory(t *testing.T) {
	e := env.New()
	e.SetCWD(t.TempDir())
	Install(e)
	cdFn := get(t, e, "cd").(value.Builtin)

	_, err := call(t, cdFn, e, value.Str("does-not-exist"))
	assert.Error(t, err)
}

func TestFsReadWriteExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")

	e := env.New()
	Install(e)
	writeFn := namespaceBuiltin(t, e, "fs", "write")
	readFn := namespaceBuiltin(t, e, "fs", "read")
	existsFn := namespaceBuiltin(t, e, "fs", "exists")

	_, err := call(t, existsFn, e, value.Str(path))
	require.NoError(t, err)

	_, err = call(t, writeFn, e, value.Str(path), value.Str("hello"))
	require.NoError(t, err)

	v, err := call(t, readFn, e, value.Str(path))
	require.NoError(t, err)
	assert.Equal(t, value.Str("hello"), v)

	v, err = call(t, existsFn, e, value.Str(path))
	require.NoError(t, err)
	assert.Equal(t, value.True, v)
}

func TestMathBuiltins(t *testing.T) {
	e := env.New()
	Install(e)

	sqrtFn := namespaceBuiltin(t, e, "math", "sqrt")
	v, err := call(t, sqrtFn, e, value.Int(9))
	require.NoError(t, err)
	assert.Equal(t, value.Float{Value: 3}, v)

	maxFn := namespaceBuiltin(t, e, "math", "max")
	v, err = call(t, maxFn, e, value.Int(2), value.Int(5))
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), v)
}

func TestStringBuiltins(t *testing.T) {
	e := env.New()
	Install(e)

	upperFn := namespaceBuiltin(t, e, "string", "upper")
	v, err := call(t, upperFn, e, value.Str("abc"))
	require.NoError(t, err)
	assert.Equal(t, value.Str("ABC"), v)

	splitFn := namespaceBuiltin(t, e, "string", "split")
	v, err = call(t, splitFn, e, value.Str("a,b,c"), value.Str(","))
	require.NoError(t, err)
	list, ok := v.(value.List)
	require.True(t, ok)
	assert.Len(t, list.Items, 3)

	joinFn := namespaceBuiltin(t, e, "string", "join")
	v, err = call(t, joinFn, e, list, value.Str("-"))
	require.NoError(t, err)
	assert.Equal(t, value.Str("a-b-c"), v)
}

func TestListBuiltins(t *testing.T) {
	e := env.New()
	Install(e)

	xs := value.List{Items: []value.Value{value.Int(3), value.Int(1), value.Int(2)}}

	pushFn := namespaceBuiltin(t, e, "list", "push")
	v, err := call(t, pushFn, e, xs, value.Int(9))
	require.NoError(t, err)
	pushed, ok := v.(value.List)
	require.True(t, ok)
	assert.Len(t, pushed.Items, 4)

	sortFn := namespaceBuiltin(t, e, "list", "sort")
	v, err = call(t, sortFn, e, xs)
	require.NoError(t, err)
	sorted, ok := v.(value.List)
	require.True(t, ok)
	assert.Equal(t, []value.Value{value.Int(1), value.Int(2), value.Int(3)}, sorted.Items)

	containsFn := namespaceBuiltin(t, e, "list", "contains")
	v, err = call(t, containsFn, e, xs, value.Int(2))
	require.NoError(t, err)
	assert.Equal(t, value.True, v)
}
