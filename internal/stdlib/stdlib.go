// Package stdlib installs lumesh's built-in standard library (spec §6,
// "fs, math, time, string, list, etc. ... Each is a map from name to
// builtin callable; the core only requires the shape of a builtin").
//
// This is a shape-demonstrating surface, not an exhaustive standard
// library: enough concrete builtins to exercise the value.Builtin
// contract end to end, grounded on ardnew-aenv/lang/env.go's namespaced
// built-in environment (a process-wide map of namespace -> name ->
// function, installed once and looked up by dotted path) adapted from
// `map[string]any` to lumesh's own value.Builtin/value.Map types.
package stdlib

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/value"
)

// Install defines every top-level builtin and namespace map directly in e,
// the same way a `let` would, so scripts can shadow any of them.
func Install(e *env.Environment) {
	for name, fn := range topLevel() {
		e.Define(name, fn)
	}
	e.Define("fs", namespace("fs", fsBuiltins()))
	e.Define("math", namespace("math", mathBuiltins()))
	e.Define("string", namespace("string", stringBuiltins()))
	e.Define("list", namespace("list", listBuiltins()))
}

func builtin(name, help string, fn value.BuiltinFn) value.Builtin {
	return value.Builtin{Name: name, Help: help, Fn: fn}
}

func namespace(prefix string, fns map[string]value.Builtin) value.Map {
	names := make([]string, 0, len(fns))
	for n := range fns {
		names = append(names, n)
	}
	sort.Strings(names)
	pairs := make([]value.MapPair, 0, len(names))
	for _, n := range names {
		pairs = append(pairs, value.MapPair{Key: n, Value: fns[n]})
	}
	return value.Map{Pairs: pairs}
}

func envOf(e any) *env.Environment {
	if ev, ok := e.(*env.Environment); ok {
		return ev
	}
	return nil
}

func arity(args []value.Value, n int, name string) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func wantString(v value.Value, name string) (string, error) {
	s, ok := v.(value.String)
	if !ok {
		return "", fmt.Errorf("%s expects a string, got %s", name, value.TypeName(v))
	}
	return s.Value, nil
}

func wantFloat(v value.Value, name string) (float64, error) {
	switch t := v.(type) {
	case value.Integer:
		return float64(t.Value), nil
	case value.Float:
		return t.Value, nil
	}
	return 0, fmt.Errorf("%s expects a number, got %s", name, value.TypeName(v))
}

func wantList(v value.Value, name string) ([]value.Value, error) {
	l, ok := v.(value.List)
	if !ok {
		return nil, fmt.Errorf("%s expects a list, got %s", name, value.TypeName(v))
	}
	return l.Items, nil
}

// ---- Top-level builtins ----

func topLevel() map[string]value.Builtin {
	return map[string]value.Builtin{
		"len":   builtin("len", "len(x) - length of a list, string, bytes, or map", biLen),
		"type":  builtin("type", "type(x) - the name of x's runtime type", biType),
		"range": builtin("range", "range(a, b) - an inclusive..exclusive integer range", biRange),
		"print": builtin("print", "print(x, ...) - display each argument on its own line", biPrint),
		"help":  builtin("help", "help(name) - the help text bound to a builtin value", biHelp),
		"cd":    builtin("cd", "cd(path) - change the current directory, \"-\" for the previous one", biCd),
	}
}

func biLen(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "len"); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case value.List:
		return value.Int(int64(len(t.Items))), nil
	case value.String:
		return value.Int(int64(len(t.Value))), nil
	case value.Bytes:
		return value.Int(int64(len(t.Value))), nil
	case value.Map:
		return value.Int(int64(len(t.Pairs))), nil
	}
	return nil, fmt.Errorf("len expects a list, string, bytes, or map, got %s", value.TypeName(args[0]))
}

func biType(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "type"); err != nil {
		return nil, err
	}
	return value.Str(value.TypeName(args[0])), nil
}

func biRange(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "range"); err != nil {
		return nil, err
	}
	a, ok1 := args[0].(value.Integer)
	b, ok2 := args[1].(value.Integer)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("range expects two integers")
	}
	return value.Range(a.Value, b.Value), nil
}

func biPrint(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	for _, a := range args {
		fmt.Println(value.Display(a))
	}
	return value.None{}, nil
}

func biHelp(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "help"); err != nil {
		return nil, err
	}
	name, err := wantString(args[0], "help")
	if err != nil {
		if b, ok := args[0].(value.Builtin); ok {
			return value.Str(b.Help), nil
		}
		return nil, err
	}
	ev := envOf(e)
	if ev == nil {
		return nil, fmt.Errorf("help: no environment available")
	}
	v, ok := ev.Get(name)
	if !ok {
		return nil, fmt.Errorf("help: %s is not defined", name)
	}
	b, ok := v.(value.Builtin)
	if !ok {
		return nil, fmt.Errorf("help: %s has no help text (not a builtin)", name)
	}
	return value.Str(b.Help), nil
}

// biCd implements the `cd`/`cd -` builtin (spec §3's LWD, supplemented
// per SPEC_FULL.md's "cd - via LWD" feature): it only ever updates the
// CWD/LWD environment bindings, since the real working directory a
// spawned command sees comes from cmd.Dir (internal/exec), not a process-
// wide os.Chdir.
func biCd(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "cd"); err != nil {
		return nil, err
	}
	ev := envOf(e)
	if ev == nil {
		return nil, fmt.Errorf("cd: no environment available")
	}
	target, err := wantString(args[0], "cd")
	if err != nil {
		return nil, err
	}
	if target == "-" {
		if lwd, ok := ev.Get("LWD"); ok {
			if s, ok := lwd.(value.String); ok {
				target = s.Value
			}
		}
	}
	dir := target
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(ev.CWD(), dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cd: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cd: %s is not a directory", dir)
	}
	ev.SetCWD(dir)
	return value.None{}, nil
}

// ---- fs.* ----

func fsBuiltins() map[string]value.Builtin {
	return map[string]value.Builtin{
		"read":   builtin("fs.read", "fs.read(path) - the file's contents as a string", fsRead),
		"write":  builtin("fs.write", "fs.write(path, text) - overwrite path with text", fsWrite),
		"exists": builtin("fs.exists", "fs.exists(path) - whether path exists", fsExists),
	}
}

func fsRead(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "fs.read"); err != nil {
		return nil, err
	}
	path, err := wantString(args[0], "fs.read")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fs.read: %w", err)
	}
	return value.Str(string(data)), nil
}

func fsWrite(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "fs.write"); err != nil {
		return nil, err
	}
	path, err := wantString(args[0], "fs.write")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(value.Display(args[1])), 0o644); err != nil {
		return nil, fmt.Errorf("fs.write: %w", err)
	}
	return value.None{}, nil
}

func fsExists(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "fs.exists"); err != nil {
		return nil, err
	}
	path, err := wantString(args[0], "fs.exists")
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(path)
	return value.Bool(statErr == nil), nil
}

// ---- math.* ----

func mathBuiltins() map[string]value.Builtin {
	return map[string]value.Builtin{
		"sqrt":  builtin("math.sqrt", "math.sqrt(n) - square root", math1(math.Sqrt)),
		"floor": builtin("math.floor", "math.floor(n) - round toward negative infinity", math1(math.Floor)),
		"ceil":  builtin("math.ceil", "math.ceil(n) - round toward positive infinity", math1(math.Ceil)),
		"abs":   builtin("math.abs", "math.abs(n) - absolute value", math1(math.Abs)),
		"pow":   builtin("math.pow", "math.pow(base, exp) - base raised to exp", mathPow),
		"min":   builtin("math.min", "math.min(a, b) - the smaller of two numbers", mathMinMax(false)),
		"max":   builtin("math.max", "math.max(a, b) - the larger of two numbers", mathMinMax(true)),
	}
}

func math1(f func(float64) float64) value.BuiltinFn {
	return func(args []value.Value, e any, site ast.Expression) (value.Value, error) {
		if err := arity(args, 1, "math"); err != nil {
			return nil, err
		}
		n, err := wantFloat(args[0], "math")
		if err != nil {
			return nil, err
		}
		return value.Float{Value: f(n)}, nil
	}
}

func mathPow(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "math.pow"); err != nil {
		return nil, err
	}
	a, err := wantFloat(args[0], "math.pow")
	if err != nil {
		return nil, err
	}
	b, err := wantFloat(args[1], "math.pow")
	if err != nil {
		return nil, err
	}
	return value.Float{Value: math.Pow(a, b)}, nil
}

func mathMinMax(max bool) value.BuiltinFn {
	return func(args []value.Value, e any, site ast.Expression) (value.Value, error) {
		if err := arity(args, 2, "math.min/max"); err != nil {
			return nil, err
		}
		a, err := wantFloat(args[0], "math.min/max")
		if err != nil {
			return nil, err
		}
		b, err := wantFloat(args[1], "math.min/max")
		if err != nil {
			return nil, err
		}
		pick := a
		if (max && b > a) || (!max && b < a) {
			pick = b
		}
		if _, ok := args[0].(value.Integer); ok {
			if _, ok := args[1].(value.Integer); ok {
				return value.Int(int64(pick)), nil
			}
		}
		return value.Float{Value: pick}, nil
	}
}

// ---- string.* ----

func stringBuiltins() map[string]value.Builtin {
	return map[string]value.Builtin{
		"upper":    builtin("string.upper", "string.upper(s) - uppercase", str1(strings.ToUpper)),
		"lower":    builtin("string.lower", "string.lower(s) - lowercase", str1(strings.ToLower)),
		"trim":     builtin("string.trim", "string.trim(s) - strip leading/trailing whitespace", str1(strings.TrimSpace)),
		"contains": builtin("string.contains", "string.contains(s, sub) - whether sub occurs in s", stringContains),
		"replace":  builtin("string.replace", "string.replace(s, old, new) - replace every occurrence", stringReplace),
		"split":    builtin("string.split", "string.split(s, sep) - split s on sep into a list", stringSplit),
		"join":     builtin("string.join", "string.join(list, sep) - join a list of strings with sep", stringJoin),
	}
}

func str1(f func(string) string) value.BuiltinFn {
	return func(args []value.Value, e any, site ast.Expression) (value.Value, error) {
		if err := arity(args, 1, "string"); err != nil {
			return nil, err
		}
		s, err := wantString(args[0], "string")
		if err != nil {
			return nil, err
		}
		return value.Str(f(s)), nil
	}
}

func stringContains(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "string.contains"); err != nil {
		return nil, err
	}
	s, err := wantString(args[0], "string.contains")
	if err != nil {
		return nil, err
	}
	sub, err := wantString(args[1], "string.contains")
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.Contains(s, sub)), nil
}

func stringReplace(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 3, "string.replace"); err != nil {
		return nil, err
	}
	s, err := wantString(args[0], "string.replace")
	if err != nil {
		return nil, err
	}
	old, err := wantString(args[1], "string.replace")
	if err != nil {
		return nil, err
	}
	newS, err := wantString(args[2], "string.replace")
	if err != nil {
		return nil, err
	}
	return value.Str(strings.ReplaceAll(s, old, newS)), nil
}

func stringSplit(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "string.split"); err != nil {
		return nil, err
	}
	s, err := wantString(args[0], "string.split")
	if err != nil {
		return nil, err
	}
	sep, err := wantString(args[1], "string.split")
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	items := make([]value.Value, len(parts))
	for i, p := range parts {
		items[i] = value.Str(p)
	}
	return value.List{Items: items}, nil
}

func stringJoin(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "string.join"); err != nil {
		return nil, err
	}
	items, err := wantList(args[0], "string.join")
	if err != nil {
		return nil, err
	}
	sep, err := wantString(args[1], "string.join")
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = value.Display(it)
	}
	return value.Str(strings.Join(parts, sep)), nil
}

// ---- list.* ----

func listBuiltins() map[string]value.Builtin {
	return map[string]value.Builtin{
		"push":     builtin("list.push", "list.push(xs, x) - a new list with x appended", listPush),
		"reverse":  builtin("list.reverse", "list.reverse(xs) - a new list in reverse order", listReverse),
		"contains": builtin("list.contains", "list.contains(xs, x) - whether x is an element of xs", listContains),
		"sort":     builtin("list.sort", "list.sort(xs) - a new list sorted ascending", listSort),
	}
}

func listPush(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "list.push"); err != nil {
		return nil, err
	}
	items, err := wantList(args[0], "list.push")
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(items)+1)
	copy(out, items)
	out[len(items)] = args[1]
	return value.List{Items: out}, nil
}

func listReverse(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "list.reverse"); err != nil {
		return nil, err
	}
	items, err := wantList(args[0], "list.reverse")
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return value.List{Items: out}, nil
}

func listContains(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 2, "list.contains"); err != nil {
		return nil, err
	}
	items, err := wantList(args[0], "list.contains")
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if value.Equal(it, args[1]) {
			return value.True, nil
		}
	}
	return value.False, nil
}

func listSort(args []value.Value, e any, site ast.Expression) (value.Value, error) {
	if err := arity(args, 1, "list.sort"); err != nil {
		return nil, err
	}
	items, err := wantList(args[0], "list.sort")
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return value.Compare(out[i], out[j]) == value.Less
	})
	return value.List{Items: out}, nil
}
