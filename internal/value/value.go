// Package value implements lumesh's runtime value model (spec §4.3): the
// same tagged-variant shape as internal/ast's Expression, minus the
// binding/control/operator cases, plus the callable forms that only exist
// once captured environments are attached.
//
// Values are immutable; operations that "mutate" (list append, map delete)
// return a new Value. The one exception is Environment frames (internal/env),
// which own the only mutable state in the system.
package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumesh-lang/lumesh/internal/ast"
)

// Value is the sealed tagged union every evaluation produces. Mirrors
// internal/ast's Base/exprNode pattern (core/ast/ast.go's node-per-struct
// style) rather than a single interface{}-boxing type, so callers can
// type-switch exhaustively and the compiler flags missing cases at the
// switch's default arm.
type Value interface {
	valueNode()
}

type valueBase struct{}

func (valueBase) valueNode() {}

// ---- Atoms ----

type None struct{ valueBase }

type Integer struct {
	valueBase
	Value int64
}

type Float struct {
	valueBase
	Value float64
}

type Boolean struct {
	valueBase
	Value bool
}

type String struct {
	valueBase
	Value string
}

type Bytes struct {
	valueBase
	Value []byte
}

// Symbol is a name that failed to resolve against any environment frame.
// Kept around (rather than raised as an error) so `ls` alone can later be
// routed to the command executor as an external-program name.
type Symbol struct {
	valueBase
	Name string
}

// DateTime holds a parsed instant; String carries the RFC3339 source text
// verbatim since internal/value has no date-library dependency of its own.
type DateTime struct {
	valueBase
	Value string
}

// RangeValue is a realized `a..b` (spec §4.3, "Ranges"); Step is 1, or -1
// when Range built it from a > b.
type RangeValue struct {
	valueBase
	Start, End int64
	Step       int64
}

// ---- Collections ----

type List struct {
	valueBase
	Items []Value
}

// MapPair is one key/value entry of an order-preserving Map.
type MapPair struct {
	Key   string
	Value Value
}

// Map is lumesh's order-preserving associative value; key order is
// insertion order (spec §4.3, "maps (ordered key sequence)").
type Map struct {
	valueBase
	Pairs []MapPair
}

// ---- Callables ----

// Lambda is a closure: params plus the environment captured at the point
// the ast.Lambda was first evaluated (spec §4.4). Env is *env.Environment,
// typed as any here to avoid an import cycle (internal/env imports
// internal/value for its binding storage).
type Lambda struct {
	valueBase
	Params []ast.Param
	Body   ast.Expression
	Env    any
}

// Macro is a Lambda whose arguments bind unevaluated.
type Macro struct {
	valueBase
	Params []ast.Param
	Body   ast.Expression
	Env    any
}

// Function additionally carries its declared name (bound recursively in
// its own defining frame the first time it is evaluated, spec §4.4).
type Function struct {
	valueBase
	Name   string
	Params []ast.Param
	Body   ast.Expression
	Env    any
}

// BuiltinFn is the Go-side contract a builtin implements (spec §6):
// already-evaluated args, the calling environment, and the call-site AST
// node (for error spans).
type BuiltinFn func(args []Value, env any, callSite ast.Expression) (Value, error)

// Builtin wraps a host-provided callable. Fn is nil for display-only
// builtins constructed by tests; internal/stdlib always supplies one.
type Builtin struct {
	valueBase
	Name string
	Help string
	Fn   BuiltinFn
}

// ---- Construction helpers ----

var (
	True  = Boolean{Value: true}
	False = Boolean{Value: false}
	Nil   = None{}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(i int64) Value { return Integer{Value: i} }

func Str(s string) Value { return String{Value: s} }

// Callable reports whether v can appear on the left of an Apply/Command.
func Callable(v Value) bool {
	switch v.(type) {
	case Lambda, Macro, Function, Builtin:
		return true
	}
	return false
}

// Truthy implements spec §4.3's truthiness table: non-zero number,
// non-empty string/bytes/list/map, true, any callable; None and empty
// containers are falsy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case None:
		return false
	case Integer:
		return t.Value != 0
	case Float:
		return t.Value != 0
	case Boolean:
		return t.Value
	case String:
		return t.Value != ""
	case Bytes:
		return len(t.Value) > 0
	case List:
		return len(t.Items) > 0
	case Map:
		return len(t.Pairs) > 0
	case Symbol, DateTime, RangeValue:
		return true
	default:
		return Callable(v)
	}
}

// TypeName returns the display name used in error messages and `type()`.
func TypeName(v Value) string {
	switch v.(type) {
	case None:
		return "none"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Symbol:
		return "symbol"
	case DateTime:
		return "datetime"
	case RangeValue:
		return "range"
	case List:
		return "list"
	case Map:
		return "map"
	case Lambda:
		return "lambda"
	case Macro:
		return "macro"
	case Function:
		return "function"
	case Builtin:
		return "builtin"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Display renders v the way command-argument coercion and string
// interpolation do (spec §4.4, Command: "coerce other values with their
// display form").
func Display(v Value) string {
	switch t := v.(type) {
	case None:
		return ""
	case Integer:
		return fmt.Sprintf("%d", t.Value)
	case Float:
		return fmt.Sprintf("%g", t.Value)
	case Boolean:
		if t.Value {
			return "True"
		}
		return "False"
	case String:
		return t.Value
	case Bytes:
		return string(t.Value)
	case Symbol:
		return t.Name
	case DateTime:
		return t.Value
	case RangeValue:
		return fmt.Sprintf("%d..%d", t.Start, t.End)
	case List:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = Display(it)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case Map:
		parts := make([]string, len(t.Pairs))
		for i, p := range t.Pairs {
			parts[i] = p.Key + ": " + Display(p.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Lambda:
		return "<lambda>"
	case Macro:
		return "<macro>"
	case Function:
		return fmt.Sprintf("<function %s>", t.Name)
	case Builtin:
		return fmt.Sprintf("<builtin %s>", t.Name)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// MapGet looks up key in m, reporting whether it was present.
func MapGet(m Map, key string) (Value, bool) {
	for _, p := range m.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// MapSet returns a copy of m with key set to val, preserving insertion
// order (appending if key is new, overwriting in place if it already
// exists) — spec's maps are immutable values, so this never mutates m.
func MapSet(m Map, key string, val Value) Map {
	out := make([]MapPair, len(m.Pairs))
	copy(out, m.Pairs)
	for i, p := range out {
		if p.Key == key {
			out[i].Value = val
			return Map{Pairs: out}
		}
	}
	out = append(out, MapPair{Key: key, Value: val})
	return Map{Pairs: out}
}

// MapDelete returns a copy of m with key removed (spec §4.3, `-` on maps).
func MapDelete(m Map, key string) Map {
	out := make([]MapPair, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		if p.Key != key {
			out = append(out, p)
		}
	}
	return Map{Pairs: out}
}

// SortedKeys is a display/debug helper returning m's keys in sorted order
// (for deterministic output); normal map iteration uses insertion order
// directly via Pairs.
func SortedKeys(m Map) []string {
	keys := make([]string, len(m.Pairs))
	for i, p := range m.Pairs {
		keys[i] = p.Key
	}
	sort.Strings(keys)
	return keys
}
