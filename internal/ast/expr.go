// Package ast defines lumesh's expression tree (spec §3). Every construct
// in the language — control flow, assignment, pipelines, command
// invocation — is an Expression, and evaluating one always yields a Value.
//
// Expressions are immutable once parsed; evaluation clones subtrees
// freely. Bodies of Lambda/Function/Macro values and large payloads
// (List/Map elements) are carried by slice/pointer so cloning stays cheap;
// the language is single-threaded so nothing here needs to be safe for
// concurrent mutation (spec §3, "Ownership").
package ast

import "github.com/lumesh-lang/lumesh/internal/token"

// Expression is the tagged-union node type described in spec §3. Each
// concrete case below implements it; type-switch on the concrete type to
// dispatch, mirroring the teacher's ast.Node interface
// (core/ast/ast.go) generalized from a CST of command declarations to a
// full expression grammar.
type Expression interface {
	Range() token.StrSlice
	exprNode()
}

// Base is embedded by every concrete Expression case to supply its source
// span and satisfy the sealed exprNode marker. Other packages (notably
// internal/parser) construct nodes directly via BaseSpan — embedding Base
// is what lets a foreign type's literal still implement Expression.
type Base struct{ Span token.StrSlice }

func (b Base) Range() token.StrSlice { return b.Span }
func (Base) exprNode()               {}

// BaseSpan wraps a span for embedding in a node literal: ast.Foo{Base:
// ast.BaseSpan(sp), ...}.
func BaseSpan(sp token.StrSlice) Base { return Base{Span: sp} }

// ---- Atoms ----

type None struct{ Base }

type Integer struct {
	Base
	Value int64
}

type Float struct {
	Base
	Value float64
}

type Boolean struct {
	Base
	Value bool
}

type String struct {
	Base
	Value string
}

// StringTemplatePart is either a literal run or an interpolated
// expression, in source order.
type StringTemplatePart struct {
	Literal string // set when Expr == nil
	Expr    Expression
}

type StringTemplate struct {
	Base
	Parts []StringTemplatePart
}

type Bytes struct {
	Base
	Value []byte
}

// Symbol is an identifier that failed (or has yet) to resolve to a value;
// it is also how bare external-command names reach the evaluator.
type Symbol struct {
	Base
	Name string
}

// Variable is a resolved-at-eval-time identifier reference, distinguished
// from Symbol only by the parser's syntactic context — both carry a name;
// the evaluator treats the two identically (spec §4.4, "Symbol(name)
// resolves against env").
type Variable struct {
	Base
	Name string
}

type DateTime struct {
	Base
	Value string // RFC3339 source text; the value model parses on demand
}

type Range struct {
	Base
	Start, End Expression
	Step       Expression // nil when absent
}

// ---- Collections ----

type List struct {
	Base
	Items []Expression
}

// MapEntry is a single key/value pair in a map literal.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// Map is an order-preserving map literal (`{a: 1, b: 2}`).
type Map struct {
	Base
	Entries []MapEntry
}

// HMap is the unordered counterpart produced by map-merge operations; it
// exists as a distinct AST case per spec §3 but shares Map's literal
// syntax — the parser never produces one directly.
type HMap struct {
	Base
	Entries []MapEntry
}

// Group is a parenthesised single expression: `(a + b)`.
type Group struct {
	Base
	Inner Expression
}

// Quote suppresses one layer of evaluation (`let f := a + 1`); reading the
// binding re-evaluates Inner in the reader's environment.
type Quote struct {
	Base
	Inner Expression
}

// ---- Binding / control flow ----

type Declare struct {
	Base
	Name string
	Rhs  Expression
}

type Assign struct {
	Base
	Name string
	Rhs  Expression
}

type Del struct {
	Base
	Name string
}

type If struct {
	Base
	Cond Expression
	Then Expression
	Else Expression // nil when no else branch
}

type While struct {
	Base
	Cond Expression
	Body Expression
}

type For struct {
	Base
	Var  string
	Iter Expression
	Body Expression
}

// MatchArm pairs a pattern with the body evaluated when it matches.
type MatchArm struct {
	Pattern Pattern
	Body    Expression
}

type Match struct {
	Base
	Scrutinee Expression
	Arms      []MatchArm
}

// Do is a statement block; its value is its last statement's value.
type Do struct {
	Base
	Stmts []Expression
}

type Return struct {
	Base
	Value Expression // nil means None
}

type Break struct {
	Base
	Value Expression // nil means None
}

// ---- Operators ----

type UnaryOp struct {
	Base
	Op       string
	Operand  Expression
	IsPrefix bool
}

type BinaryOp struct {
	Base
	Op          string
	Left, Right Expression
}

// Index is `list @ n` / `list[n]` / `map @ key`.
type Index struct {
	Base
	Target Expression
	Key    Expression
}

// Slice is `a[start:end:step]`; any of the three may be nil (absent).
type Slice struct {
	Base
	Target             Expression
	Start, End, Step   Expression
}

// ---- Callables ----

// Param is a lambda/macro/function parameter, with an optional default
// value expression (Function only; must be an atomic literal, validated
// at declaration time — spec §4.2).
type Param struct {
	Name    string
	Default Expression // nil when absent
}

type Lambda struct {
	Base
	Params []Param
	Body   Expression
}

// Macro is a lambda whose arguments are bound unevaluated.
type Macro struct {
	Base
	Params []Param
	Body   Expression
}

type Function struct {
	Base
	Name   string
	Params []Param
	Body   Expression
}

// Builtin wraps a host-provided callable for display purposes; the parser
// never produces this case, only internal/stdlib does (spec §6, the
// Builtin contract).
type Builtin struct {
	Base
	Name string
	Help string
}

type Apply struct {
	Base
	Callee Expression
	Args   []Expression
}

// Command is an external-program invocation: `ls -la foo`.
type Command struct {
	Base
	Callee Expression
	Args   []Expression
}

// Use is a module import: `use path` or `use alias = path`.
type Use struct {
	Base
	Alias string // "" when absent; the loader then uses the file's base name
	Path  string
}

// NewSpan returns the token.StrSlice covering [start, end), for attaching
// a Range to a node built without one (helper for the parser).
func NewSpan(start, end int) token.StrSlice { return token.StrSlice{Start: start, End: end} }
