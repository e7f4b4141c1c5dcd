// Package eval implements lumesh's tree-walking evaluator (spec §4.4).
// Grounded on the teacher's runtime/executor/tree_runner.go ("execute a
// tree node" recursive type-switch dispatch) generalized from a shell
// command tree to the full expression grammar, and on runtime/planner's
// depth-tracked recursive walk.
package eval

import (
	"log/slog"

	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/value"
)

// CommandRunner is internal/exec's contract, injected rather than imported
// directly so internal/eval and internal/exec don't form a cycle (exec
// needs value.Value to return a result, eval needs exec to run Commands).
// Run inherits stdio and returns None/Integer(exit code) per spec §4.5.
// Capture redirects stdout into the returned string instead (used by the
// pipe operator, spec §5) and still returns a non-nil error for spawn
// failures (ProgramNotFound/PermissionDenied/CommandFailed).
type CommandRunner interface {
	Run(name string, args []value.Value, e *env.Environment, site value.Site) (value.Value, error)
	Capture(name string, args []value.Value, e *env.Environment, site value.Site, stdin string) (string, error)
}

// ModuleLoader is internal/module's contract, injected for the same
// reason as CommandRunner.
type ModuleLoader interface {
	Load(path string, site value.Site, depth int) (value.Map, error)
}

// Evaluator holds the host hooks the tree-walker needs beyond pure
// expression reduction.
type Evaluator struct {
	Exec    CommandRunner
	Modules ModuleLoader
	Log     *slog.Logger
}

// New builds an Evaluator. log may be nil (a disabled logger is used).
func New(exec CommandRunner, modules ModuleLoader, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return &Evaluator{Exec: exec, Modules: modules, Log: log}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func site(e ast.Expression, src string) value.Site {
	return value.Site{Src: src, Span: e.Range()}
}

// Eval reduces expr to a Value (spec §4.4). depth is compared against
// env's LUME_MAX_RUNTIME_RECURSION; Do/While/For/If re-enter Eval with the
// same env and an incremented depth rather than recursing through extra
// Go-level helper frames, keeping the per-iteration stack growth the spec
// asks for ("written tail-style").
func (ev *Evaluator) Eval(expr ast.Expression, e *env.Environment, depth int, src string) (value.Value, error) {
	if depth > e.MaxRuntimeRecursion() {
		return nil, lmerr.New(lmerr.RecursionDepthRuntime, expr.Range(), src, "maximum runtime recursion depth exceeded")
	}

	switch n := expr.(type) {

	// ---- Atoms: returned unchanged, save Symbol/Variable resolution ----
	case ast.None:
		return value.None{}, nil
	case ast.Integer:
		return value.Integer{Value: n.Value}, nil
	case ast.Float:
		return value.Float{Value: n.Value}, nil
	case ast.Boolean:
		return value.Bool(n.Value), nil
	case ast.String:
		return value.String{Value: n.Value}, nil
	case ast.Bytes:
		return value.Bytes{Value: n.Value}, nil
	case ast.DateTime:
		return value.DateTime{Value: n.Value}, nil

	case ast.StringTemplate:
		return ev.evalTemplate(n, e, depth, src)

	case ast.Symbol:
		return ev.resolve(n.Name, e, depth, src)

	case ast.Variable:
		return ev.resolve(n.Name, e, depth, src)

	case ast.Range:
		return ev.evalRange(n, e, depth, src)

	// ---- Collections ----
	case ast.List:
		items := make([]value.Value, len(n.Items))
		for i, it := range n.Items {
			v, err := ev.Eval(it, e, depth+1, src)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.List{Items: items}, nil

	case ast.Map, ast.HMap:
		return ev.evalMap(n, e, depth, src)

	case ast.Group:
		return ev.Eval(n.Inner, e, depth+1, src)

	case ast.Quote:
		return quoted{expr: n.Inner}, nil

	// ---- Binding / control ----
	case ast.Declare:
		return ev.evalDeclare(n, e, depth, src)
	case ast.Assign:
		return ev.evalAssign(n, e, depth, src)
	case ast.Del:
		e.Undefine(n.Name)
		return value.None{}, nil

	case ast.If:
		return ev.evalIf(n, e, depth, src)
	case ast.While:
		return ev.evalWhile(n, e, depth, src)
	case ast.For:
		return ev.evalFor(n, e, depth, src)
	case ast.Match:
		return ev.evalMatch(n, e, depth, src)

	case ast.Do:
		return ev.evalDo(n, e, depth, src)

	case ast.Return:
		v, err := ev.evalOptional(n.Value, e, depth, src)
		if err != nil {
			return nil, err
		}
		return nil, returnSignal{value: v}

	case ast.Break:
		v, err := ev.evalOptional(n.Value, e, depth, src)
		if err != nil {
			return nil, err
		}
		return nil, breakSignal{value: v}

	// ---- Operators ----
	case ast.UnaryOp:
		return ev.evalUnary(n, e, depth, src)
	case ast.BinaryOp:
		return ev.evalBinary(n, e, depth, src)
	case ast.Index:
		return ev.evalIndex(n, e, depth, src)
	case ast.Slice:
		return ev.evalSlice(n, e, depth, src)

	// ---- Callables ----
	case ast.Lambda:
		return value.Lambda{Params: n.Params, Body: n.Body, Env: e.Fork()}, nil
	case ast.Macro:
		return value.Macro{Params: n.Params, Body: n.Body, Env: e.Fork()}, nil
	case ast.Function:
		return ev.evalFunction(n, e, depth, src)
	case ast.Apply:
		return ev.evalApply(n, e, depth, src)
	case ast.Command:
		return ev.evalCommand(n, e, depth, src)
	case ast.Use:
		return ev.evalUse(n, e, depth, src)
	}

	return nil, lmerr.New(lmerr.TypeError, expr.Range(), src, "cannot evaluate %T", expr)
}

// resolve looks up name, re-evaluating a lazily-quoted binding in the
// reading environment (spec §4.4, "Quote") rather than returning the
// thunk itself. Unresolved names are returned as bare Symbol values so a
// bare command name like `ls` can later reach the command executor.
func (ev *Evaluator) resolve(name string, e *env.Environment, depth int, src string) (value.Value, error) {
	v, ok := e.Get(name)
	if !ok {
		return value.Symbol{Name: name}, nil
	}
	if q, ok := v.(quoted); ok {
		return ev.Eval(q.expr, e, depth+1, src)
	}
	return v, nil
}

// evalOptional evaluates expr if non-nil, else returns None (Return/Break
// without a value).
func (ev *Evaluator) evalOptional(expr ast.Expression, e *env.Environment, depth int, src string) (value.Value, error) {
	if expr == nil {
		return value.None{}, nil
	}
	return ev.Eval(expr, e, depth+1, src)
}

// quoted is the runtime counterpart of ast.Quote: a value.Value wrapper
// that internal/eval recognizes when a Declare reads it back (spec §4.4,
// "Quote" — "reading the binding re-evaluates Inner in the reader's
// environment"). It embeds value.None purely to satisfy value.Value's
// sealed, unexported marker method; it is never exposed to
// internal/stdlib, which never sees an unresolved quoted thunk.
type quoted struct {
	value.None
	expr ast.Expression
}

func (ev *Evaluator) evalDeclare(n ast.Declare, e *env.Environment, depth int, src string) (value.Value, error) {
	if e.Strict() && e.DefinedHere(n.Name) {
		return nil, lmerr.New(lmerr.Redeclaration, n.Range(), src, "%s already declared in this scope", n.Name)
	}
	if q, ok := n.Rhs.(ast.Quote); ok {
		e.Define(n.Name, quoted{expr: q.Inner})
		return value.None{}, nil
	}
	v, err := ev.Eval(n.Rhs, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	e.Define(n.Name, v)
	return value.None{}, nil
}

func (ev *Evaluator) evalAssign(n ast.Assign, e *env.Environment, depth int, src string) (value.Value, error) {
	v, err := ev.Eval(n.Rhs, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	if e.Assign(n.Name, v) {
		return value.None{}, nil
	}
	if e.Strict() {
		return nil, lmerr.New(lmerr.UndeclaredVariable, n.Range(), src, "%s is not declared", n.Name)
	}
	e.Define(n.Name, v)
	return value.None{}, nil
}

func (ev *Evaluator) evalDo(n ast.Do, e *env.Environment, depth int, src string) (value.Value, error) {
	var result value.Value = value.None{}
	for _, stmt := range n.Stmts {
		v, err := ev.Eval(stmt, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (ev *Evaluator) evalTemplate(n ast.StringTemplate, e *env.Environment, depth int, src string) (value.Value, error) {
	var b []byte
	for _, part := range n.Parts {
		if part.Expr == nil {
			b = append(b, part.Literal...)
			continue
		}
		v, err := ev.Eval(part.Expr, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		b = append(b, value.Display(v)...)
	}
	return value.String{Value: string(b)}, nil
}

func (ev *Evaluator) evalRange(n ast.Range, e *env.Environment, depth int, src string) (value.Value, error) {
	startV, err := ev.Eval(n.Start, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	endV, err := ev.Eval(n.End, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	startI, ok1 := startV.(value.Integer)
	endI, ok2 := endV.(value.Integer)
	if !ok1 || !ok2 {
		return nil, lmerr.New(lmerr.TypeError, n.Range(), src, "range bounds must be integers")
	}
	r := value.Range(startI.Value, endI.Value)
	if n.Step != nil {
		stepV, err := ev.Eval(n.Step, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		if stepI, ok := stepV.(value.Integer); ok && stepI.Value != 0 {
			r.Step = stepI.Value
		}
	}
	return r, nil
}

func (ev *Evaluator) evalMap(expr ast.Expression, e *env.Environment, depth int, src string) (value.Value, error) {
	var entries []ast.MapEntry
	switch n := expr.(type) {
	case ast.Map:
		entries = n.Entries
	case ast.HMap:
		entries = n.Entries
	}
	pairs := make([]value.MapPair, 0, len(entries))
	for _, ent := range entries {
		kv, err := ev.Eval(ent.Key, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		key := value.Display(kv)
		if s, ok := kv.(value.String); ok {
			key = s.Value
		}
		vv, err := ev.Eval(ent.Value, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, value.MapPair{Key: key, Value: vv})
	}
	return value.Map{Pairs: pairs}, nil
}
