package eval

import (
	"os"
	"regexp"
	"strings"

	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/value"
)

// evalBinary implements spec §4.4's BinaryOp contract: short-circuiting
// &&/||, pipe/redirect's stdin-string materialization, regex ~=/~~, and
// the arithmetic/comparison operators delegated to internal/value.
func (ev *Evaluator) evalBinary(n ast.BinaryOp, e *env.Environment, depth int, src string) (value.Value, error) {
	switch n.Op {
	case "&&":
		l, err := ev.Eval(n.Left, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(l) {
			return l, nil
		}
		return ev.Eval(n.Right, e, depth+1, src)

	case "||":
		l, err := ev.Eval(n.Left, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		if value.Truthy(l) {
			return l, nil
		}
		return ev.Eval(n.Right, e, depth+1, src)

	case "|":
		return ev.evalPipe(n, e, depth, src)

	case "<<":
		return ev.evalReadRedirect(n, e, depth, src)
	case ">>":
		return ev.evalWriteRedirect(n, e, depth, src, false)
	case ">>>":
		return ev.evalWriteRedirect(n, e, depth, src, true)

	case "~=", "~~":
		return ev.evalRegex(n, e, depth, src)
	}

	l, err := ev.Eval(n.Left, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	r, err := ev.Eval(n.Right, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	site := site(n, src)

	switch n.Op {
	case "+":
		return value.Add(l, r, site)
	case "-":
		return value.Sub(l, r, site)
	case "*":
		return value.Mul(l, r, site)
	case "/":
		return value.Div(l, r, site)
	case "%":
		return value.Mod(l, r, site)
	case "**":
		return value.Pow(l, r, site)
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "<", ">", "<=", ">=":
		return compareOp(n.Op, l, r, site)
	}

	return nil, lmerr.New(lmerr.InvalidOperator, n.Range(), src, "unknown operator %q", n.Op)
}

func compareOp(op string, l, r value.Value, site value.Site) (value.Value, error) {
	c := value.Compare(l, r)
	if c == value.Incomparable {
		return nil, lmerr.New(lmerr.TypeError, site.Span, site.Src, "cannot compare %s and %s", value.TypeName(l), value.TypeName(r))
	}
	switch op {
	case "<":
		return value.Bool(c == value.Less), nil
	case ">":
		return value.Bool(c == value.Greater), nil
	case "<=":
		return value.Bool(c != value.Greater), nil
	case ">=":
		return value.Bool(c != value.Less), nil
	}
	return nil, lmerr.New(lmerr.InvalidOperator, site.Span, site.Src, "unknown comparison operator %q", op)
}

// evalPipe implements spec §5's pipe model: the left side's output is
// collected into a string (running it through the command executor in
// capture mode when it's a Command, otherwise just Display-ing its
// value), bound to `stdin` in a forked frame, and the right side
// evaluates against that frame.
func (ev *Evaluator) evalPipe(n ast.BinaryOp, e *env.Environment, depth int, src string) (value.Value, error) {
	var captured string
	if cmd, ok := n.Left.(ast.Command); ok {
		out, err := ev.runCommandCaptured(cmd, e, depth, src, "")
		if err != nil {
			return nil, err
		}
		captured = out
	} else {
		l, err := ev.Eval(n.Left, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		captured = value.Display(l)
	}
	piped := e.Fork()
	piped.Define("stdin", value.String{Value: captured})
	return ev.Eval(n.Right, piped, depth+1, src)
}

func (ev *Evaluator) evalReadRedirect(n ast.BinaryOp, e *env.Environment, depth int, src string) (value.Value, error) {
	nameV, err := ev.Eval(n.Right, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(value.Display(nameV))
	if err != nil {
		return nil, lmerr.Wrap(lmerr.Io, n.Range(), src, err, "cannot read %s", value.Display(nameV))
	}
	return value.String{Value: string(data)}, nil
}

func (ev *Evaluator) evalWriteRedirect(n ast.BinaryOp, e *env.Environment, depth int, src string, appendMode bool) (value.Value, error) {
	content, err := ev.Eval(n.Left, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	nameV, err := ev.Eval(n.Right, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	name := value.Display(nameV)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		return nil, lmerr.Wrap(lmerr.Io, n.Range(), src, err, "cannot open %s for writing", name)
	}
	defer f.Close()
	if _, err := f.WriteString(value.Display(content)); err != nil {
		return nil, lmerr.Wrap(lmerr.Io, n.Range(), src, err, "cannot write to %s", name)
	}
	return value.None{}, nil
}

func (ev *Evaluator) evalRegex(n ast.BinaryOp, e *env.Environment, depth int, src string) (value.Value, error) {
	l, err := ev.Eval(n.Left, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	r, err := ev.Eval(n.Right, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	lhs, rhs := value.Display(l), value.Display(r)

	if n.Op == "~~" {
		return value.Bool(strings.Contains(lhs, rhs)), nil
	}
	re, err := regexp.Compile(rhs)
	if err != nil {
		return nil, lmerr.Wrap(lmerr.TypeError, n.Range(), src, err, "invalid regex %q", rhs)
	}
	return value.Bool(re.MatchString(lhs)), nil
}

func (ev *Evaluator) evalUnary(n ast.UnaryOp, e *env.Environment, depth int, src string) (value.Value, error) {
	if n.Op == "++" || n.Op == "--" {
		return ev.evalIncrDecr(n, e, depth, src)
	}
	operand, err := ev.Eval(n.Operand, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "!":
		return value.Bool(!value.Truthy(operand)), nil
	case "-":
		switch t := operand.(type) {
		case value.Integer:
			return value.Integer{Value: -t.Value}, nil
		case value.Float:
			return value.Float{Value: -t.Value}, nil
		}
		return nil, lmerr.New(lmerr.TypeError, n.Range(), src, "cannot negate %s", value.TypeName(operand))
	}
	return nil, lmerr.New(lmerr.InvalidOperator, n.Range(), src, "unknown unary operator %q", n.Op)
}

// evalIncrDecr implements spec §4.4's read-modify-write ++/--: prefix
// returns the new value, postfix the old one. Only a bound Symbol/Variable
// operand makes sense as an lvalue here.
func (ev *Evaluator) evalIncrDecr(n ast.UnaryOp, e *env.Environment, depth int, src string) (value.Value, error) {
	name, ok := lvalueName(n.Operand)
	if !ok {
		return nil, lmerr.New(lmerr.TypeError, n.Range(), src, "%s is not assignable", n.Op)
	}
	cur, ok := e.Get(name)
	if !ok {
		return nil, lmerr.New(lmerr.UndeclaredVariable, n.Range(), src, "%s is not declared", name)
	}
	delta := int64(1)
	if n.Op == "--" {
		delta = -1
	}
	updated, err := value.Add(cur, value.Integer{Value: delta}, site(n, src))
	if err != nil {
		return nil, err
	}
	e.Assign(name, updated)
	if n.IsPrefix {
		return updated, nil
	}
	return cur, nil
}

func lvalueName(e ast.Expression) (string, bool) {
	switch t := e.(type) {
	case ast.Symbol:
		return t.Name, true
	case ast.Variable:
		return t.Name, true
	}
	return "", false
}
