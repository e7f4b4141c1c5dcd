package eval

import (
	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/value"
)

func (ev *Evaluator) evalIndex(n ast.Index, e *env.Environment, depth int, src string) (value.Value, error) {
	target, err := ev.Eval(n.Target, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	key, err := ev.Eval(n.Key, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	return value.Index(target, key, site(n, src))
}

func (ev *Evaluator) evalSlice(n ast.Slice, e *env.Environment, depth int, src string) (value.Value, error) {
	target, err := ev.Eval(n.Target, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	start, err := ev.evalOptional(n.Start, e, depth, src)
	if err != nil {
		return nil, err
	}
	end, err := ev.evalOptional(n.End, e, depth, src)
	if err != nil {
		return nil, err
	}
	step, err := ev.evalOptional(n.Step, e, depth, src)
	if err != nil {
		return nil, err
	}
	return value.Slice(target, start, end, step, site(n, src))
}
