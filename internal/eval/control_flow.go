package eval

import (
	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/value"
)

func (ev *Evaluator) evalIf(n ast.If, e *env.Environment, depth int, src string) (value.Value, error) {
	cond, err := ev.Eval(n.Cond, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	if value.Truthy(cond) {
		return ev.Eval(n.Then, e, depth+1, src)
	}
	if n.Else == nil {
		return value.None{}, nil
	}
	return ev.Eval(n.Else, e, depth+1, src)
}

func (ev *Evaluator) evalWhile(n ast.While, e *env.Environment, depth int, src string) (value.Value, error) {
	result := value.Value(value.None{})
	for {
		cond, err := ev.Eval(n.Cond, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(cond) {
			return result, nil
		}
		v, err := ev.Eval(n.Body, e, depth+1, src)
		if err != nil {
			if brk, ok := err.(breakSignal); ok {
				return brk.value, nil
			}
			return nil, err
		}
		result = v
	}
}

func (ev *Evaluator) evalFor(n ast.For, e *env.Environment, depth int, src string) (value.Value, error) {
	iterV, err := ev.Eval(n.Iter, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	items, err := iterable(iterV, n, src)
	if err != nil {
		return nil, err
	}

	result := value.Value(value.None{})
	loopEnv := e
	for _, item := range items {
		loopEnv.Define(n.Var, item)
		v, err := ev.Eval(n.Body, loopEnv, depth+1, src)
		if err != nil {
			if brk, ok := err.(breakSignal); ok {
				return brk.value, nil
			}
			return nil, err
		}
		result = v
	}
	return result, nil
}

// iterable expands a For's iterator value into the sequence bound to the
// loop variable each pass (spec §4.4, "For requires an iterable"): a
// list yields its elements, a range yields integers, a map yields
// [key,value] pairs, a string yields one-character strings.
func iterable(v value.Value, n ast.For, src string) ([]value.Value, error) {
	switch t := v.(type) {
	case value.List:
		return t.Items, nil
	case value.RangeValue:
		ints := value.Iterate(t)
		out := make([]value.Value, len(ints))
		for i, n := range ints {
			out[i] = value.Integer{Value: n}
		}
		return out, nil
	case value.Map:
		out := make([]value.Value, len(t.Pairs))
		for i, p := range t.Pairs {
			out[i] = value.List{Items: []value.Value{value.String{Value: p.Key}, p.Value}}
		}
		return out, nil
	case value.String:
		runes := []rune(t.Value)
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String{Value: string(r)}
		}
		return out, nil
	}
	return nil, lmerr.New(lmerr.ForNonList, n.Range(), src, "cannot iterate over %s", value.TypeName(v))
}

func (ev *Evaluator) evalMatch(n ast.Match, e *env.Environment, depth int, src string) (value.Value, error) {
	scrutinee, err := ev.Eval(n.Scrutinee, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	for _, arm := range n.Arms {
		switch pat := arm.Pattern.(type) {
		case ast.BindPattern:
			armEnv := e.Fork()
			if !pat.IsWildcard() {
				armEnv.Define(pat.Name, scrutinee)
			}
			return ev.Eval(arm.Body, armEnv, depth+1, src)
		case ast.LiteralPattern:
			litV, err := ev.Eval(pat.Expr, e, depth+1, src)
			if err != nil {
				return nil, err
			}
			if value.Equal(scrutinee, litV) {
				return ev.Eval(arm.Body, e, depth+1, src)
			}
		}
	}
	return nil, lmerr.New(lmerr.NoMatchingBranch, n.Range(), src, "no pattern matched %s", value.Display(scrutinee))
}
