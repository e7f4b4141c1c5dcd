package eval

import (
	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/value"
)

// evalFunction implements spec §4.4's Function case: the declaration
// itself defines the name in the current env (so recursive calls resolve
// before the function has returned), and the value's captured env is
// this one forked.
func (ev *Evaluator) evalFunction(n ast.Function, e *env.Environment, depth int, src string) (value.Value, error) {
	fnEnv := e.Fork()
	fn := value.Function{Name: n.Name, Params: n.Params, Body: n.Body, Env: fnEnv}
	fnEnv.Define(n.Name, fn)
	e.Define(n.Name, fn)
	return fn, nil
}

func (ev *Evaluator) evalApply(n ast.Apply, e *env.Environment, depth int, src string) (value.Value, error) {
	callee, err := ev.Eval(n.Callee, e, depth+1, src)
	if err != nil {
		return nil, err
	}
	switch c := callee.(type) {
	case value.Builtin:
		args, err := ev.evalArgs(n.Args, e, depth, src)
		if err != nil {
			return nil, err
		}
		if c.Fn == nil {
			return nil, lmerr.New(lmerr.MethodNotFound, n.Range(), src, "builtin %s has no implementation", c.Name)
		}
		v, err := c.Fn(args, e, n)
		if err != nil {
			return nil, lmerr.Wrap(lmerr.BuiltinFailed, n.Range(), src, err, "%s", c.Name)
		}
		return v, nil

	case value.Lambda:
		args, err := ev.evalArgs(n.Args, e, depth, src)
		if err != nil {
			return nil, err
		}
		return ev.applyParams(c.Params, args, c.Env, c.Body, depth, src, n)

	case value.Function:
		args, err := ev.evalArgs(n.Args, e, depth, src)
		if err != nil {
			return nil, err
		}
		return ev.applyParams(c.Params, args, c.Env, c.Body, depth, src, n)

	case value.Macro:
		callEnv := envOf(c.Env)
		macroEnv := callEnv.Fork()
		if len(n.Args) != len(c.Params) {
			return nil, lmerr.New(lmerr.ArgumentMismatch, n.Range(), src, "macro expects %d arguments, got %d", len(c.Params), len(n.Args))
		}
		bindMacroParams(c.Params, n.Args, macroEnv)
		return ev.Eval(c.Body, macroEnv, depth+1, src)

	case value.Symbol:
		return ev.runCommand(ast.Command{Base: n.Base, Callee: ast.Symbol{Base: n.Base, Name: c.Name}, Args: n.Args}, e, depth, src)

	case value.String:
		return ev.runCommand(ast.Command{Base: n.Base, Callee: ast.String{Base: n.Base, Value: c.Value}, Args: n.Args}, e, depth, src)
	}

	return nil, lmerr.New(lmerr.CannotApply, n.Range(), src, "cannot apply %s", value.TypeName(callee))
}

func (ev *Evaluator) evalArgs(exprs []ast.Expression, e *env.Environment, depth int, src string) ([]value.Value, error) {
	out := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := ev.Eval(a, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// applyParams binds args to params in a forked copy of captured. Under-
// supply is only tolerated when the missing parameter carries a default
// expression (Function only, per its parser-validated Param.Default);
// over-supply is always a hard error (spec §4.4).
func (ev *Evaluator) applyParams(params []ast.Param, args []value.Value, captured any, body ast.Expression, depth int, src string, site ast.Expression) (value.Value, error) {
	if len(args) > len(params) {
		return nil, lmerr.New(lmerr.TooManyArguments, site.Range(), src, "expected at most %d arguments, got %d", len(params), len(args))
	}
	callEnv := envOf(captured).Fork()
	for i, p := range params {
		switch {
		case i < len(args):
			callEnv.Define(p.Name, args[i])
		case p.Default != nil:
			defVal, err := ev.Eval(p.Default, callEnv, depth+1, src)
			if err != nil {
				return nil, err
			}
			callEnv.Define(p.Name, defVal)
		default:
			return nil, lmerr.New(lmerr.ArgumentMismatch, site.Range(), src, "missing argument %q", p.Name)
		}
	}
	v, err := ev.Eval(body, callEnv, depth+1, src)
	if err != nil {
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		return nil, err
	}
	return v, nil
}

// bindMacroParams binds each macro parameter to its *unevaluated* argument
// expression, wrapped the same way `let x := e` wraps a lazy binding
// (spec §4.4, "Macro"). Caller has already checked arity.
func bindMacroParams(params []ast.Param, args []ast.Expression, into *env.Environment) {
	for i, p := range params {
		into.Define(p.Name, quoted{expr: args[i]})
	}
}

func envOf(captured any) *env.Environment {
	if e, ok := captured.(*env.Environment); ok {
		return e
	}
	return env.New()
}

// evalCommand implements spec §4.4's Command case: evaluate the callee to
// a name, flatten List/Group arguments, drop None, Display-coerce the
// rest, and call the command executor (C7).
func (ev *Evaluator) evalCommand(n ast.Command, e *env.Environment, depth int, src string) (value.Value, error) {
	return ev.runCommand(n, e, depth, src)
}

func (ev *Evaluator) runCommand(n ast.Command, e *env.Environment, depth int, src string) (value.Value, error) {
	name, err := ev.commandName(n, e, depth, src)
	if err != nil {
		return nil, err
	}
	args, err := ev.flattenCommandArgs(n.Args, e, depth, src)
	if err != nil {
		return nil, err
	}
	return ev.Exec.Run(name, args, e, site(n, src))
}

// runCommandCaptured is the pipe-left-hand-side variant: same name/arg
// resolution, but stdout is collected into the returned string instead of
// inheriting the shell's (spec §5).
func (ev *Evaluator) runCommandCaptured(n ast.Command, e *env.Environment, depth int, src, stdin string) (string, error) {
	name, err := ev.commandName(n, e, depth, src)
	if err != nil {
		return "", err
	}
	args, err := ev.flattenCommandArgs(n.Args, e, depth, src)
	if err != nil {
		return "", err
	}
	return ev.Exec.Capture(name, args, e, site(n, src), stdin)
}

func (ev *Evaluator) commandName(n ast.Command, e *env.Environment, depth int, src string) (string, error) {
	calleeV, err := ev.Eval(n.Callee, e, depth+1, src)
	if err != nil {
		return "", err
	}
	switch c := calleeV.(type) {
	case value.Symbol:
		return c.Name, nil
	case value.String:
		return c.Value, nil
	}
	return "", lmerr.New(lmerr.NotAFunction, n.Range(), src, "%s is not a command name", value.TypeName(calleeV))
}

func (ev *Evaluator) flattenCommandArgs(exprs []ast.Expression, e *env.Environment, depth int, src string) ([]value.Value, error) {
	var out []value.Value
	for _, a := range exprs {
		v, err := ev.Eval(a, e, depth+1, src)
		if err != nil {
			return nil, err
		}
		out = appendFlattened(out, v)
	}
	return out, nil
}

// appendFlattened implements spec §4.4's "flatten lists and groups in
// argument position" and "drop None values".
func appendFlattened(out []value.Value, v value.Value) []value.Value {
	switch t := v.(type) {
	case value.None:
		return out
	case value.List:
		for _, item := range t.Items {
			out = appendFlattened(out, item)
		}
		return out
	}
	return append(out, v)
}

// evalUse implements spec §4.4/§4.6's Use case: dispatch to the module
// loader and bind the resulting map under alias (or the path's base name).
func (ev *Evaluator) evalUse(n ast.Use, e *env.Environment, depth int, src string) (value.Value, error) {
	if ev.Modules == nil {
		return nil, lmerr.New(lmerr.NoModuleDefined, n.Range(), src, "no module loader configured")
	}
	mod, err := ev.Modules.Load(n.Path, site(n, src), depth+1)
	if err != nil {
		return nil, err
	}
	alias := n.Alias
	if alias == "" {
		alias = baseName(n.Path)
	}
	e.Define(alias, mod)
	return mod, nil
}

func baseName(path string) string {
	cut := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			cut = path[i+1:]
			break
		}
	}
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == '.' {
			return cut[:i]
		}
	}
	return cut
}
