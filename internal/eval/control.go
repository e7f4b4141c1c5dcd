package eval

import "github.com/lumesh-lang/lumesh/internal/value"

// returnSignal and breakSignal implement error so they can unwind through
// ordinary Go error returns; applyParams (for Return, at the function-call
// boundary) and While/For (for Break) catch them by type assertion rather
// than letting them propagate as RuntimeErrors. Evaluating a Return outside a Function, or a Break
// outside a loop, is itself a RuntimeError (spec §4.4).
type returnSignal struct{ value value.Value }

func (returnSignal) Error() string { return "return outside function" }

type breakSignal struct{ value value.Value }

func (breakSignal) Error() string { return "break outside loop" }
