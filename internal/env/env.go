// Package env implements lumesh's Environment (spec §3): a parent-linked
// chain of binding frames. Grounded on the teacher's
// runtime/execution/types.go BaseExecutionContext (os.Environ() capture at
// construction, a Child()-style fork for nested scopes) adapted from a
// single flat variable map to the spec's ordered, shadowing frame chain.
package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/lumesh-lang/lumesh/internal/value"
)

// binding is one ordered entry; a slice (not a map) keeps insertion order
// visible for display/debug builtins without a second index structure.
type binding struct {
	name string
	val  value.Value
}

// Environment is a single binding frame with an optional parent. It has no
// mutex: lumesh evaluates single-threaded (spec §3, Environment invariants).
type Environment struct {
	bindings []binding
	index    map[string]int
	parent   *Environment
}

// New creates a root environment seeded with the process's environment
// variables (spec §3: CWD/LWD/PWD/HOME/argv/SCRIPT/STRICT/LUME_MAX_*).
func New() *Environment {
	e := &Environment{index: make(map[string]int)}
	for _, kv := range os.Environ() {
		if name, val, ok := strings.Cut(kv, "="); ok {
			e.Define(name, value.String{Value: val})
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		e.Define("CWD", value.String{Value: cwd})
		e.Define("PWD", value.String{Value: cwd})
	}
	if home, err := os.UserHomeDir(); err == nil {
		e.Define("HOME", value.String{Value: home})
	}
	e.Define("STRICT", value.False)
	e.Define("LUME_MAX_SYNTAX_RECURSION", value.Int(100))
	e.Define("LUME_MAX_RUNTIME_RECURSION", value.Int(800))
	return e
}

// Get walks the parent chain; the first hit wins (spec §3).
func (e *Environment) Get(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if i, ok := cur.index[name]; ok {
			return cur.bindings[i].val, true
		}
	}
	return nil, false
}

// Define always writes to the current frame, shadowing any parent binding
// of the same name (spec §3).
func (e *Environment) Define(name string, v value.Value) {
	if i, ok := e.index[name]; ok {
		e.bindings[i].val = v
		return
	}
	e.index[name] = len(e.bindings)
	e.bindings = append(e.bindings, binding{name: name, val: v})
}

// Assign walks the parent chain looking for an existing binding to mutate
// in place. It reports whether one was found — the caller (internal/eval)
// decides whether a miss is an error (strict mode) or falls back to
// Define in the current frame (spec §4.4, "Assign").
func (e *Environment) Assign(name string, v value.Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if i, ok := cur.index[name]; ok {
			cur.bindings[i].val = v
			return true
		}
	}
	return false
}

// Undefine removes name from the current frame only (spec §3).
func (e *Environment) Undefine(name string) {
	i, ok := e.index[name]
	if !ok {
		return
	}
	delete(e.index, name)
	e.bindings = append(e.bindings[:i], e.bindings[i+1:]...)
	for name, idx := range e.index {
		if idx > i {
			e.index[name] = idx - 1
		}
	}
}

// DefinedHere reports whether name is bound in the current frame,
// independent of any parent — used by strict-mode Redeclaration checks
// (spec §4.4, "Declare").
func (e *Environment) DefinedHere(name string) bool {
	_, ok := e.index[name]
	return ok
}

// Fork creates a child frame whose parent is a clone of self, so captured
// closures remain stable even as the forking frame continues mutating —
// Fork deep-copies the bindings slice and index map rather than just the
// struct header, since both are reference types that would otherwise
// still alias e's storage (spec §3, "fork()").
func (e *Environment) Fork() *Environment {
	clone := &Environment{
		bindings: make([]binding, len(e.bindings)),
		index:    make(map[string]int, len(e.index)),
		parent:   e.parent,
	}
	copy(clone.bindings, e.bindings)
	for k, v := range e.index {
		clone.index[k] = v
	}
	return &Environment{index: make(map[string]int), parent: clone}
}

// Strict reports whether the STRICT binding is currently truthy.
func (e *Environment) Strict() bool {
	v, ok := e.Get("STRICT")
	return ok && value.Truthy(v)
}

// CWD returns the nearest CWD binding, or "/" if none is set (spec §3,
// "get_cwd()").
func (e *Environment) CWD() string {
	if v, ok := e.Get("CWD"); ok {
		if s, ok := v.(value.String); ok {
			return s.Value
		}
	}
	return "/"
}

// SetCWD updates CWD (defining in the current frame) and shifts the
// previous value into LWD, supporting `cd -` (spec §3, "LWD").
func (e *Environment) SetCWD(dir string) {
	prev := e.CWD()
	e.Define("LWD", value.String{Value: prev})
	e.Define("CWD", value.String{Value: dir})
}

// MaxSyntaxRecursion reads LUME_MAX_SYNTAX_RECURSION, defaulting to 100.
func (e *Environment) MaxSyntaxRecursion() int {
	return intBinding(e, "LUME_MAX_SYNTAX_RECURSION", 100)
}

// MaxRuntimeRecursion reads LUME_MAX_RUNTIME_RECURSION, defaulting to 800.
func (e *Environment) MaxRuntimeRecursion() int {
	return intBinding(e, "LUME_MAX_RUNTIME_RECURSION", 800)
}

func intBinding(e *Environment, name string, def int) int {
	v, ok := e.Get(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case value.Integer:
		return int(t.Value)
	case value.String:
		if n, err := strconv.Atoi(t.Value); err == nil {
			return n
		}
	}
	return def
}

// OwnBindings returns name/value pairs defined directly in e's own frame,
// in declaration order, ignoring any parent — used by internal/module to
// expose a loaded file's top-level declarations as its module map (spec
// §4.6, "the loader exposes its final environment's top-level bindings").
func (e *Environment) OwnBindings() []struct {
	Name  string
	Value value.Value
} {
	out := make([]struct {
		Name  string
		Value value.Value
	}, len(e.bindings))
	for i, b := range e.bindings {
		out[i].Name = b.name
		out[i].Value = b.val
	}
	return out
}

// Names returns every name visible from e, nearest frame first, without
// duplicates — used to build a child process's environment (internal/exec).
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for cur := e; cur != nil; cur = cur.parent {
		for _, b := range cur.bindings {
			if !seen[b.name] {
				seen[b.name] = true
				out = append(out, b.name)
			}
		}
	}
	return out
}
