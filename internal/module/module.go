// Package module implements lumesh's `.lm` module loader (spec §4.6):
// resolving a `use` path to a file, parsing and evaluating it in a fresh
// environment, and exposing its top-level declarations as a value.Map.
//
// Grounded on internal/parser.Parse (the single entry point that already
// turns a file's text into a root ast.Do) and internal/eval.Evaluator
// (the same tree-walker a top-level script uses); the search-order logic
// itself has no teacher precedent (runtime/parser has no multi-file
// import resolution) and is built directly from the path list spec §4.6
// names. The config-directory fallback follows ardnew-aenv's
// cli/path.go, which resolves a per-platform data directory via
// os.UserConfigDir rather than hand-rolling $XDG_* lookups.
package module

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/eval"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/parser"
	"github.com/lumesh-lang/lumesh/internal/value"
)

// maxUseRecursion bounds nested `use` chains (spec §4.6,
// "MAX_USEMODE_RECURSION (100)"). Cycles are not detected, only bounded.
const maxUseRecursion = 100

// Loader implements eval.ModuleLoader by resolving a path to a `.lm` file
// on disk, evaluating it, and caching the resulting module map so that a
// second `use` of the same resolved path doesn't re-run the file's
// top-level side effects.
type Loader struct {
	Exec eval.CommandRunner
	Log  *slog.Logger

	mu      sync.Mutex
	cache   map[string]value.Map
	watcher *fsnotify.Watcher
}

// New returns a ready-to-use Loader. exec is the command runner handed to
// the Evaluator used for module bodies, so a module that shells out
// behaves exactly like top-level script code.
func New(exec eval.CommandRunner, log *slog.Logger) *Loader {
	return &Loader{Exec: exec, Log: log, cache: make(map[string]value.Map)}
}

// Watch starts an fsnotify watcher over every resolved module path seen so
// far by Load, invalidating the cache entry for any file that's written
// to. This is strictly an opt-in for long-lived front ends (the REPL);
// Load works without it ever having been called, and one-shot script runs
// have no reason to call it. Returns an error only if the underlying
// fsnotify.Watcher fails to start; subsequent Watch calls are no-ops.
func (l *Loader) Watch() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for resolved := range l.cache {
		_ = w.Add(resolved)
	}
	l.watcher = w
	go l.drainWatchEvents(w)
	return nil
}

func (l *Loader) drainWatchEvents(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove) != 0 {
				l.invalidate(ev.Name)
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}

func (l *Loader) invalidate(resolved string) {
	l.mu.Lock()
	delete(l.cache, resolved)
	l.mu.Unlock()
}

// Load resolves path to a `.lm` file (spec §4.6's six-candidate search
// order), parses and evaluates it, and returns its top-level bindings as
// a Map. depth is the nesting level of `use` statements that led here;
// callers (internal/eval's evalUse) pass depth+1 on each recursive entry.
func (l *Loader) Load(path string, site value.Site, depth int) (value.Map, error) {
	if depth > maxUseRecursion {
		return value.Map{}, lmerr.New(lmerr.RecursionDepthRuntime, site.Span, site.Src,
			"module import depth exceeded %d (use chain through %q)", maxUseRecursion, path)
	}

	resolved, err := resolve(path)
	if err != nil {
		return value.Map{}, lmerr.Wrap(lmerr.NoModuleDefined, site.Span, site.Src, err, "no module found for %q", path)
	}

	l.mu.Lock()
	mod, ok := l.cache[resolved]
	l.mu.Unlock()
	if ok {
		return mod, nil
	}

	src, err := os.ReadFile(resolved)
	if err != nil {
		return value.Map{}, lmerr.Wrap(lmerr.NoModuleDefined, site.Span, site.Src, err, "reading module %q", resolved)
	}

	body, perr := parser.Parse(string(src), l.Log)
	if perr != nil {
		return value.Map{}, perr
	}

	ev := eval.New(l.Exec, l, l.Log)
	root := env.New()
	root.Define("SCRIPT", value.String{Value: resolved})
	modEnv := root.Fork()

	if _, err := ev.Eval(body, modEnv, depth+1, string(src)); err != nil {
		return value.Map{}, err
	}

	pairs := make([]value.MapPair, 0, 8)
	for _, b := range modEnv.OwnBindings() {
		pairs = append(pairs, value.MapPair{Key: b.Name, Value: b.Value})
	}
	mod = value.Map{Pairs: pairs}

	l.mu.Lock()
	l.cache[resolved] = mod
	if l.watcher != nil {
		_ = l.watcher.Add(resolved)
	}
	l.mu.Unlock()

	return mod, nil
}

// resolve walks spec §4.6's search order and returns the first candidate
// that exists on disk. The trailing `.lm` suffix is optional in path; it
// is appended to every candidate that doesn't already carry it.
func resolve(path string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	var candidates []string
	candidates = append(candidates, modCandidates(filepath.Join(cwd, "mods"), path)...)
	candidates = append(candidates, modCandidates(cwd, path)...)

	if modsPath := os.Getenv("LUME_MODULES_PATH"); modsPath != "" {
		candidates = append(candidates, modCandidates(modsPath, path)...)
	}

	if dataDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, modCandidates(filepath.Join(dataDir, "lumesh", "mods"), path)...)
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("no candidate matched (tried %d paths)", len(candidates))
}

// modCandidates returns the two forms spec §4.6 checks under a given base
// directory: `<base>/<p>[.lm]` and `<base>/<p>/main.lm`.
func modCandidates(base, p string) []string {
	withSuffix := p
	if filepath.Ext(withSuffix) != ".lm" {
		withSuffix += ".lm"
	}
	return []string{
		filepath.Join(base, withSuffix),
		filepath.Join(base, p, "main.lm"),
	}
}
