// Package exec implements lumesh's command executor (spec §4.5): spawning
// external programs, inheriting or capturing their stdio, and mapping OS
// spawn failures onto the runtime error taxonomy.
//
// Grounded on the teacher's core/sdk/executor/command.go (a thin *exec.Cmd
// wrapper returning (exitCode, error) rather than requiring callers to
// type-switch on *exec.ExitError themselves) and on cli/main.go's
// SIGINT/SIGTERM forwarding, adapted from "cancel a context" to "forward
// the signal to the one child currently running" since lumesh has no
// decorator/session/worker-pool layer to cancel through.
package exec

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lumesh-lang/lumesh/internal/env"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/value"
)

// maxEnvValueBytes bounds how much of a single binding's Display form is
// exposed to a spawned child (spec §4.5, "environment variables longer
// than 1024 bytes are dropped, not truncated").
const maxEnvValueBytes = 1024

// Executor implements eval.CommandRunner by shelling out via os/exec.
type Executor struct{}

// New returns a ready-to-use Executor. It carries no state of its own; the
// single running-child slot for signal forwarding is process-wide (see
// currentChild below), matching spec §4.5's "one foreground child at a
// time" model.
func New() *Executor { return &Executor{} }

// Run spawns name with args, inheriting the process's stdio, and waits for
// it to finish (spec §4.5). Exit code 0 becomes None; any other exit code
// becomes Integer(code). Spawn failures (missing executable, permission
// denied) are reported as RuntimeErrors rather than a bare Go error.
func (x *Executor) Run(name string, args []value.Value, e *env.Environment, site value.Site) (value.Value, error) {
	cmd := build(name, args, e, os.Stdin, os.Stdout, os.Stderr)
	code, err := run(cmd, site)
	if err != nil {
		return nil, err
	}
	if code == 0 {
		return value.None{}, nil
	}
	return value.Integer{Value: int64(code)}, nil
}

// Capture spawns name with args exactly as Run does, except stdout is
// collected into the returned string instead of inheriting the caller's
// (spec §5, the pipe operator). stdin, when non-empty, becomes the child's
// standard input instead of the shell's.
func (x *Executor) Capture(name string, args []value.Value, e *env.Environment, site value.Site, stdin string) (string, error) {
	var out bytes.Buffer
	var in io.Reader = os.Stdin
	if stdin != "" {
		in = strings.NewReader(stdin)
	}
	cmd := build(name, args, e, in, &out, os.Stderr)
	if _, err := run(cmd, site); err != nil {
		return "", err
	}
	return out.String(), nil
}

func build(name string, args []value.Value, e *env.Environment, stdin io.Reader, stdout, stderr io.Writer) *exec.Cmd {
	argv := make([]string, len(args))
	for i, a := range args {
		argv[i] = value.Display(a)
	}
	cmd := exec.Command(name, argv...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Dir = e.CWD()
	cmd.Env = childEnv(e)
	return cmd
}

// childEnv flattens every binding visible from e into a KEY=VALUE list,
// dropping values whose Display form exceeds maxEnvValueBytes (spec §4.5).
func childEnv(e *env.Environment) []string {
	names := e.Names()
	out := make([]string, 0, len(names))
	for _, name := range names {
		v, ok := e.Get(name)
		if !ok {
			continue
		}
		text := value.Display(v)
		if len(text) > maxEnvValueBytes {
			continue
		}
		out = append(out, name+"="+text)
	}
	return out
}

// run starts cmd, registers it as the process's current child for signal
// forwarding, waits, and translates the outcome into lumesh's exit-code
// and error conventions.
func run(cmd *exec.Cmd, site value.Site) (int, error) {
	if err := cmd.Start(); err != nil {
		return 0, spawnError(cmd.Path, err, site)
	}

	registerChild(cmd.Process)
	defer unregisterChild(cmd.Process)

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, lmerr.Wrap(lmerr.CommandFailed, site.Span, site.Src, err, "%s", cmd.Path)
}

func spawnError(path string, err error, site value.Site) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrPermission) {
		return lmerr.Wrap(lmerr.PermissionDenied, site.Span, site.Src, err, "%s", path)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		if closest := closestPathMatch(path); closest != "" {
			return lmerr.Wrap(lmerr.ProgramNotFound, site.Span, site.Src, err, "%s (did you mean %q?)", path, closest)
		}
		return lmerr.Wrap(lmerr.ProgramNotFound, site.Span, site.Src, err, "%s", path)
	}
	return lmerr.Wrap(lmerr.CommandFailed, site.Span, site.Src, err, "%s", path)
}

// closestPathMatch fuzzy-ranks name against every executable on $PATH,
// the same way the teacher's runtime/planner.findClosestMatch steers a
// failed lookup toward its likeliest intended target. Returns "" when
// $PATH is empty or nothing ranks.
func closestPathMatch(name string) string {
	var candidates []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				candidates = append(candidates, entry.Name())
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	return ranks[0].Target
}

// currentChild tracks the one foreground child process running at any
// moment, so the REPL's own SIGINT handler can forward it on instead of
// killing the shell itself (spec §4.5, "Ctrl+C interrupts the child, not
// lumesh").
var currentChild struct {
	mu   sync.Mutex
	proc *os.Process
}

func registerChild(p *os.Process) {
	currentChild.mu.Lock()
	currentChild.proc = p
	currentChild.mu.Unlock()
}

func unregisterChild(p *os.Process) {
	currentChild.mu.Lock()
	if currentChild.proc == p {
		currentChild.proc = nil
	}
	currentChild.mu.Unlock()
}

var forwardOnce sync.Once

// WatchInterrupts forwards SIGINT received by the lumesh process to
// whichever child is currently registered via registerChild, instead of
// letting the default Go runtime behavior (process termination) apply.
// Called once from cmd/lumesh's main so tests importing this package
// never install a signal handler as a side effect of the import alone.
func WatchInterrupts() {
	forwardOnce.Do(func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		go func() {
			for range sigCh {
				currentChild.mu.Lock()
				p := currentChild.proc
				currentChild.mu.Unlock()
				if p != nil {
					_ = p.Signal(syscall.SIGTERM)
				}
			}
		}()
	})
}
